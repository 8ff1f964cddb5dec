package regge

import (
	"sort"

	"github.com/soypat/regge/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// DuplicateNodes returns the pairs of distinct node indices, lower index
// first, whose positions lie within tol of each other on the unit torus.
// Nodes at coordinate 1 and 0 of an axis are considered the same site.
// A well formed periodic mesh has no duplicates.
func (m *Mesh) DuplicateNodes(tol float64) [][2]int {
	if len(m.Nodes) < 2 || tol < 0 {
		return nil
	}
	sites := make(siteList, len(m.Nodes))
	for i, v := range m.Nodes {
		sites[i] = site{pos: d3.Wrap(v), idx: i}
	}
	tree := kdtree.New(sites, false)
	found := make(map[[2]int]struct{})
	for i, v := range m.Nodes {
		for _, q := range periodicQueries(d3.Wrap(v), tol) {
			keep := kdtree.NewDistKeeper(tol * tol)
			tree.NearestSet(keep, site{pos: q, idx: -1})
			for _, cd := range keep.Heap {
				if cd.Comparable == nil {
					continue // DistKeeper sentinel.
				}
				j := cd.Comparable.(site).idx
				if j == i {
					continue
				}
				pair := [2]int{i, j}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				found[pair] = struct{}{}
			}
		}
	}
	dups := make([][2]int, 0, len(found))
	for pair := range found {
		dups = append(dups, pair)
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i][0] != dups[j][0] {
			return dups[i][0] < dups[j][0]
		}
		return dups[i][1] < dups[j][1]
	})
	return dups
}

// periodicQueries returns v and its translations by one period along every
// combination of axes on which v lies within tol of the cell boundary.
func periodicQueries(v r3.Vec, tol float64) []r3.Vec {
	axis := func(x float64) []float64 {
		shifts := []float64{0}
		if x < tol {
			shifts = append(shifts, 1)
		}
		if x > 1-tol {
			shifts = append(shifts, -1)
		}
		return shifts
	}
	var queries []r3.Vec
	for _, sx := range axis(v.X) {
		for _, sy := range axis(v.Y) {
			for _, sz := range axis(v.Z) {
				queries = append(queries, r3.Add(v, r3.Vec{X: sx, Y: sy, Z: sz}))
			}
		}
	}
	return queries
}

// site is a node position stored in the kd-tree along with its index.
type site struct {
	pos r3.Vec
	idx int
}

func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	switch d {
	case 0:
		return s.pos.X - q.pos.X
	case 1:
		return s.pos.Y - q.pos.Y
	case 2:
		return s.pos.Z - q.pos.Z
	}
	panic("unreachable")
}

func (s site) Dims() int { return 3 }

// Distance returns the squared euclidean distance between sites.
func (s site) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(s.pos, c.(site).pos))
}

type siteList []site

// Index returns the ith element of the list of sites.
func (sl siteList) Index(i int) kdtree.Comparable { return sl[i] }

// Len returns the length of the list.
func (sl siteList) Len() int { return len(sl) }

// Pivot partitions the list based on the dimension specified.
func (sl siteList) Pivot(d kdtree.Dim) int {
	p := sitePlane{dim: d, sites: sl}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (sl siteList) Slice(start, end int) kdtree.Interface {
	return sl[start:end]
}

type sitePlane struct {
	dim   kdtree.Dim
	sites siteList
}

func (p sitePlane) Less(i, j int) bool {
	return p.sites[i].Compare(p.sites[j], p.dim) < 0
}
func (p sitePlane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}
func (p sitePlane) Len() int {
	return len(p.sites)
}
func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
