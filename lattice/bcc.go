package lattice

import (
	"github.com/soypat/regge"
	"github.com/soypat/regge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// bccMatrix holds the cells of a body centered cubic lattice wrapped on the
// unit torus. Cell (i,j,k) spans [i/n,(i+1)/n) along x and likewise for y, z.
type bccMatrix struct {
	cells []bccCell
	div   int
}

type bccidx int

// BCC node slots of a cell. Corner ordering walks the bottom face counter
// clockwise and then the top face.
const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr // BCC central node index.
	nBCC // number of BCC nodes.
)

// Central nodes of the neighboring cells on the minus side of each axis.
// Only the isotropic decomposition uses them.
const (
	ixm = nBCC + iota
	iym
	izm
	nSlots
)

// slotOffsets are the lattice offsets of the corner slots from the cell origin.
var slotOffsets = [nBCC - 1]regge.V3i{
	i000: {0, 0, 0},
	ix00: {1, 0, 0},
	ixy0: {1, 1, 0},
	i0y0: {0, 1, 0},
	i00z: {0, 0, 1},
	ix0z: {1, 0, 1},
	ixyz: {1, 1, 1},
	i0yz: {0, 1, 1},
}

// halfFaceTetras pairs the central node with both triangles of the six cube
// faces. Every face is split along the diagonal that avoids the face's
// minimum corner so a face shared by two cells is split identically from
// both sides.
var halfFaceTetras = [12][4]bccidx{
	// XY plane facing tetrahedrons.
	{ictr, i000, ix00, i0y0},
	{ictr, ix00, ixy0, i0y0},
	{ictr, i00z, ix0z, i0yz},
	{ictr, ix0z, ixyz, i0yz},
	// XZ
	{ictr, i000, ix00, i00z},
	{ictr, ix00, ix0z, i00z},
	{ictr, i0y0, ixy0, i0yz},
	{ictr, ixy0, ixyz, i0yz},
	// YZ
	{ictr, i000, i0y0, i00z},
	{ictr, i0y0, i0yz, i00z},
	{ictr, ix00, ixy0, ix0z},
	{ictr, ixy0, ixyz, ix0z},
}

// isotropicTetras joins the central node with the central node across each
// minor side face and one of that face's edges.
var isotropicTetras = [12][4]bccidx{
	// Z minor side.
	{ictr, i000, ix00, izm},
	{ictr, ix00, ixy0, izm},
	{ictr, ixy0, i0y0, izm},
	{ictr, i0y0, i000, izm},
	// Y minor side.
	{ictr, ix00, i000, iym},
	{ictr, ix0z, ix00, iym},
	{ictr, i00z, ix0z, iym},
	{ictr, i000, i00z, iym},
	// X minor side.
	{ictr, i000, i0y0, ixm},
	{ictr, i00z, i000, ixm},
	{ictr, i0yz, i00z, ixm},
	{ictr, i0y0, i0yz, ixm},
}

// bccCell holds the node index and lattice image of every slot.
type bccCell struct {
	nodes  [nSlots]int
	images [nSlots]regge.V3i
}

func makeBCCMatrix(n int) *bccMatrix {
	m := &bccMatrix{cells: make([]bccCell, n*n*n), div: n}
	ncorner := n * n * n
	m.foreach(func(i, j, k int, cell *bccCell) {
		for slot, off := range slotOffsets {
			ui, uj, uk := i+off[0], j+off[1], k+off[2]
			cell.nodes[slot] = PeriodicIndex(ui, uj, uk, n)
			cell.images[slot] = m.image(ui, uj, uk)
		}
		cell.nodes[ictr] = ncorner + PeriodicIndex(i, j, k, n)
		neighbors := [3]regge.V3i{
			ixm - nBCC: {i - 1, j, k},
			iym - nBCC: {i, j - 1, k},
			izm - nBCC: {i, j, k - 1},
		}
		for iside, c := range neighbors {
			slot := int(nBCC) + iside
			cell.nodes[slot] = ncorner + PeriodicIndex(c[0], c[1], c[2], n)
			cell.images[slot] = m.image(c[0], c[1], c[2])
		}
	})
	return m
}

// nodes returns the corner nodes followed by the central nodes.
func (m *bccMatrix) nodes() []r3.Vec {
	n := m.div
	h := 1 / float64(n)
	nodes := make([]r3.Vec, 2*n*n*n)
	ncorner := n * n * n
	m.foreach(func(i, j, k int, _ *bccCell) {
		idx := PeriodicIndex(i, j, k, n)
		corner := r3.Scale(h, regge.V3i{i, j, k}.ToV3())
		cell := d3.Box{Min: corner, Max: r3.Add(corner, d3.Elem(h))}
		nodes[idx] = corner
		nodes[ncorner+idx] = cell.Center()
	})
	return nodes
}

// meshTetraBCC appends the tetrahedra of every cell along with the lattice
// images of their corners.
func (m *bccMatrix) meshTetraBCC(table *[12][4]bccidx) (tetras [][4]int, images [][4]regge.V3i) {
	tetras = make([][4]int, 0, 12*len(m.cells))
	images = make([][4]regge.V3i, 0, 12*len(m.cells))
	m.foreach(func(_, _, _ int, cell *bccCell) {
		for _, slots := range table {
			var tetra [4]int
			var img [4]regge.V3i
			for c, slot := range slots {
				tetra[c] = cell.nodes[slot]
				img[c] = cell.images[slot]
			}
			tetras = append(tetras, tetra)
			images = append(images, img)
		}
	})
	return tetras, images
}

// image returns how many periods the unwrapped cell coordinate lies away
// from the base cell along each axis.
func (m *bccMatrix) image(i, j, k int) regge.V3i {
	return regge.V3i{floorDiv(i, m.div), floorDiv(j, m.div), floorDiv(k, m.div)}
}

func (m *bccMatrix) at(i, j, k int) *bccCell {
	return &m.cells[PeriodicIndex(i, j, k, m.div)]
}

func (m *bccMatrix) foreach(f func(i, j, k int, cell *bccCell)) {
	n := m.div
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				f(i, j, k, m.at(i, j, k))
			}
		}
	}
}

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && a < 0 {
		q--
	}
	return q
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
