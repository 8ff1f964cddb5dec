package regge

import (
	"math"

	"github.com/soypat/regge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Topology holds the simplex counts of a tetrahedral mesh.
type Topology struct {
	// Nodes counts nodes referenced by at least one tetrahedron.
	Nodes  int
	Edges  int
	Faces  int
	Tetras int
	// Unpaired counts faces not shared by exactly two tetrahedra.
	Unpaired int
}

// Euler returns the Euler characteristic V - E + F - T. A closed
// triangulation of the 3-torus has characteristic zero.
func (t Topology) Euler() int {
	return t.Nodes - t.Edges + t.Faces - t.Tetras
}

// Closed returns true if every face is shared by exactly two tetrahedra,
// which is the case for a tiling of the torus without gaps.
func (t Topology) Closed() bool { return t.Unpaired == 0 }

// Topology counts the simplices of the mesh. Edges and faces are identified
// by canonical keys so meshes with images are counted exactly.
func (m *Mesh) Topology() (Topology, error) {
	if err := m.Validate(); err != nil {
		return Topology{}, err
	}
	referenced := make([]bool, len(m.Nodes))
	edges := make(map[Hinge]struct{}, 2*len(m.Tetras))
	faces := make(map[Face]int, 2*len(m.Tetras))
	for i, tetra := range m.Tetras {
		for _, n := range tetra {
			referenced[n] = true
		}
		for _, e := range TetraEdges {
			edges[m.HingeOf(i, e[0], e[1])] = struct{}{}
		}
		for _, f := range tetraFaces {
			key := NewFace(tetra[f[0]], m.Image(i, f[0]), tetra[f[1]], m.Image(i, f[1]), tetra[f[2]], m.Image(i, f[2]))
			faces[key]++
		}
	}
	top := Topology{Edges: len(edges), Faces: len(faces), Tetras: len(m.Tetras)}
	for _, ref := range referenced {
		if ref {
			top.Nodes++
		}
	}
	for _, count := range faces {
		if count != 2 {
			top.Unpaired++
		}
	}
	return top, nil
}

// Volume returns the sum of the unsigned volumes of all tetrahedra. A mesh
// tiling the unit torus without gaps or overlaps has volume 1.
// Displacements are taken from lattice images when present and by minimal
// image otherwise.
func (m *Mesh) Volume() (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	var vol float64
	for i, tetra := range m.Tetras {
		var a, b, c r3.Vec
		if m.HasImages() {
			p := m.Unwrapped(i, 0)
			a = r3.Sub(m.Unwrapped(i, 1), p)
			b = r3.Sub(m.Unwrapped(i, 2), p)
			c = r3.Sub(m.Unwrapped(i, 3), p)
		} else {
			p := m.Nodes[tetra[0]]
			a = d3.MinImage(p, m.Nodes[tetra[1]])
			b = d3.MinImage(p, m.Nodes[tetra[2]])
			c = d3.MinImage(p, m.Nodes[tetra[3]])
		}
		vol += math.Abs(r3.Dot(a, r3.Cross(b, c))) / 6
	}
	return vol, nil
}
