// Package lattice builds periodic body centered cubic (BCC) tetrahedral
// meshes of the unit 3-torus.
//
// The torus is divided in n cells per axis. Every cell contributes one corner
// node at its minimum corner and one node at its center, so an n cell lattice
// has 2n³ nodes and no node is duplicated across the periodic boundary. Each
// cell is split into 12 tetrahedra.
package lattice

import (
	"errors"
	"fmt"

	"github.com/soypat/regge"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNegativeCells is returned by Periodic for a negative number of cells.
var ErrNegativeCells = errors.New("negative number of lattice cells")

// Decomposition selects how every cubic cell is split into tetrahedra.
type Decomposition int

const (
	// HalfFace splits each of the six cube faces in two triangles and joins
	// every triangle with the cell center.
	HalfFace Decomposition = iota
	// Isotropic joins the centers of adjacent cells with each edge of the
	// face they share. Tetrahedra are congruent and better shaped.
	Isotropic
)

func (d Decomposition) String() string {
	switch d {
	case HalfFace:
		return "half-face"
	case Isotropic:
		return "isotropic"
	}
	return fmt.Sprintf("Decomposition(%d)", int(d))
}

// ParseDecomposition returns the Decomposition whose String form is s.
func ParseDecomposition(s string) (Decomposition, error) {
	for _, d := range []Decomposition{HalfFace, Isotropic} {
		if s == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown lattice decomposition %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decomposition) UnmarshalText(text []byte) error {
	dec, err := ParseDecomposition(string(text))
	if err != nil {
		return err
	}
	*d = dec
	return nil
}

// Parms configures a periodic lattice.
type Parms struct {
	// Cells is the number of unit cells along each axis.
	Cells int
	// Decomposition of cells into tetrahedra. Defaults to HalfFace.
	Decomposition Decomposition
}

// Build returns the nodes and tetrahedra of the periodic half-face BCC
// lattice with n cells per axis. For n <= 0 empty slices are returned.
func Build(n int) (nodes []r3.Vec, tetras [][4]int) {
	if n <= 0 {
		return []r3.Vec{}, [][4]int{}
	}
	m, err := Periodic(Parms{Cells: n})
	if err != nil {
		panic(err) // unreachable for n > 0.
	}
	return m.Nodes, m.Tetras
}

// Periodic builds the periodic BCC mesh described by parms, including the
// lattice images of every tetrahedron corner. Zero cells yields an empty mesh.
func Periodic(parms Parms) (regge.Mesh, error) {
	n := parms.Cells
	switch {
	case n < 0:
		return regge.Mesh{}, fmt.Errorf("got %d cells: %w", n, ErrNegativeCells)
	case n == 0:
		return regge.Mesh{Nodes: []r3.Vec{}, Tetras: [][4]int{}, Images: [][4]regge.V3i{}}, nil
	}
	var table *[12][4]bccidx
	switch parms.Decomposition {
	case HalfFace:
		table = &halfFaceTetras
	case Isotropic:
		table = &isotropicTetras
	default:
		return regge.Mesh{}, fmt.Errorf("unknown lattice decomposition %v", parms.Decomposition)
	}
	bcc := makeBCCMatrix(n)
	tetras, images := bcc.meshTetraBCC(table)
	return regge.Mesh{
		Nodes:  bcc.nodes(),
		Tetras: tetras,
		Images: images,
	}, nil
}

// PeriodicIndex reduces the lattice coordinates modulo n along each axis
// independently and encodes the result in row-major order into [0,n³).
// It panics if n is not positive.
func PeriodicIndex(i, j, k, n int) int {
	if n <= 0 {
		panic("non-positive lattice size")
	}
	return mod(i, n)*n*n + mod(j, n)*n + mod(k, n)
}
