// Package regge holds the mesh data model shared by the periodic lattice
// builder and the hinge deficit evaluator.
//
// A Mesh lives on the flat unit 3-torus: node coordinates are fractions of the
// unit cube [0,1)³ and a coordinate of 1 on any axis is identified with 0.
// Tetrahedra index into the node slice. Optionally each tetrahedron carries the
// lattice image of its four corners so that geometry can be recovered exactly
// even when the torus is too small for minimal image conventions.
package regge

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/regge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrIndexOutOfRange is returned when a tetrahedron references a node
	// index outside of the node slice.
	ErrIndexOutOfRange = errors.New("tetrahedron node index out of range")
	// ErrImageCount is returned when the image slice of a mesh is not nil
	// and its length does not match the number of tetrahedra.
	ErrImageCount = errors.New("image count does not match tetrahedron count")
	// ErrNonFinite is returned for node coordinates that are NaN or infinite.
	ErrNonFinite = errors.New("non-finite node coordinate")
	// ErrAmbiguousImage is returned for meshes without images that have an
	// edge spanning exactly half a period along some axis. Minimal image
	// cannot tell which periodic copy such an edge joins.
	ErrAmbiguousImage = errors.New("edge displacement ambiguous under minimal image")
)

// Mesh is a tetrahedral mesh embedded in the unit 3-torus.
type Mesh struct {
	// Nodes are the vertex positions, each component in [0,1).
	Nodes []r3.Vec
	// Tetras are the tetrahedra as indices into Nodes.
	Tetras [][4]int
	// Images is either nil or holds for every tetrahedron the integer torus
	// translation of each of its corners, such that Nodes[Tetras[i][c]]+Images[i][c]
	// is the unwrapped position of corner c. When nil, displacements between
	// nodes are resolved using the minimal image convention.
	Images [][4]V3i
}

// HasImages returns true if the mesh carries per-tetrahedron lattice images.
func (m *Mesh) HasImages() bool { return m.Images != nil }

// Validate checks the mesh for input contract violations. It is meant to be
// called once at an API boundary before any geometry is computed.
// Out of range indices are never truncated or wrapped.
func (m *Mesh) Validate() error {
	if err := m.ValidateImages(); err != nil {
		return err
	}
	if err := ValidateNodes(m.Nodes); err != nil {
		return err
	}
	if err := ValidateTetras(len(m.Nodes), m.Tetras); err != nil {
		return err
	}
	if !m.HasImages() {
		return ValidateMinImage(m.Nodes, m.Tetras)
	}
	return nil
}

// ValidateImages checks the mesh either has no images or one per tetrahedron.
func (m *Mesh) ValidateImages() error {
	if m.Images != nil && len(m.Images) != len(m.Tetras) {
		return fmt.Errorf("%w: got %d images for %d tetrahedra", ErrImageCount, len(m.Images), len(m.Tetras))
	}
	return nil
}

// ValidateNodes checks all node coordinates are finite.
func ValidateNodes(nodes []r3.Vec) error {
	for i, v := range nodes {
		if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
			return fmt.Errorf("node %d %v: %w", i, v, ErrNonFinite)
		}
	}
	return nil
}

// ValidateTetras checks all tetrahedron indices lie in [0, numNodes).
func ValidateTetras(numNodes int, tetras [][4]int) error {
	for it, tetra := range tetras {
		for c, idx := range tetra {
			if idx < 0 || idx >= numNodes {
				return fmt.Errorf("tetrahedron %d corner %d: index %d not in [0,%d): %w", it, c, idx, numNodes, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// ValidateMinImage checks no tetrahedron edge spans half a period along any
// axis, which is the case for the BCC lattice on tori of fewer than 3 cells.
// Indices must have been checked with ValidateTetras.
func ValidateMinImage(nodes []r3.Vec, tetras [][4]int) error {
	for it, tetra := range tetras {
		for _, e := range TetraEdges {
			d := d3.MinImage(nodes[tetra[e[0]]], nodes[tetra[e[1]]])
			if d3.Max(d3.AbsElem(d)) == 0.5 {
				return fmt.Errorf("tetrahedron %d edge %d-%d displacement %v: %w", it, tetra[e[0]], tetra[e[1]], d, ErrAmbiguousImage)
			}
		}
	}
	return nil
}

// Image returns the lattice image of corner c of tetrahedron i. Meshes
// without images return the zero image.
func (m *Mesh) Image(i, c int) V3i {
	if m.Images == nil {
		return V3i{}
	}
	return m.Images[i][c]
}

// Unwrapped returns the position of corner c of tetrahedron i with its
// lattice image applied.
func (m *Mesh) Unwrapped(i, c int) r3.Vec {
	return r3.Add(m.Nodes[m.Tetras[i][c]], m.Image(i, c).ToV3())
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
