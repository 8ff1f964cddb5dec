// Package deficit estimates the curvature of a tetrahedral mesh on the unit
// 3-torus using the hinge deficit of Regge calculus.
//
// The dihedral angles of all tetrahedra sharing an edge (the hinge) are
// summed. In flat space the sum around every hinge is 2π, so the deficit
// |2π - Σθ| measures the discrete curvature concentrated on the hinge.
package deficit

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/regge"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	tau = 2 * math.Pi
	// FlatTolerance bounds the maximum hinge deficit of a mesh tiling flat
	// space when evaluated in double precision.
	FlatTolerance = 1e-9
)

// MaxHinge returns the maximum hinge deficit over all edges of the
// tetrahedra. Displacements between nodes are resolved by minimal image on
// the unit torus and hinges are identified by their node indices. An empty
// mesh has zero deficit. Out of range node indices return an error wrapping
// regge.ErrIndexOutOfRange.
//
// Minimal image requires every edge to be shorter than half a period, so
// BCC lattices need at least 3 cells per axis. Meshes with an edge of
// exactly half a period return an error wrapping regge.ErrAmbiguousImage;
// smaller tori are evaluated by MaxHingeMesh on a lattice.Periodic mesh.
func MaxHinge(nodes []r3.Vec, tetras [][4]int) (float64, error) {
	worst, err := MaxHingeMesh(regge.Mesh{Nodes: nodes, Tetras: tetras})
	if errors.Is(err, regge.ErrAmbiguousImage) {
		return 0, fmt.Errorf("%w (evaluate lattice.Periodic meshes with MaxHingeMesh instead)", err)
	}
	return worst, err
}

// MaxHingeMesh returns the maximum hinge deficit of m. If m carries lattice
// images they are used to recover exact displacements and to tell apart
// hinges joining the same nodes through different periodic images, which
// keeps the result exact on tori only a few cells wide.
func MaxHingeMesh(m regge.Mesh) (float64, error) {
	sums, err := CPU{}.Accumulate(m)
	if err != nil {
		return 0, err
	}
	var worst float64
	for _, sum := range sums {
		worst = math.Max(worst, deficit(sum))
	}
	return worst, nil
}

// Deficits maps the dihedral angle sums of every hinge to the hinge deficit.
func Deficits(sums map[regge.Hinge]float64) map[regge.Hinge]float64 {
	deficits := make(map[regge.Hinge]float64, len(sums))
	for h, sum := range sums {
		deficits[h] = deficit(sum)
	}
	return deficits
}

func deficit(angleSum float64) float64 {
	return math.Abs(tau - angleSum)
}
