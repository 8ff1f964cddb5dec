package deficit

import (
	"math"
	"sort"

	"github.com/soypat/regge"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes the hinge deficits of a mesh.
type Report struct {
	// Hinges is the number of distinct hinges found.
	Hinges int
	// Max is the largest hinge deficit, found at hinge Worst.
	Max   float64
	Worst regge.Hinge
	Mean  float64
	// RMS is the root mean square of the hinge deficits.
	RMS float64
	// Energy is the sum of squared hinge deficits. It vanishes on flat meshes.
	Energy float64
}

// Evaluate accumulates the dihedral angles of m with acc and summarizes the
// resulting hinge deficits. A nil acc uses CPU. Empty meshes yield the zero Report.
func Evaluate(acc Accumulator, m regge.Mesh) (Report, error) {
	if acc == nil {
		acc = CPU{}
	}
	sums, err := acc.Accumulate(m)
	if err != nil {
		return Report{}, err
	}
	return NewReport(sums), nil
}

// NewReport summarizes the hinge deficits of the given dihedral angle sums.
// Ties for the worst hinge resolve to the lowest hinge in key order.
func NewReport(sums map[regge.Hinge]float64) Report {
	if len(sums) == 0 {
		return Report{}
	}
	hinges := make([]regge.Hinge, 0, len(sums))
	for h := range sums {
		hinges = append(hinges, h)
	}
	sort.Slice(hinges, func(i, j int) bool { return hingeLess(hinges[i], hinges[j]) })
	deficits := make([]float64, len(hinges))
	for i, h := range hinges {
		deficits[i] = deficit(sums[h])
	}
	imax := floats.MaxIdx(deficits)
	return Report{
		Hinges: len(hinges),
		Max:    deficits[imax],
		Worst:  hinges[imax],
		Mean:   stat.Mean(deficits, nil),
		RMS:    floats.Norm(deficits, 2) / math.Sqrt(float64(len(deficits))),
		Energy: floats.Dot(deficits, deficits),
	}
}

// Flat reports whether the maximum deficit is within tol of flat space.
func (r Report) Flat(tol float64) bool { return r.Max <= tol }

func hingeLess(a, b regge.Hinge) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	if a.B != b.B {
		return a.B < b.B
	}
	return a.Offset.Less(b.Offset)
}
