package deficit_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/soypat/regge"
	"github.com/soypat/regge/deficit"
	"github.com/soypat/regge/lattice"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMaxHingeEmpty(t *testing.T) {
	got, err := deficit.MaxHinge(nil, nil)
	if err != nil || got != 0 {
		t.Errorf("nil mesh: got %g, %v. want 0", got, err)
	}
	nodes, tetras := lattice.Build(0)
	got, err = deficit.MaxHinge(nodes, tetras)
	if err != nil || got != 0 {
		t.Errorf("zero cell lattice: got %g, %v. want 0", got, err)
	}
}

func TestMaxHingeFlatLattice(t *testing.T) {
	// Minimal image is exact once every mesh edge is shorter than half the
	// period along each axis, which for the BCC lattice means n >= 3.
	for n := 3; n <= 6; n++ {
		nodes, tetras := lattice.Build(n)
		got, err := deficit.MaxHinge(nodes, tetras)
		if err != nil {
			t.Fatal(err)
		}
		if got > deficit.FlatTolerance {
			t.Errorf("n=%d: got max deficit %g. want < %g", n, got, deficit.FlatTolerance)
		}
	}
}

func TestMaxHingeMeshAllSizes(t *testing.T) {
	for _, dec := range []lattice.Decomposition{lattice.HalfFace, lattice.Isotropic} {
		for n := 1; n <= 5; n++ {
			m, err := lattice.Periodic(lattice.Parms{Cells: n, Decomposition: dec})
			if err != nil {
				t.Fatal(err)
			}
			got, err := deficit.MaxHingeMesh(m)
			if err != nil {
				t.Fatal(err)
			}
			if got > deficit.FlatTolerance {
				t.Errorf("%v n=%d: got max deficit %g. want < %g", dec, n, got, deficit.FlatTolerance)
			}
			if n >= 3 {
				m.Images = nil
				got, err = deficit.MaxHingeMesh(m)
				if err != nil {
					t.Fatal(err)
				}
				if got > deficit.FlatTolerance {
					t.Errorf("%v n=%d minimal image: got max deficit %g", dec, n, got)
				}
			}
		}
	}
}

func TestSingleCellTorus(t *testing.T) {
	nodes, tetras := lattice.Build(1)
	if len(nodes) != 2 || len(tetras) != 12 {
		t.Fatalf("got %d nodes and %d tetrahedra. want 2 and 12", len(nodes), len(tetras))
	}
	m, err := lattice.Periodic(lattice.Parms{Cells: 1})
	if err != nil {
		t.Fatal(err)
	}
	got, err := deficit.MaxHingeMesh(m)
	if err != nil {
		t.Fatal(err)
	}
	if got > deficit.FlatTolerance {
		t.Errorf("got max deficit %g on single cell torus", got)
	}
}

func TestMaxHingeSmallTorus(t *testing.T) {
	// Edges of 1 and 2 cell lattices span half a period, which minimal image
	// cannot resolve.
	for n := 1; n <= 2; n++ {
		nodes, tetras := lattice.Build(n)
		got, err := deficit.MaxHinge(nodes, tetras)
		if !errors.Is(err, regge.ErrAmbiguousImage) {
			t.Errorf("n=%d: got deficit %g, error %v. want %v", n, got, err, regge.ErrAmbiguousImage)
		} else if !strings.Contains(err.Error(), "MaxHingeMesh") {
			t.Errorf("n=%d: error %q does not point to MaxHingeMesh", n, err)
		}
		m := regge.Mesh{Nodes: nodes, Tetras: tetras}
		for _, acc := range []deficit.Accumulator{deficit.CPU{}, deficit.Parallel{Workers: 3}, deficit.Float32{}} {
			if _, err := acc.Accumulate(m); !errors.Is(err, regge.ErrAmbiguousImage) {
				t.Errorf("n=%d %T: got error %v. want %v", n, acc, err, regge.ErrAmbiguousImage)
			}
		}
		// The same lattice with images is resolved exactly.
		withImages, err := lattice.Periodic(lattice.Parms{Cells: n})
		if err != nil {
			t.Fatal(err)
		}
		got, err = deficit.MaxHingeMesh(withImages)
		if err != nil || got > deficit.FlatTolerance {
			t.Errorf("n=%d with images: got deficit %g, error %v", n, got, err)
		}
	}
}

func TestOutOfRangeIndex(t *testing.T) {
	nodes, tetras := lattice.Build(3)
	bad := append([][4]int{}, tetras...)
	bad[len(bad)/2][2] = len(nodes)
	_, err := deficit.MaxHinge(nodes, bad)
	if !errors.Is(err, regge.ErrIndexOutOfRange) {
		t.Errorf("got error %v. want %v", err, regge.ErrIndexOutOfRange)
	}
	m := regge.Mesh{Nodes: nodes, Tetras: bad}
	for _, acc := range []deficit.Accumulator{deficit.CPU{}, deficit.Parallel{Workers: 4}, deficit.Float32{}} {
		_, err := acc.Accumulate(m)
		if !errors.Is(err, regge.ErrIndexOutOfRange) {
			t.Errorf("%T: got error %v. want %v", acc, err, regge.ErrIndexOutOfRange)
		}
	}
}

func TestDegenerateTetrahedra(t *testing.T) {
	nodes := []r3.Vec{{X: 0.1, Y: 0.1, Z: 0.1}, {X: 0.2, Y: 0.1, Z: 0.1}, {X: 0.3, Y: 0.1, Z: 0.1}}
	tetras := [][4]int{
		{0, 0, 0, 0}, // coincident.
		{0, 1, 1, 2}, // repeated node.
		{0, 1, 2, 2}, // collinear.
	}
	got, err := deficit.MaxHinge(nodes, tetras)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(got) || math.Abs(got-2*math.Pi) > 1e-12 {
		t.Errorf("degenerate tetrahedra contribute zero angle: got deficit %g. want 2π", got)
	}
}

func TestSingleTetrahedron(t *testing.T) {
	// Regular tetrahedron: every hinge is bordered by a single dihedral angle.
	const s = 0.1
	nodes := []r3.Vec{
		{X: 0.5 + s, Y: 0.5 + s, Z: 0.5 + s},
		{X: 0.5 + s, Y: 0.5 - s, Z: 0.5 - s},
		{X: 0.5 - s, Y: 0.5 + s, Z: 0.5 - s},
		{X: 0.5 - s, Y: 0.5 - s, Z: 0.5 + s},
	}
	got, err := deficit.MaxHinge(nodes, [][4]int{{0, 1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	want := 2*math.Pi - math.Acos(1./3)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %g. want %g", got, want)
	}
}

func TestAccumulatorsAgree(t *testing.T) {
	for _, dec := range []lattice.Decomposition{lattice.HalfFace, lattice.Isotropic} {
		m, err := lattice.Periodic(lattice.Parms{Cells: 3, Decomposition: dec})
		if err != nil {
			t.Fatal(err)
		}
		want, err := deficit.CPU{}.Accumulate(m)
		if err != nil {
			t.Fatal(err)
		}
		for _, test := range []struct {
			acc deficit.Accumulator
			tol float64
		}{
			{deficit.Parallel{}, 1e-12},
			{deficit.Parallel{Workers: 1}, 1e-12},
			{deficit.Parallel{Workers: 7}, 1e-12},
			{deficit.Parallel{Workers: 100000}, 1e-12},
			{deficit.Float32{}, deficit.Float32Tolerance},
		} {
			got, err := test.acc.Accumulate(m)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(want) {
				t.Fatalf("%v %T: got %d hinges. want %d", dec, test.acc, len(got), len(want))
			}
			for h, sum := range want {
				if math.Abs(got[h]-sum) > test.tol {
					t.Errorf("%v %T: hinge %+v got sum %g. want %g", dec, test.acc, h, got[h], sum)
				}
			}
		}
	}
}

func TestFloat32Flat(t *testing.T) {
	for n := 1; n <= 4; n++ {
		m, err := lattice.Periodic(lattice.Parms{Cells: n})
		if err != nil {
			t.Fatal(err)
		}
		r, err := deficit.Evaluate(deficit.Float32{}, m)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Flat(deficit.Float32Tolerance) {
			t.Errorf("n=%d: got float32 max deficit %g", n, r.Max)
		}
	}
}

func TestReport(t *testing.T) {
	const n = 3
	m, err := lattice.Periodic(lattice.Parms{Cells: n})
	if err != nil {
		t.Fatal(err)
	}
	r, err := deficit.Evaluate(nil, m)
	if err != nil {
		t.Fatal(err)
	}
	if r.Hinges != 14*n*n*n {
		t.Errorf("got %d hinges. want %d", r.Hinges, 14*n*n*n)
	}
	if !r.Flat(deficit.FlatTolerance) || r.Mean > r.Max || r.RMS > r.Max {
		t.Errorf("unexpected flat lattice report %+v", r)
	}
	if r.Energy > 1e-24 {
		t.Errorf("got energy %g on flat lattice", r.Energy)
	}
	empty, err := deficit.Evaluate(deficit.CPU{}, regge.Mesh{})
	if err != nil {
		t.Fatal(err)
	}
	if empty != (deficit.Report{}) {
		t.Errorf("got non-zero report %+v for empty mesh", empty)
	}
}

func TestNewReport(t *testing.T) {
	h0 := regge.Hinge{A: 0, B: 1}
	h1 := regge.Hinge{A: 0, B: 2}
	h2 := regge.Hinge{A: 0, B: 2, Offset: regge.V3i{1, 0, 0}}
	r := deficit.NewReport(map[regge.Hinge]float64{
		h2: 2*math.Pi - 0.5,
		h0: 2 * math.Pi,
		h1: 2*math.Pi - 0.5,
	})
	if r.Hinges != 3 || r.Worst != h1 {
		t.Errorf("got %d hinges, worst %+v. want 3, %+v", r.Hinges, r.Worst, h1)
	}
	const tol = 1e-12
	if math.Abs(r.Max-0.5) > tol || math.Abs(r.Mean-1./3) > tol ||
		math.Abs(r.RMS-math.Sqrt(0.5/3)) > tol || math.Abs(r.Energy-0.5) > tol {
		t.Errorf("unexpected report %+v", r)
	}
	deficits := deficit.Deficits(map[regge.Hinge]float64{h0: math.Pi})
	if math.Abs(deficits[h0]-math.Pi) > tol {
		t.Errorf("got deficit %g. want π", deficits[h0])
	}
}

func BenchmarkMaxHingeCPU(b *testing.B) {
	m, _ := lattice.Periodic(lattice.Parms{Cells: 12})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		deficit.Evaluate(deficit.CPU{}, m)
	}
}

func BenchmarkMaxHingeParallel(b *testing.B) {
	m, _ := lattice.Periodic(lattice.Parms{Cells: 12})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		deficit.Evaluate(deficit.Parallel{}, m)
	}
}
