package deficit

import (
	"fmt"
	"runtime"

	"github.com/soypat/regge"
	"golang.org/x/sync/errgroup"
)

// Accumulator sums the dihedral angles of every tetrahedron incident to each
// hinge of a mesh. Implementations validate the mesh before computing and
// must honor the same minimal image, clamping and degenerate face rules so
// they can be substituted for one another.
type Accumulator interface {
	// Accumulate returns the dihedral angle sum of every hinge of m.
	Accumulate(m regge.Mesh) (map[regge.Hinge]float64, error)
}

// CPU is the serial double precision Accumulator.
type CPU struct{}

func (CPU) Accumulate(m regge.Mesh) (map[regge.Hinge]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	sums := make(map[regge.Hinge]float64, 2*len(m.Tetras))
	accumulate(sums, &m, 0, len(m.Tetras))
	return sums, nil
}

// Parallel accumulates contiguous chunks of tetrahedra on separate
// goroutines, each into its own map. Chunks are merged by summation once
// all goroutines finish.
type Parallel struct {
	// Workers is the number of goroutines. If not positive GOMAXPROCS is used.
	Workers int
}

func (p Parallel) Accumulate(m regge.Mesh) (map[regge.Hinge]float64, error) {
	if err := regge.ValidateNodes(m.Nodes); err != nil {
		return nil, err
	}
	if err := m.ValidateImages(); err != nil {
		return nil, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	nt := len(m.Tetras)
	if workers > nt {
		workers = nt
	}
	if workers <= 1 {
		return CPU{}.Accumulate(m)
	}
	chunk := (nt + workers - 1) / workers
	workers = (nt + chunk - 1) / chunk
	partial := make([]map[regge.Hinge]float64, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunk
		end := start + chunk
		if end > nt {
			end = nt
		}
		g.Go(func() error {
			if err := regge.ValidateTetras(len(m.Nodes), m.Tetras[start:end]); err != nil {
				return fmt.Errorf("tetrahedra chunk [%d,%d): %w", start, end, err)
			}
			if !m.HasImages() {
				if err := regge.ValidateMinImage(m.Nodes, m.Tetras[start:end]); err != nil {
					return fmt.Errorf("tetrahedra chunk [%d,%d): %w", start, end, err)
				}
			}
			sums := make(map[regge.Hinge]float64, 2*(end-start))
			accumulate(sums, &m, start, end)
			partial[w] = sums
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sums := partial[0]
	for _, local := range partial[1:] {
		for h, angle := range local {
			sums[h] += angle
		}
	}
	return sums, nil
}

// accumulate adds the dihedral angles of tetrahedra [start,end) of m to sums.
func accumulate(sums map[regge.Hinge]float64, m *regge.Mesh, start, end int) {
	for i := start; i < end; i++ {
		hinges, angles := tetraDihedrals(m, i)
		for ie, h := range hinges {
			sums[h] += angles[ie]
		}
	}
}
