package deficit

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/regge"
)

// Float32Tolerance bounds the maximum hinge deficit of a flat mesh when
// evaluated by the Float32 accumulator.
const Float32Tolerance = 1e-4

// Float32 is an Accumulator working in single precision, the numeric format
// of accelerator kernels. It follows the same minimal image, clamping and
// degenerate face rules as CPU and can be used to check whether a mesh is
// suitable for single precision evaluation.
type Float32 struct{}

func (Float32) Accumulate(m regge.Mesh) (map[regge.Hinge]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	nodes := make([]ms3.Vec, len(m.Nodes))
	for i, v := range m.Nodes {
		nodes[i] = ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
	}
	sums := make(map[regge.Hinge]float32, 2*len(m.Tetras))
	for i, tetra := range m.Tetras {
		var corners [4]ms3.Vec
		for c, n := range tetra {
			corners[c] = nodes[n]
			if m.HasImages() {
				img := m.Images[i][c]
				corners[c] = ms3.Add(corners[c], ms3.Vec{X: float32(img[0]), Y: float32(img[1]), Z: float32(img[2])})
			}
		}
		for _, e := range regge.TetraEdges {
			p := corners[e[0]]
			var edge, u, w ms3.Vec
			if m.HasImages() {
				edge = ms3.Sub(corners[e[1]], p)
				u = ms3.Sub(corners[e[2]], p)
				w = ms3.Sub(corners[e[3]], p)
			} else {
				edge = minImage32(p, corners[e[1]])
				u = minImage32(p, corners[e[2]])
				w = minImage32(p, corners[e[3]])
			}
			sums[m.HingeOf(i, e[0], e[1])] += dihedral32(edge, u, w)
		}
	}
	out := make(map[regge.Hinge]float64, len(sums))
	for h, sum := range sums {
		out[h] = float64(sum)
	}
	return out, nil
}

func dihedral32(e, u, w ms3.Vec) float32 {
	n1 := ms3.Cross(e, u)
	n2 := ms3.Cross(e, w)
	norm := ms3.Norm(n1) * ms3.Norm(n2)
	if !(norm > 0) {
		return 0
	}
	cos := ms3.Dot(n1, n2) / norm
	return math32.Acos(math32.Min(1, math32.Max(cos, -1)))
}

func minImage32(a, b ms3.Vec) ms3.Vec {
	d := ms3.Sub(b, a)
	return ms3.Vec{X: fold32(d.X), Y: fold32(d.Y), Z: fold32(d.Z)}
}

func fold32(d float32) float32 {
	return d - math32.Ceil(d-0.5)
}
