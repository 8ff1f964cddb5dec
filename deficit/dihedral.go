package deficit

import (
	"math"

	"github.com/soypat/regge"
	"github.com/soypat/regge/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dihedral returns the interior dihedral angle of a tetrahedron at the edge
// p-q, that is the angle between faces (p,q,r) and (p,q,s). Degenerate faces
// yield a zero angle. Positions are used as given, see PeriodicDihedral for
// positions on the torus.
func Dihedral(p, q, r, s r3.Vec) float64 {
	return dihedral(r3.Sub(q, p), r3.Sub(r, p), r3.Sub(s, p))
}

// PeriodicDihedral is like Dihedral but every displacement from p is taken
// as the minimal image on the unit torus.
func PeriodicDihedral(p, q, r, s r3.Vec) float64 {
	return dihedral(d3.MinImage(p, q), d3.MinImage(p, r), d3.MinImage(p, s))
}

// MinImage returns the minimal image displacement from a to b on the unit
// torus. Each component lies in (-0.5, 0.5].
func MinImage(a, b r3.Vec) r3.Vec { return d3.MinImage(a, b) }

// dihedral computes the angle at edge vector e between the faces spanned by
// e with u and by e with w. All three vectors share their origin.
func dihedral(e, u, w r3.Vec) float64 {
	n1 := r3.Cross(e, u)
	n2 := r3.Cross(e, w)
	norm := r3.Norm(n1) * r3.Norm(n2)
	if !(norm > 0) {
		return 0
	}
	return math.Acos(clamp(r3.Dot(n1, n2)/norm, -1, 1))
}

// tetraDihedrals returns the six hinges of tetrahedron i of m and the
// dihedral angle at each of them.
func tetraDihedrals(m *regge.Mesh, i int) (hinges [6]regge.Hinge, angles [6]float64) {
	tetra := m.Tetras[i]
	var corners [4]r3.Vec
	if m.HasImages() {
		for c := range corners {
			corners[c] = m.Unwrapped(i, c)
		}
	}
	for ie, e := range regge.TetraEdges {
		hinges[ie] = m.HingeOf(i, e[0], e[1])
		if m.HasImages() {
			p := corners[e[0]]
			angles[ie] = dihedral(r3.Sub(corners[e[1]], p), r3.Sub(corners[e[2]], p), r3.Sub(corners[e[3]], p))
		} else {
			angles[ie] = PeriodicDihedral(m.Nodes[tetra[e[0]]], m.Nodes[tetra[e[1]]], m.Nodes[tetra[e[2]]], m.Nodes[tetra[e[3]]])
		}
	}
	return hinges, angles
}

// Clamp x between a and b, assume a <= b
func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}
