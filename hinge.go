package regge

// Hinge is the canonical key of an undirected mesh edge, the hinge of Regge
// calculus. The two endpoints are ordered by node index and then by image so
// both orientations of an edge map to the same key.
type Hinge struct {
	A, B int
	// Offset is the lattice image of B relative to A. Always zero for
	// meshes resolved by minimal image.
	Offset V3i
}

// Face is the canonical key of a triangular face.
type Face struct {
	A, B, C int
	// Image of B and C relative to A.
	OffB, OffC V3i
}

// tetraFaces lists the corners of the four faces of a tetrahedron.
var tetraFaces = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}

// TetraEdges enumerates the six edges of a tetrahedron by corner number.
// The first two entries are the edge endpoints and the last two are the
// corners opposite to the edge, which close the two faces meeting at it.
var TetraEdges = [6][4]int{
	{0, 1, 2, 3},
	{0, 2, 1, 3},
	{0, 3, 1, 2},
	{1, 2, 0, 3},
	{1, 3, 0, 2},
	{2, 3, 0, 1},
}

type endpoint struct {
	idx int
	img V3i
}

func (e endpoint) less(o endpoint) bool {
	if e.idx != o.idx {
		return e.idx < o.idx
	}
	return e.img.Less(o.img)
}

// NewHinge returns the canonical hinge joining node a at lattice image ia
// with node b at lattice image ib. The key depends only on the relative image
// so translating both endpoints by the same image yields the same hinge.
func NewHinge(a int, ia V3i, b int, ib V3i) Hinge {
	p, q := endpoint{a, ia}, endpoint{b, ib}
	if q.less(p) {
		p, q = q, p
	}
	return Hinge{A: p.idx, B: q.idx, Offset: q.img.Sub(p.img)}
}

// NewFace returns the canonical face with nodes a, b, c at images ia, ib, ic.
func NewFace(a int, ia V3i, b int, ib V3i, c int, ic V3i) Face {
	e := [3]endpoint{{a, ia}, {b, ib}, {c, ic}}
	// Three element insertion sort.
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && e[j].less(e[j-1]); j-- {
			e[j], e[j-1] = e[j-1], e[j]
		}
	}
	return Face{
		A: e[0].idx, B: e[1].idx, C: e[2].idx,
		OffB: e[1].img.Sub(e[0].img),
		OffC: e[2].img.Sub(e[0].img),
	}
}

// HingeOf returns the hinge of tetrahedron i between corners c0 and c1.
func (m *Mesh) HingeOf(i, c0, c1 int) Hinge {
	t := m.Tetras[i]
	return NewHinge(t[c0], m.Image(i, c0), t[c1], m.Image(i, c1))
}
