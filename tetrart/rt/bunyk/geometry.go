package bunyk

import "github.com/go-gl/mathgl/mgl64"

// ComputeViewDependentInfo refreshes the screen-space terms of every triangle
// from the projected points. Triangles are rewound so Denominator is never
// negative, which keeps C >= 0 and the front-facing test sign stable.
func (t *Topology) ComputeViewDependentInfo(points []mgl64.Vec3) {
	for i := range t.triangles {
		tri := &t.triangles[i]

		p0 := points[tri.PointIndex[0]]
		p1 := points[tri.PointIndex[1]].Sub(p0)
		p2 := points[tri.PointIndex[2]].Sub(p0)

		den := p1[0]*p2[1] - p2[0]*p1[1]
		if den < 0 {
			den = -den
			p1, p2 = p2, p1
			tri.PointIndex[1], tri.PointIndex[2] = tri.PointIndex[2], tri.PointIndex[1]
		}

		tri.P1X, tri.P1Y = p1[0], p1[1]
		tri.P2X, tri.P2Y = p2[0], p2[1]
		tri.Denominator = den

		n := p1.Cross(p2)
		tri.A, tri.B, tri.C = n[0], n[1], n[2]
		tri.D = -n.Dot(p0)
	}
}

// Weights returns the barycentric weights of screen point (x, y) for the
// triangle's three points in PointIndex order.
func (t *Triangle) Weights(x, y float64, points []mgl64.Vec3) (a, b, c float64) {
	p0 := points[t.PointIndex[0]]
	dx, dy := x-p0[0], y-p0[1]
	b = (dx*t.P2Y - dy*t.P2X) / t.Denominator
	c = (dy*t.P1X - dx*t.P1Y) / t.Denominator
	return 1 - b - c, b, c
}

// InTriangle reports whether screen point (x, y) is covered by tri. The
// decision is made with edge functions evaluated in a fixed orientation per
// point pair, so two triangles sharing an edge see identical values there,
// and points exactly on an edge belong to one side only. Zero-area triangles
// cover nothing.
func InTriangle(x, y float64, tri *Triangle, points []mgl64.Vec3) bool {
	if tri.Denominator == 0 {
		return false
	}
	// Denominator > 0 means counter-clockwise 0 -> 1 -> 2.
	idx := tri.PointIndex
	for e := 0; e < 3; e++ {
		if !insideEdge(x, y, idx[e], idx[(e+1)%3], points) {
			return false
		}
	}
	return true
}

// insideEdge evaluates the directed edge u -> v at (x, y). The interior of a
// counter-clockwise triangle is on the left. Exact zeros are resolved by
// edge direction as if the point were nudged by an infinitesimal fixed offset.
func insideEdge(x, y float64, u, v int, points []mgl64.Vec3) bool {
	lo, hi, sign := u, v, 1.0
	if lo > hi {
		lo, hi, sign = v, u, -1.0
	}
	pl, ph := points[lo], points[hi]
	ex, ey := ph[0]-pl[0], ph[1]-pl[1]
	e := sign * (ex*(y-pl[1]) - ey*(x-pl[0]))
	if e != 0 {
		return e > 0
	}
	dx, dy := sign*ex, sign*ey
	return dy < 0 || (dy == 0 && dx > 0)
}

// IsTriangleFrontFacing reports whether the boundary triangle faces the
// viewer, judged by which side of its plane the owning tetrahedron's fourth
// point lies on. cellPoints are the four point ids of the owner.
func IsTriangleFrontFacing(tri *Triangle, cellPoints []int, points []mgl64.Vec3) bool {
	for _, id := range cellPoints {
		if id == tri.PointIndex[0] || id == tri.PointIndex[1] || id == tri.PointIndex[2] {
			continue
		}
		p := points[id]
		return tri.A*p[0]+tri.B*p[1]+tri.C*p[2]+tri.D > 0
	}
	return false
}
