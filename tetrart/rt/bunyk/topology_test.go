package bunyk

import (
	"testing"

	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitTetra() *mesh.Mesh {
	return mesh.NewTetrahedron(
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1},
	)
}

func TestBuildTopology_SingleTetra(t *testing.T) {
	topo := BuildTopology(unitTetra(), nil)

	require.Equal(t, 4, topo.NumTriangles())
	assert.Len(t, topo.BoundaryTriangles(), 4)
	assert.Equal(t, []int{0, 1, 2, 3}, topo.TetraTriangles(0))
	for i := 0; i < 4; i++ {
		tri := topo.Triangle(i)
		assert.Equal(t, [2]int{0, -1}, tri.ReferredByTetra)
		assert.True(t, tri.PointIndex[0] < tri.PointIndex[1] && tri.PointIndex[1] < tri.PointIndex[2])
	}
}

func TestBuildTopology_GridFaces(t *testing.T) {
	m := mesh.NewTetraGrid(1, 1, 1, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	topo := BuildTopology(m, nil)

	// Two triangles per cube side, six interior faces around the diagonal.
	assert.Len(t, topo.BoundaryTriangles(), 12)
	assert.Equal(t, 18, topo.NumTriangles())

	for cell := 0; cell < m.NumCells(); cell++ {
		faces := topo.TetraTriangles(cell)
		require.Len(t, faces, 4)
		for _, ti := range faces {
			tri := topo.Triangle(ti)
			assert.Contains(t, tri.ReferredByTetra[:], cell)
			p := tri.PointIndex
			assert.ElementsMatch(t, m.CellsUsingPoints(p[0], p[1], p[2]), ownersOf(tri))
		}
	}
}

func ownersOf(tri *Triangle) []int {
	if tri.IsBoundary() {
		return []int{tri.ReferredByTetra[0]}
	}
	return tri.ReferredByTetra[:]
}

func TestBuildTopology_Deterministic(t *testing.T) {
	m := mesh.NewTetraGrid(2, 2, 1, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	a := BuildTopology(m, nil)
	b := BuildTopology(m, nil)
	assert.Equal(t, a.triangles, b.triangles)
	assert.Equal(t, a.tetraTriangles, b.tetraTriangles)
}

func TestBuildTopology_SkipsNonTetra(t *testing.T) {
	m := mesh.NewMesh([]mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	})
	m.MustAddCell(mesh.CellHexahedron, 0, 1, 4, 2, 3, 5, 7, 6)
	m.MustAddCell(mesh.CellTetra, 0, 1, 2, 3)
	m.MustAddCell(mesh.CellTriangle, 1, 2, 3)

	log := &recordingLogger{}
	topo := BuildTopology(m, log)

	assert.Equal(t, 2, topo.NonTetraCells())
	assert.Nil(t, topo.TetraTriangles(0))
	assert.Nil(t, topo.TetraTriangles(2))
	assert.Len(t, topo.TetraTriangles(1), 4)
	assert.Equal(t, 4, topo.NumTriangles())
	assert.Equal(t, 1, log.warnCount("only tetrahedra are supported"))
}

func TestBuildTopology_FaceUsedThreeTimes(t *testing.T) {
	m := threeWayFace()
	log := &recordingLogger{}
	topo := BuildTopology(m, log)

	require.Len(t, topo.NonManifoldFaces(), 1)
	shared := topo.Triangle(topo.NonManifoldFaces()[0])
	assert.Equal(t, [2]int{0, 1}, shared.ReferredByTetra)
	assert.Equal(t, [3]int{0, 1, 2}, shared.PointIndex)
	assert.Contains(t, topo.TetraTriangles(2), topo.NonManifoldFaces()[0])
	assert.Equal(t, 1, log.warnCount("used more than twice"))
}

// threeWayFace is three tetrahedra on one triangle, two above and one below.
func threeWayFace() *mesh.Mesh {
	m := mesh.NewMesh([]mgl64.Vec3{
		{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {-0.5, 0.5, 0},
		{-0.25, -0.25, 0.5}, {-0.25, -0.25, -0.5}, {-0.125, -0.25, 0.25},
	})
	m.MustAddCell(mesh.CellTetra, 0, 1, 2, 3)
	m.MustAddCell(mesh.CellTetra, 0, 1, 2, 4)
	m.MustAddCell(mesh.CellTetra, 0, 1, 2, 5)
	return m
}

func TestComputeViewDependentInfo_PlanesAndWinding(t *testing.T) {
	m := mesh.NewTetraGrid(2, 1, 1, mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 1, 0.75})
	fn, _, _ := initialized(m)
	pts := fn.ScreenPoints()
	topo := fn.Topology()

	for i := 0; i < topo.NumTriangles(); i++ {
		tri := topo.Triangle(i)
		assert.GreaterOrEqual(t, tri.Denominator, 0.0)
		assert.InDelta(t, tri.Denominator, tri.C, 1e-9)
		for _, id := range tri.PointIndex {
			p := pts[id]
			assert.InDelta(t, 0, tri.A*p[0]+tri.B*p[1]+tri.C*p[2]+tri.D, 1e-9)
		}
	}
}

func TestTriangleWeights(t *testing.T) {
	pts := []mgl64.Vec3{{0, 0, 0.5}, {8, 0, 0.5}, {0, 8, 0.5}}
	topo := &Topology{triangles: []Triangle{{PointIndex: [3]int{0, 1, 2}}}}
	topo.ComputeViewDependentInfo(pts)
	tri := topo.Triangle(0)

	a, b, c := tri.Weights(2, 4, pts)
	assert.InDelta(t, 0.25, a, 1e-12)
	assert.InDelta(t, 0.25, b, 1e-12)
	assert.InDelta(t, 0.5, c, 1e-12)

	a, b, c = tri.Weights(0, 0, pts)
	assert.Equal(t, []float64{1, 0, 0}, []float64{a, b, c})
}

func TestInTriangle_EveryPointClaimedOnce(t *testing.T) {
	// A square split into a fan around its centre.
	pts := []mgl64.Vec3{
		{0, 0, 0.5}, {8, 0, 0.5}, {8, 8, 0.5}, {0, 8, 0.5}, {4, 4, 0.5},
	}
	topo := &Topology{triangles: []Triangle{
		{PointIndex: [3]int{0, 1, 4}},
		{PointIndex: [3]int{1, 2, 4}},
		{PointIndex: [3]int{2, 3, 4}},
		{PointIndex: [3]int{0, 3, 4}},
		{PointIndex: [3]int{0, 2, 4}}, // collinear
	}}
	topo.ComputeViewDependentInfo(pts)
	assert.Zero(t, topo.Triangle(4).Denominator)

	for y := 1; y < 8; y++ {
		for x := 1; x < 8; x++ {
			owners := 0
			for i := range topo.triangles {
				if InTriangle(float64(x), float64(y), topo.Triangle(i), pts) {
					owners++
				}
			}
			assert.Equal(t, 1, owners, "pixel (%d, %d)", x, y)
		}
	}

	assert.False(t, InTriangle(4, 4, topo.Triangle(4), pts))
	assert.False(t, InTriangle(9, 4, topo.Triangle(1), pts))
}

func TestIntersectionPool(t *testing.T) {
	p := NewIntersectionPool(3, 2)

	var refs []IntersectionRef
	for i := 0; i < 6; i++ {
		ref := p.New()
		require.NotEqual(t, NoIntersection, ref)
		p.At(ref).Z = float64(i)
		refs = append(refs, ref)
	}
	assert.Equal(t, NoIntersection, p.New())
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, 3, p.Slabs())
	for i, ref := range refs {
		assert.Equal(t, float64(i), p.At(ref).Z)
	}

	p.Reset()
	assert.Zero(t, p.Len())
	assert.Equal(t, refs[0], p.New())
	assert.Equal(t, 3, p.Slabs())
}
