package bunyk

import (
	"github.com/gekko3d/tetra/tetrart/rt/core"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"
)

const (
	noTriangle int32 = -1
	noTetra          = -1
)

// Triangle is one face of the tetrahedral mesh, shared by at most two cells.
// The view-dependent fields are rewritten on every render.
type Triangle struct {
	PointIndex      [3]int
	ReferredByTetra [2]int // second slot is -1 for boundary faces

	// Screen-space edge vectors from PointIndex[0] and twice the signed area.
	P1X, P1Y    float64
	P2X, P2Y    float64
	Denominator float64

	// Screen-space plane A*x + B*y + C*z + D = 0.
	A, B, C, D float64
}

func (t *Triangle) IsBoundary() bool { return t.ReferredByTetra[1] == noTetra }

// DepthAt is the depth of the triangle's plane under screen point (x, y).
func (t *Triangle) DepthAt(x, y float64) float64 {
	return -(x*t.A + y*t.B + t.D) / t.C
}

type faceKey [3]int

func sortedFace(a, b, c int) faceKey {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return faceKey{a, b, c}
}

// Topology is the view-independent face graph of a tetrahedral mesh.
// Triangles keep the order in which they were first seen so rebuilding from
// the same mesh is deterministic.
type Topology struct {
	triangles []Triangle

	// Four triangle indices per cell, face i omitting cell point i.
	// Cells that are not tetrahedra keep noTriangle in every slot.
	tetraTriangles []int32

	nonTetra    int
	nonManifold []int32
}

// BuildTopology decomposes every tetrahedron of m into its four faces and
// merges faces that share the same three points.
func BuildTopology(m *mesh.Mesh, logger core.Logger) *Topology {
	logger = core.OrNop(logger)

	numCells := m.NumCells()
	t := &Topology{
		triangles:      make([]Triangle, 0, 2*numCells+4),
		tetraTriangles: make([]int32, 4*numCells),
	}
	for i := range t.tetraTriangles {
		t.tetraTriangles[i] = noTriangle
	}

	lookup := make(map[faceKey]int32, 2*numCells+4)
	overused := make(map[int32]struct{})

	for cell := 0; cell < numCells; cell++ {
		pts := m.CellPoints(cell)
		if m.CellType(cell) != mesh.CellTetra || len(pts) != 4 {
			t.nonTetra++
			continue
		}

		for skip := 0; skip < 4; skip++ {
			var tri [3]int
			idx := 0
			for i := 0; i < 4; i++ {
				if i != skip {
					tri[idx] = pts[i]
					idx++
				}
			}
			key := sortedFace(tri[0], tri[1], tri[2])

			if ti, ok := lookup[key]; ok {
				shared := &t.triangles[ti]
				if shared.ReferredByTetra[1] != noTetra {
					// Keep the first two owners; the extra cell still points
					// at the face but is never reached through it.
					overused[ti] = struct{}{}
				} else {
					shared.ReferredByTetra[1] = cell
				}
				t.tetraTriangles[cell*4+skip] = ti
				continue
			}

			ti := int32(len(t.triangles))
			t.triangles = append(t.triangles, Triangle{
				PointIndex:      [3]int(key),
				ReferredByTetra: [2]int{cell, noTetra},
			})
			lookup[key] = ti
			t.tetraTriangles[cell*4+skip] = ti
		}
	}

	if t.nonTetra > 0 {
		logger.Warnf("Input contains more than tetrahedra - only tetrahedra are supported (%d cells skipped)", t.nonTetra)
	}
	if len(overused) > 0 {
		for ti := range t.triangles {
			if _, ok := overused[int32(ti)]; ok {
				t.nonManifold = append(t.nonManifold, int32(ti))
			}
		}
		logger.Warnf("Degenerate topology - cell face used more than twice (%d faces)", len(t.nonManifold))
		if logger.DebugEnabled() {
			for _, ti := range t.nonManifold {
				p := t.triangles[ti].PointIndex
				logger.Debugf("face %v shared by cells %v", p, m.CellsUsingPoints(p[0], p[1], p[2]))
			}
		}
	}
	return t
}

func (t *Topology) NumTriangles() int { return len(t.triangles) }

func (t *Topology) Triangle(i int) *Triangle { return &t.triangles[i] }

// TetraTriangles returns the four face indices of cell, or nil when the cell
// was skipped.
func (t *Topology) TetraTriangles(cell int) []int {
	slots := t.tetraTriangles[cell*4 : cell*4+4]
	if slots[0] == noTriangle {
		return nil
	}
	out := make([]int, 4)
	for i, s := range slots {
		out[i] = int(s)
	}
	return out
}

// BoundaryTriangles returns the indices of single-owner faces.
func (t *Topology) BoundaryTriangles() []int {
	var out []int
	for i := range t.triangles {
		if t.triangles[i].IsBoundary() {
			out = append(out, i)
		}
	}
	return out
}

func (t *Topology) NonTetraCells() int { return t.nonTetra }

// NonManifoldFaces returns the faces that more than two cells referenced.
func (t *Topology) NonManifoldFaces() []int {
	out := make([]int, len(t.nonManifold))
	for i, ti := range t.nonManifold {
		out[i] = int(ti)
	}
	return out
}
