// Package mesh holds the unstructured grids consumed by the ray casters: points,
// typed cells and per-point fields, plus enough bookkeeping (identity and
// modification stamps) for consumers to know when cached structures are stale.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// CellType uses the VTK numeric cell tags.
type CellType uint8

const (
	CellEmpty      CellType = 0
	CellVertex     CellType = 1
	CellLine       CellType = 3
	CellTriangle   CellType = 5
	CellQuad       CellType = 9
	CellTetra      CellType = 10
	CellHexahedron CellType = 12
	CellWedge      CellType = 13
	CellPyramid    CellType = 14
)

var cellTypeNames = map[CellType]string{
	CellEmpty:      "empty",
	CellVertex:     "vertex",
	CellLine:       "line",
	CellTriangle:   "triangle",
	CellQuad:       "quad",
	CellTetra:      "tetra",
	CellHexahedron: "hexahedron",
	CellWedge:      "wedge",
	CellPyramid:    "pyramid",
}

func (t CellType) String() string {
	if name, ok := cellTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("celltype(%d)", uint8(t))
}

var (
	ErrPointIndex = errors.New("mesh: point index out of range")
	ErrFieldSize  = errors.New("mesh: field tuple count does not match point count")
)

type Cell struct {
	Type   CellType
	Points []int
}

// clock is the process-wide modification counter shared by every mesh, so
// stamps taken from different meshes are comparable.
var clock atomic.Uint64

// Tick advances the modification clock and returns the new stamp.
func Tick() uint64 {
	return clock.Add(1)
}

// Mesh is an unstructured grid. It is not safe for concurrent mutation; once
// built, concurrent readers are fine.
type Mesh struct {
	id     uuid.UUID
	points []mgl64.Vec3
	cells  []Cell
	fields []PointField
	mtime  uint64

	linksMu sync.Mutex
	links   [][]int
}

func NewMesh(points []mgl64.Vec3) *Mesh {
	m := &Mesh{
		id:     uuid.New(),
		points: append([]mgl64.Vec3(nil), points...),
	}
	m.Modified()
	return m
}

func (m *Mesh) ID() uuid.UUID { return m.id }

func (m *Mesh) MTime() uint64 { return m.mtime }

// Modified bumps the modification stamp and drops derived point links.
func (m *Mesh) Modified() {
	m.mtime = Tick()
	m.linksMu.Lock()
	m.links = nil
	m.linksMu.Unlock()
}

func (m *Mesh) NumPoints() int { return len(m.points) }

func (m *Mesh) Point(i int) mgl64.Vec3 { return m.points[i] }

func (m *Mesh) SetPoint(i int, p mgl64.Vec3) {
	m.points[i] = p
	m.Modified()
}

func (m *Mesh) NumCells() int { return len(m.cells) }

func (m *Mesh) Cell(i int) Cell { return m.cells[i] }

func (m *Mesh) CellType(i int) CellType { return m.cells[i].Type }

func (m *Mesh) CellPoints(i int) []int { return m.cells[i].Points }

// AddCell appends a cell and returns its id.
func (m *Mesh) AddCell(t CellType, ids ...int) (int, error) {
	for _, id := range ids {
		if id < 0 || id >= len(m.points) {
			return -1, fmt.Errorf("add %s cell: point %d: %w", t, id, ErrPointIndex)
		}
	}
	m.cells = append(m.cells, Cell{Type: t, Points: append([]int(nil), ids...)})
	m.Modified()
	return len(m.cells) - 1, nil
}

// MustAddCell is AddCell for generated meshes whose indices are known good.
func (m *Mesh) MustAddCell(t CellType, ids ...int) int {
	id, err := m.AddCell(t, ids...)
	if err != nil {
		panic(err)
	}
	return id
}

func (m *Mesh) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	if len(m.points) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	minB := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxB := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.points {
		for k := 0; k < 3; k++ {
			minB[k] = math.Min(minB[k], p[k])
			maxB[k] = math.Max(maxB[k], p[k])
		}
	}
	return minB, maxB
}

// CellsUsingPoints returns, in ascending order, the ids of every cell that
// references all of the given points. With three points of a tetrahedral mesh
// this is the set of cells sharing that face.
func (m *Mesh) CellsUsingPoints(ids ...int) []int {
	if len(ids) == 0 {
		return nil
	}
	links := m.pointLinks()
	for _, id := range ids {
		if id < 0 || id >= len(links) {
			return nil
		}
	}

	var out []int
	for _, cell := range links[ids[0]] {
		shared := true
		for _, id := range ids[1:] {
			if !containsInt(m.cells[cell].Points, id) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, cell)
		}
	}
	return out
}

func (m *Mesh) pointLinks() [][]int {
	m.linksMu.Lock()
	defer m.linksMu.Unlock()
	if m.links != nil {
		return m.links
	}
	links := make([][]int, len(m.points))
	for c, cell := range m.cells {
		for _, p := range cell.Points {
			if n := len(links[p]); n > 0 && links[p][n-1] == c {
				continue
			}
			links[p] = append(links[p], c)
		}
	}
	m.links = links
	return links
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
