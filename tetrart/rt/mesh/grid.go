package mesh

import "github.com/go-gl/mathgl/mgl64"

// kuhnPaths are the six axis orderings used to walk from a block's minimum
// corner to its maximum corner. Each ordering yields one tetrahedron, and the
// six together tile the block. Every block uses the same orderings, so faces
// between neighbouring blocks match exactly.
var kuhnPaths = [6][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

// TetrasPerBlock is the number of tetrahedra NewTetraGrid emits per block.
const TetrasPerBlock = len(kuhnPaths)

// NewTetraGrid builds an nx*ny*nz block grid starting at origin with the
// given block spacing, each block split into TetrasPerBlock tetrahedra.
func NewTetraGrid(nx, ny, nz int, origin, spacing mgl64.Vec3) *Mesh {
	if nx < 1 || ny < 1 || nz < 1 {
		return NewMesh(nil)
	}
	px, py, pz := nx+1, ny+1, nz+1
	points := make([]mgl64.Vec3, 0, px*py*pz)
	for k := 0; k < pz; k++ {
		for j := 0; j < py; j++ {
			for i := 0; i < px; i++ {
				points = append(points, mgl64.Vec3{
					origin[0] + float64(i)*spacing[0],
					origin[1] + float64(j)*spacing[1],
					origin[2] + float64(k)*spacing[2],
				})
			}
		}
	}

	idx := func(i, j, k int) int { return i + px*(j+py*k) }

	m := NewMesh(points)
	m.cells = make([]Cell, 0, nx*ny*nz*TetrasPerBlock)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, path := range kuhnPaths {
					corner := [3]int{i, j, k}
					ids := make([]int, 0, 4)
					ids = append(ids, idx(corner[0], corner[1], corner[2]))
					for _, axis := range path {
						corner[axis]++
						ids = append(ids, idx(corner[0], corner[1], corner[2]))
					}
					m.cells = append(m.cells, Cell{Type: CellTetra, Points: ids})
				}
			}
		}
	}
	m.Modified()
	return m
}

// NewTetrahedron builds a single-cell mesh.
func NewTetrahedron(a, b, c, d mgl64.Vec3) *Mesh {
	m := NewMesh([]mgl64.Vec3{a, b, c, d})
	m.MustAddCell(CellTetra, 0, 1, 2, 3)
	return m
}
