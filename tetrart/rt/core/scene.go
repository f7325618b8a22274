package core

import (
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// Mapper is the minimal contract a volume's mapper satisfies. Ray casters
// require richer interfaces and type-assert for them.
type Mapper interface {
	Input() *mesh.Mesh
}

type Renderer struct {
	Camera *Camera
	Size   [2]int // pixels
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Camera: NewCamera(),
		Size:   [2]int{width, height},
	}
}

// Aspect is width over height, 1 for an unsized renderer.
func (r *Renderer) Aspect() float64 {
	if r.Size[0] <= 0 || r.Size[1] <= 0 {
		return 1
	}
	return float64(r.Size[0]) / float64(r.Size[1])
}

type Volume struct {
	Transform *Transform
	Mapper    Mapper
}

func NewVolume(mapper Mapper) *Volume {
	return &Volume{
		Transform: NewTransform(),
		Mapper:    mapper,
	}
}

// Matrix is the volume's model matrix, identity when no transform is set.
func (v *Volume) Matrix() mgl64.Mat4 {
	if v.Transform == nil {
		return mgl64.Ident4()
	}
	return v.Transform.Matrix()
}
