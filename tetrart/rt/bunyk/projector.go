package bunyk

import (
	"github.com/gekko3d/tetra/tetrart/rt/core"

	"github.com/go-gl/mathgl/mgl64"
)

// ViewProjection is projection * view * model for the renderer's camera and
// the volume's transform, with clip depth mapped to [0, 1].
func ViewProjection(ren *core.Renderer, vol *core.Volume) mgl64.Mat4 {
	cam := ren.Camera
	return cam.ProjectionMatrix(ren.Aspect(), 0, 1).Mul4(cam.ViewMatrix()).Mul4(vol.Matrix())
}

// ToScreen maps a model-space point to image-local pixel coordinates. The
// third component is the perspective-divided depth.
func ToScreen(viewProj mgl64.Mat4, p mgl64.Vec3, viewport, origin [2]int) mgl64.Vec3 {
	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	return mgl64.Vec3{
		(clip[0]/w+1)/2*float64(viewport[0]) - float64(origin[0]),
		(clip[1]/w+1)/2*float64(viewport[1]) - float64(origin[1]),
		clip[2] / w,
	}
}

// transformPoints projects every mesh point and caches the inverse
// transform used to recover physical distances.
func (f *RayCastFunction) transformPoints() {
	input := f.mapper.Input()
	viewProj := ViewProjection(f.renderer, f.volume)
	f.viewToWorld = viewProj.Inv()

	n := input.NumPoints()
	if cap(f.points) < n {
		f.points = make([]mgl64.Vec3, n)
	}
	f.points = f.points[:n]
	for i := 0; i < n; i++ {
		f.points[i] = ToScreen(viewProj, input.Point(i), f.imageViewportSize, f.imageOrigin)
	}
}

// PixelToModel maps image-local screen coordinates and a screen depth back to
// the volume's model space.
func (f *RayCastFunction) PixelToModel(x, y, z float64) mgl64.Vec3 {
	clip := mgl64.Vec4{
		(x+float64(f.imageOrigin[0]))/float64(f.imageViewportSize[0])*2 - 1,
		(y+float64(f.imageOrigin[1]))/float64(f.imageViewportSize[1])*2 - 1,
		z,
		1,
	}
	p := f.viewToWorld.Mul4x1(clip)
	return p.Vec3().Mul(1 / p[3])
}
