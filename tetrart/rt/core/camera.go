package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera follows the usual position / focal point / view-up description.
// ClippingRange holds the near and far distances along the view direction.
type Camera struct {
	Position           mgl64.Vec3
	FocalPoint         mgl64.Vec3
	ViewUp             mgl64.Vec3
	ViewAngle          float64 // degrees, perspective only
	ParallelProjection bool
	ParallelScale      float64 // half the viewport height in world units
	ClippingRange      [2]float64
}

func NewCamera() *Camera {
	return &Camera{
		Position:      mgl64.Vec3{0, 0, 1},
		FocalPoint:    mgl64.Vec3{0, 0, 0},
		ViewUp:        mgl64.Vec3{0, 1, 0},
		ViewAngle:     30,
		ParallelScale: 1,
		ClippingRange: [2]float64{0.01, 1000.01},
	}
}

func (c *Camera) Clone() *Camera {
	cp := *c
	return &cp
}

func (c *Camera) Distance() float64 {
	return c.FocalPoint.Sub(c.Position).Len()
}

func (c *Camera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.FocalPoint, c.ViewUp)
}

// ProjectionMatrix returns the projection for the given width/height aspect
// with clip-space depth remapped from [-1, 1] to [nearz, farz].
func (c *Camera) ProjectionMatrix(aspect, nearz, farz float64) mgl64.Mat4 {
	near, far := c.ClippingRange[0], c.ClippingRange[1]

	var proj mgl64.Mat4
	if c.ParallelProjection {
		h := c.ParallelScale
		w := h * aspect
		proj = mgl64.Ortho(-w, w, -h, h, near, far)
	} else {
		proj = mgl64.Perspective(mgl64.DegToRad(c.ViewAngle), aspect, near, far)
	}

	half := (farz - nearz) / 2
	remap := mgl64.Translate3D(0, 0, nearz+half).Mul4(mgl64.Scale3D(1, 1, half))
	return remap.Mul4(proj)
}

// Azimuth orbits the position about the view-up axis through the focal point.
func (c *Camera) Azimuth(degrees float64) {
	rot := mgl64.QuatRotate(mgl64.DegToRad(degrees), c.ViewUp.Normalize())
	offset := c.Position.Sub(c.FocalPoint)
	c.Position = c.FocalPoint.Add(rot.Rotate(offset))
}

// Elevation orbits the position towards the view-up direction.
func (c *Camera) Elevation(degrees float64) {
	offset := c.Position.Sub(c.FocalPoint)
	axis := offset.Cross(c.ViewUp)
	if axis.Len() == 0 {
		return
	}
	rot := mgl64.QuatRotate(mgl64.DegToRad(degrees), axis.Normalize())
	c.Position = c.FocalPoint.Add(rot.Rotate(offset))
}
