package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform places a volume in the world. Rotation and scale pivot about
// Origin, given in model coordinates, then Position translates:
// M = T(Position) T(Origin) R S T(-Origin).
type Transform struct {
	Position mgl64.Vec3
	Origin   mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// RotateAbout composes a rotation of degrees around axis after the current
// rotation.
func (t *Transform) RotateAbout(degrees float64, axis mgl64.Vec3) {
	q := mgl64.QuatRotate(mgl64.DegToRad(degrees), axis.Normalize())
	t.Rotation = q.Mul(t.Rotation).Normalize()
}

func (t *Transform) Matrix() mgl64.Mat4 {
	p, o := t.Position, t.Origin
	return mgl64.Translate3D(p[0]+o[0], p[1]+o[1], p[2]+o[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])).
		Mul4(mgl64.Translate3D(-o[0], -o[1], -o[2]))
}

// Inverse undoes Matrix factor by factor; Rotation must be a unit quaternion.
func (t *Transform) Inverse() mgl64.Mat4 {
	p, o := t.Position, t.Origin
	return mgl64.Translate3D(o[0], o[1], o[2]).
		Mul4(mgl64.Scale3D(1/t.Scale[0], 1/t.Scale[1], 1/t.Scale[2])).
		Mul4(t.Rotation.Conjugate().Mat4()).
		Mul4(mgl64.Translate3D(-p[0]-o[0], -p[1]-o[1], -p[2]-o[2]))
}
