package core

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func project(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	h := m.Mul4x1(p.Vec4(1))
	return h.Vec3().Mul(1 / h.W())
}

// near compares component-wise; mgl64's ApproxEqualThreshold switches to a
// relative test that rejects tiny residues against an exact zero.
func near(got, want []float64, tol float64) bool {
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func TestProjectionDepthRemap(t *testing.T) {
	tests := []struct {
		name     string
		parallel bool
	}{
		{"perspective", false},
		{"parallel", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera()
			cam.Position = mgl64.Vec3{0, 0, 10}
			cam.ClippingRange = [2]float64{1, 100}
			cam.ParallelProjection = tt.parallel
			cam.ParallelScale = 2

			vp := cam.ProjectionMatrix(1.5, 0, 1).Mul4(cam.ViewMatrix())

			nearPt := project(vp, mgl64.Vec3{0, 0, 9})
			farPt := project(vp, mgl64.Vec3{0, 0, -90})
			mid := project(vp, mgl64.Vec3{0, 0, 0})

			if math.Abs(nearPt.Z()) > 1e-9 {
				t.Errorf("near plane should map to depth 0, got %f", nearPt.Z())
			}
			if math.Abs(farPt.Z()-1) > 1e-9 {
				t.Errorf("far plane should map to depth 1, got %f", farPt.Z())
			}
			if !(mid.Z() > nearPt.Z() && mid.Z() < farPt.Z()) {
				t.Errorf("depth should increase away from the eye, got %f", mid.Z())
			}
			if math.Abs(mid.X()) > 1e-9 || math.Abs(mid.Y()) > 1e-9 {
				t.Errorf("focal point should project to the center, got %v", mid)
			}
		})
	}
}

func TestParallelScaleCoversHeight(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl64.Vec3{0, 0, 5}
	cam.ParallelProjection = true
	cam.ParallelScale = 0.5
	cam.ClippingRange = [2]float64{1, 10}

	vp := cam.ProjectionMatrix(2, 0, 1).Mul4(cam.ViewMatrix())
	top := project(vp, mgl64.Vec3{0, 0.5, 0})
	right := project(vp, mgl64.Vec3{1, 0, 0})
	if math.Abs(top.Y()-1) > 1e-9 {
		t.Errorf("expected top edge at y=1, got %f", top.Y())
	}
	if math.Abs(right.X()-1) > 1e-9 {
		t.Errorf("expected right edge at x=1 for aspect 2, got %f", right.X())
	}
}

func TestAzimuthElevation(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl64.Vec3{0, 0, 4}

	cam.Azimuth(90)
	if !near(cam.Position[:], []float64{4, 0, 0}, 1e-9) {
		t.Errorf("azimuth 90 should orbit to +x, got %v", cam.Position)
	}
	if math.Abs(cam.Distance()-4) > 1e-9 {
		t.Errorf("orbit should keep the distance, got %f", cam.Distance())
	}

	cam.Elevation(30)
	if cam.Position.Y() <= 0 {
		t.Errorf("positive elevation should raise the camera, got %v", cam.Position)
	}
	if math.Abs(cam.Distance()-4) > 1e-9 {
		t.Errorf("orbit should keep the distance, got %f", cam.Distance())
	}

	clone := cam.Clone()
	clone.Azimuth(10)
	if clone.Position == cam.Position {
		t.Error("clone should not share state with the original")
	}
}

func TestTransformInverse(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl64.Vec3{1, -2, 3}
	tr.Rotation = mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize())
	tr.Scale = mgl64.Vec3{2, 0.5, 3}
	tr.Origin = mgl64.Vec3{0.5, 0.5, 0.5}

	id, ident := tr.Matrix().Mul4(tr.Inverse()), mgl64.Ident4()
	if !near(id[:], ident[:], 1e-9) {
		t.Errorf("M * inv(M) should be identity, got %v", id)
	}

	pivot := project(tr.Matrix(), tr.Origin)
	if want := tr.Origin.Add(tr.Position); !near(pivot[:], want[:], 1e-9) {
		t.Errorf("origin should only move by Position, got %v", pivot)
	}

	spin := NewTransform()
	spin.RotateAbout(90, mgl64.Vec3{0, 0, 2})
	spin.RotateAbout(90, mgl64.Vec3{0, 0, 1})
	if got := project(spin.Matrix(), mgl64.Vec3{1, 0, 0}); !near(got[:], []float64{-1, 0, 0}, 1e-9) {
		t.Errorf("two quarter turns about z should flip x, got %v", got)
	}

	vol := &Volume{}
	if vol.Matrix() != mgl64.Ident4() {
		t.Error("volume without transform should use identity")
	}
}

func TestRendererAspect(t *testing.T) {
	if got := NewRenderer(200, 100).Aspect(); got != 2 {
		t.Errorf("expected aspect 2, got %f", got)
	}
	if got := (&Renderer{}).Aspect(); got != 1 {
		t.Errorf("unsized renderer should report aspect 1, got %f", got)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop should never return nil")
	}
	l := NewDefaultLogger("test", false)
	if OrNop(l) != Logger(l) {
		t.Error("OrNop should pass through a non-nil logger")
	}
	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Error("SetDebug should enable debug output")
	}
}

func TestWriterLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "tetrart", false)
	child := l.With("bunyk")

	l.Debugf("hidden %d", 1)
	child.Infof("built %d triangles", 4)
	child.Warnf("face used %s", "thrice")
	l.Errorf("boom")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug output should be off")
	}
	if !strings.Contains(out.String(), "[tetrart/bunyk] INFO: built 4 triangles") {
		t.Errorf("unexpected info output %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[tetrart/bunyk] WARN: face used thrice") ||
		!strings.Contains(errOut.String(), "[tetrart] ERROR: boom") {
		t.Errorf("unexpected error output %q", errOut.String())
	}

	// Children share the debug switch.
	l.SetDebug(true)
	child.Debugf("visible")
	if !child.DebugEnabled() || !strings.Contains(out.String(), "DEBUG: visible") {
		t.Error("child should follow the parent's debug switch")
	}
}
