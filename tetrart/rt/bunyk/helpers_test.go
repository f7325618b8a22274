package bunyk

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gekko3d/tetra/tetrart/rt/core"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

type staticMapper struct {
	input    *mesh.Mesh
	size     [2]int
	origin   [2]int
	viewport [2]int
}

func newStaticMapper(m *mesh.Mesh, w, h int) *staticMapper {
	return &staticMapper{input: m, size: [2]int{w, h}, viewport: [2]int{w, h}}
}

func (s *staticMapper) Input() *mesh.Mesh         { return s.input }
func (s *staticMapper) ImageInUseSize() [2]int    { return s.size }
func (s *staticMapper) ImageOrigin() [2]int       { return s.origin }
func (s *staticMapper) ImageViewportSize() [2]int { return s.viewport }

// plainMapper lacks the image layout methods.
type plainMapper struct{ input *mesh.Mesh }

func (p plainMapper) Input() *mesh.Mesh { return p.input }

type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) DebugEnabled() bool    { return false }
func (l *recordingLogger) SetDebug(bool)         {}
func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(string, ...any)  {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}
func (l *recordingLogger) Errorf(format string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordingLogger) count(msgs []string, substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func (l *recordingLogger) warnCount(substr string) int  { return l.count(l.warns, substr) }
func (l *recordingLogger) errorCount(substr string) int { return l.count(l.errors, substr) }

// exactScene views the box [-1, 1]^2 x (-1, 1) along -z on a 64x64 image.
// Screen coordinates are x' = 32(x+1), y' = 32(y+1), depth = (1-z)/2, all
// exact for dyadic inputs, so ties between faces sharing an edge are exact.
func exactScene(m *mesh.Mesh) (*core.Renderer, *core.Volume) {
	ren := core.NewRenderer(64, 64)
	ren.Camera.Position = mgl64.Vec3{0, 0, 2}
	ren.Camera.FocalPoint = mgl64.Vec3{0, 0, 0}
	ren.Camera.ViewUp = mgl64.Vec3{0, 1, 0}
	ren.Camera.ParallelProjection = true
	ren.Camera.ParallelScale = 1
	ren.Camera.ClippingRange = [2]float64{1, 3}
	return ren, core.NewVolume(newStaticMapper(m, 64, 64))
}

func initialized(m *mesh.Mesh, opts ...Option) (*RayCastFunction, *core.Renderer, *core.Volume) {
	ren, vol := exactScene(m)
	fn := NewRayCastFunction(opts...)
	if err := fn.Initialize(ren, vol); err != nil {
		panic(err)
	}
	return fn, ren, vol
}

// drain collects every remaining segment of pixel (x, y).
func drain(it *Iterator, x, y int, field *mesh.Field[float64]) Segments[float64] {
	var r Ray
	it.Start(&r, x, y)
	var all, batch Segments[float64]
	for CastRay(it, &r, field, &batch) > 0 {
		all.Cells = append(all.Cells, batch.Cells...)
		all.Lengths = append(all.Lengths, batch.Lengths...)
		all.Near = append(all.Near, batch.Near...)
		all.Far = append(all.Far, batch.Far...)
		all.Components = batch.Components
	}
	return all
}

func total(s Segments[float64]) float64 {
	sum := 0.0
	for _, l := range s.Lengths {
		sum += l
	}
	return sum
}

// merge concatenates meshes into one without sharing points.
func merge(parts ...*mesh.Mesh) *mesh.Mesh {
	var pts []mgl64.Vec3
	for _, p := range parts {
		for i := 0; i < p.NumPoints(); i++ {
			pts = append(pts, p.Point(i))
		}
	}
	out := mesh.NewMesh(pts)
	base := 0
	for _, p := range parts {
		for c := 0; c < p.NumCells(); c++ {
			ids := append([]int(nil), p.CellPoints(c)...)
			for i := range ids {
				ids[i] += base
			}
			out.MustAddCell(p.CellType(c), ids...)
		}
		base += p.NumPoints()
	}
	return out
}
