// Package tetra renders tetrahedral meshes by ray casting with the Bunyk
// traversal. A Mapper lays out the image for a renderer, drives one ray per
// image pixel and accumulates a Projection of cell thickness and field
// integrals.
package tetra

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/tetra/tetrart/rt/bunyk"
	"github.com/gekko3d/tetra/tetrart/rt/core"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrForeignVolume = errors.New("tetra: volume is not mapped by this mapper")

// Recorder receives per-render timings and counters. app.Profiler satisfies it.
type Recorder interface {
	BeginScope(name string)
	EndScope(name string)
	SetCount(name string, count int)
}

type nopRecorder struct{}

func (nopRecorder) BeginScope(string)    {}
func (nopRecorder) EndScope(string)      {}
func (nopRecorder) SetCount(string, int) {}

type Option func(*Mapper)

func WithLogger(l core.Logger) Option {
	return func(m *Mapper) { m.logger = core.OrNop(l) }
}

func WithRecorder(r Recorder) Option {
	return func(m *Mapper) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithPoolLimits bounds the intersection records available to one render.
func WithPoolLimits(slabs, slabSize int) Option {
	return func(m *Mapper) { m.poolSlabs, m.poolSlabSize = slabs, slabSize }
}

// Mapper maps a tetrahedral mesh into a volume. It renders one image at a
// time.
type Mapper struct {
	// ScalarField names the point field integrated along rays. Empty or
	// unknown names render thickness only.
	ScalarField string
	// ImageSampleDistance is the size of one ray's pixel in renderer
	// pixels; values below 1 are treated as 1.
	ImageSampleDistance float64
	// MaxNumberOfIntersections is the batch size used when draining rays.
	MaxNumberOfIntersections int

	input        *mesh.Mesh
	logger       core.Logger
	recorder     Recorder
	poolSlabs    int
	poolSlabSize int
	fn           *bunyk.RayCastFunction

	viewport [2]int
	origin   [2]int
	inUse    [2]int
}

func NewMapper(input *mesh.Mesh, opts ...Option) *Mapper {
	m := &Mapper{
		ImageSampleDistance:      1,
		MaxNumberOfIntersections: bunyk.DefaultMaxIntersections,
		input:                    input,
		logger:                   core.NewNopLogger(),
		recorder:                 nopRecorder{},
		poolSlabs:                bunyk.DefaultMaxSlabs,
		poolSlabSize:             bunyk.DefaultSlabSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.fn = bunyk.NewRayCastFunction(
		bunyk.WithLogger(m.logger),
		bunyk.WithPoolLimits(m.poolSlabs, m.poolSlabSize),
	)
	return m
}

func (m *Mapper) Input() *mesh.Mesh { return m.input }

func (m *Mapper) SetInput(input *mesh.Mesh) { m.input = input }

func (m *Mapper) ImageViewportSize() [2]int { return m.viewport }

func (m *Mapper) ImageOrigin() [2]int { return m.origin }

func (m *Mapper) ImageInUseSize() [2]int { return m.inUse }

// RayCastFunction is the traversal state shared across renders, exposed for
// inspection of the last built topology.
func (m *Mapper) RayCastFunction() *bunyk.RayCastFunction { return m.fn }

// updateImageLayout sizes the viewport from the renderer and restricts the
// rendered region to the screen box of the input's bounds.
func (m *Mapper) updateImageLayout(ren *core.Renderer, vol *core.Volume) {
	dist := math.Max(m.ImageSampleDistance, 1)
	m.viewport = [2]int{
		max(int(float64(ren.Size[0])/dist), 1),
		max(int(float64(ren.Size[1])/dist), 1),
	}
	m.origin = [2]int{0, 0}
	m.inUse = m.viewport
	if m.input == nil || m.input.NumPoints() == 0 {
		return
	}

	viewProj := bunyk.ViewProjection(ren, vol)
	lo, hi := m.input.Bounds()
	minS := [2]float64{math.Inf(1), math.Inf(1)}
	maxS := [2]float64{math.Inf(-1), math.Inf(-1)}
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{lo[0], lo[1], lo[2]}
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				corner[k] = hi[k]
			}
		}
		// A corner behind the eye has no meaningful screen position.
		if viewProj.Mul4x1(corner.Vec4(1))[3] <= 0 {
			return
		}
		p := bunyk.ToScreen(viewProj, corner, m.viewport, [2]int{})
		for k := 0; k < 2; k++ {
			minS[k] = math.Min(minS[k], p[k])
			maxS[k] = math.Max(maxS[k], p[k])
		}
	}
	for k := 0; k < 2; k++ {
		start := clampInt(int(math.Floor(minS[k])), 0, m.viewport[k])
		end := clampInt(int(math.Ceil(maxS[k]))+1, 0, m.viewport[k])
		m.origin[k] = start
		m.inUse[k] = max(end-start, 0)
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Render casts every ray of the in-use image region. vol must be mapped by
// m. An empty input renders an empty projection.
func (m *Mapper) Render(ctx context.Context, ren *core.Renderer, vol *core.Volume) (*Projection, error) {
	if vol != nil {
		if own, ok := vol.Mapper.(*Mapper); !ok || own != m {
			return nil, ErrForeignVolume
		}
	}
	if ren != nil && ren.Camera != nil && vol != nil {
		m.updateImageLayout(ren, vol)
	}

	m.recorder.BeginScope("initialize")
	err := m.fn.Initialize(ren, vol)
	m.recorder.EndScope("initialize")
	defer m.fn.Finalize()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if !m.fn.Valid() {
		return newProjection(m.viewport, m.origin, [2]int{}), nil
	}

	proj := newProjection(m.viewport, m.origin, m.inUse)
	it := m.fn.NewIterator()
	it.SetMaxNumberOfIntersections(m.MaxNumberOfIntersections)

	m.recorder.BeginScope("traverse")
	var stats traversal
	switch f := m.input.Field(m.ScalarField).(type) {
	case *mesh.Field[float32]:
		stats, err = traverse(ctx, it, f, proj)
	case *mesh.Field[float64]:
		stats, err = traverse(ctx, it, f, proj)
	default:
		if m.ScalarField != "" {
			m.logger.Warnf("scalar field %q not found, rendering thickness only", m.ScalarField)
		}
		stats, err = traverse[float64](ctx, it, nil, proj)
	}
	m.recorder.EndScope("traverse")

	m.recorder.SetCount("rays", proj.Width*proj.Height)
	m.recorder.SetCount("segments", stats.segments)
	m.recorder.SetCount("intersections", m.fn.Pool().Len())
	m.recorder.SetCount("triangles", m.fn.Topology().NumTriangles())
	if err != nil {
		return nil, err
	}
	m.logger.Debugf("rendered %dx%d rays, %d segments", proj.Width, proj.Height, stats.segments)
	return proj, nil
}

type traversal struct {
	segments int
}

func traverse[T mesh.Number](ctx context.Context, it *bunyk.Iterator, field *mesh.Field[T], proj *Projection) (traversal, error) {
	var (
		stats traversal
		ray   bunyk.Ray
		segs  bunyk.Segments[T]
	)
	for y := 0; y < proj.Height; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := 0; x < proj.Width; x++ {
			i := y*proj.Width + x
			it.Start(&ray, x, y)
			for bunyk.CastRay(it, &ray, field, &segs) > 0 {
				for k, cell := range segs.Cells {
					if proj.FirstCell[i] < 0 {
						proj.FirstCell[i] = cell
					}
					length := segs.Lengths[k]
					proj.Thickness[i] += length
					if segs.Components > 0 {
						near := float64(segs.NearValues(k)[0])
						far := float64(segs.FarValues(k)[0])
						proj.Integral[i] += length * (near + far) / 2
					}
				}
				proj.Segments[i] += segs.Len()
				stats.segments += segs.Len()
			}
		}
	}
	return stats, nil
}
