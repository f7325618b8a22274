// Package bunyk implements the Bunyk ray-cast function for tetrahedral meshes:
// boundary faces are rasterized into per-pixel depth-sorted entry lists, and
// rays then walk from cell to cell through the face adjacency graph.
package bunyk

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gekko3d/tetra/tetrart/rt/core"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	ErrNoRenderer = errors.New("bunyk: no renderer")
	ErrNoCamera   = errors.New("bunyk: renderer has no camera")
	ErrNoVolume   = errors.New("bunyk: no volume")
	ErrNoMapper   = errors.New("bunyk: no mapper or wrong type")
	ErrNoInput    = errors.New("bunyk: no input to mapper")
)

// RayCastMapper is what a volume's mapper must provide: the input mesh and
// the layout of the image being rendered, in image pixels.
type RayCastMapper interface {
	core.Mapper
	ImageInUseSize() [2]int
	ImageOrigin() [2]int
	ImageViewportSize() [2]int
}

type Option func(*RayCastFunction)

func WithLogger(l core.Logger) Option {
	return func(f *RayCastFunction) { f.logger = core.OrNop(l) }
}

// WithPoolLimits bounds the intersection pool to slabs*slabSize records.
func WithPoolLimits(slabs, slabSize int) Option {
	return func(f *RayCastFunction) {
		f.maxSlabs, f.slabSize = slabs, slabSize
	}
}

// RayCastFunction holds the per-render state shared by every ray of one
// image. Initialize, Finalize and pixel traversal must not overlap.
type RayCastFunction struct {
	logger   core.Logger
	maxSlabs int
	slabSize int

	renderer *core.Renderer
	volume   *core.Volume
	mapper   RayCastMapper
	valid    bool

	// screen-space points and the inverse of the projection that made them
	points      []mgl64.Vec3
	viewToWorld mgl64.Mat4

	imageSize         [2]int
	imageOrigin       [2]int
	imageViewportSize [2]int
	image             []IntersectionRef
	pool              *IntersectionPool

	topology   *Topology
	savedInput uuid.UUID
	savedMTime uint64

	poolExhausted  bool
	candidateWarns atomic.Bool
}

func NewRayCastFunction(opts ...Option) *RayCastFunction {
	f := &RayCastFunction{
		logger:   core.NewNopLogger(),
		maxSlabs: DefaultMaxSlabs,
		slabSize: DefaultSlabSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CheckValidity reports whether ren and vol can be rendered. A missing
// collaborator is an error; an empty input mesh is not, it just renders
// nothing.
func (f *RayCastFunction) CheckValidity(ren *core.Renderer, vol *core.Volume) (bool, error) {
	if ren == nil {
		return false, ErrNoRenderer
	}
	if ren.Camera == nil {
		return false, ErrNoCamera
	}
	if vol == nil {
		return false, ErrNoVolume
	}
	mapper, ok := vol.Mapper.(RayCastMapper)
	if !ok || mapper == nil {
		return false, fmt.Errorf("%w: %T", ErrNoMapper, vol.Mapper)
	}
	input := mapper.Input()
	if input == nil {
		return false, ErrNoInput
	}
	if input.NumPoints() == 0 {
		return false, nil
	}
	return true, nil
}

// Initialize prepares the per-pixel intersection lists for one render. On
// failure the render should be skipped; Valid stays false.
func (f *RayCastFunction) Initialize(ren *core.Renderer, vol *core.Volume) error {
	f.valid = false
	ok, err := f.CheckValidity(ren, vol)
	if err != nil {
		f.logger.Errorf("ray cast setup: %v", err)
		return err
	}
	if !ok {
		return nil
	}

	f.renderer = ren
	f.volume = vol
	f.mapper = vol.Mapper.(RayCastMapper)
	f.poolExhausted = false
	f.candidateWarns.Store(false)

	f.imageViewportSize = f.mapper.ImageViewportSize()
	f.imageOrigin = f.mapper.ImageOrigin()
	f.resizeImage(f.mapper.ImageInUseSize())

	f.transformPoints()
	f.updateTopology()
	f.topology.ComputeViewDependentInfo(f.points)
	f.computePixelIntersections()

	f.valid = true
	return nil
}

// updateTopology rebuilds the face graph when the input mesh was replaced or
// modified since the last build.
func (f *RayCastFunction) updateTopology() {
	input := f.mapper.Input()
	if f.topology != nil && f.savedInput == input.ID() && f.savedMTime >= input.MTime() {
		return
	}
	f.topology = BuildTopology(input, f.logger)
	f.savedInput = input.ID()
	f.savedMTime = input.MTime()
	f.logger.Debugf("built %d triangles for %d cells", f.topology.NumTriangles(), input.NumCells())
}

// Finalize drops the render collaborators. The topology and buffers are kept
// for the next Initialize.
func (f *RayCastFunction) Finalize() {
	f.renderer = nil
	f.volume = nil
	f.mapper = nil
	f.valid = false
}

func (f *RayCastFunction) Valid() bool { return f.valid }

// NewIterator returns a traversal iterator bound to the current render, or
// nil if Initialize has not succeeded.
func (f *RayCastFunction) NewIterator() *Iterator {
	if !f.valid {
		return nil
	}
	return &Iterator{
		fn:                       f,
		Bounds:                   [2]float64{0, 1},
		MaxNumberOfIntersections: DefaultMaxIntersections,
	}
}

// Topology is the face graph of the last initialized input, or nil.
func (f *RayCastFunction) Topology() *Topology { return f.topology }

// ScreenPoints are the input points in image-local screen space.
func (f *RayCastFunction) ScreenPoints() []mgl64.Vec3 { return f.points }

// ViewToWorld maps clip coordinates back to the input's model space.
func (f *RayCastFunction) ViewToWorld() mgl64.Mat4 { return f.viewToWorld }

func (f *RayCastFunction) ImageSize() [2]int { return f.imageSize }

// Pool exposes the intersection pool of the current render.
func (f *RayCastFunction) Pool() *IntersectionPool { return f.pool }

// Input is the mesh of the current render, or nil.
func (f *RayCastFunction) Input() *mesh.Mesh {
	if f.mapper == nil {
		return nil
	}
	return f.mapper.Input()
}

func (f *RayCastFunction) warnCandidates(n int) {
	if f.candidateWarns.CompareAndSwap(false, true) {
		f.logger.Warnf("Found %d candidate exit triangles instead of 3", n)
	}
}
