// Package app is the tetrart command: it builds a tetrahedral grid from an
// INI config, renders turntable frames with the Bunyk ray caster and writes
// them as 16-bit TIFF images.
package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/gekko3d/tetra"
	"github.com/gekko3d/tetra/tetrart/rt/core"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/tiff"
)

const (
	scalarFieldName = "scalar"
	turntableFPS    = 30
)

// Turntable eases the camera azimuth towards each frame's target angle with a
// critically damped spring.
type Turntable struct {
	Angle    float64
	velocity float64
	spring   harmonica.Spring
}

func NewTurntable(fps int) Turntable {
	return Turntable{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

func (t *Turntable) Step(target float64) float64 {
	t.Angle, t.velocity = t.spring.Update(t.Angle, t.velocity, target)
	return t.Angle
}

type App struct {
	Config    *Config
	Logger    core.Logger
	Profiler  *Profiler
	DebugMode bool

	Mesh     *mesh.Mesh
	Mapper   *tetra.Mapper
	Renderer *core.Renderer
	Volume   *core.Volume

	baseCamera *core.Camera
}

func NewApp(cfg *Config, logger core.Logger) *App {
	return &App{
		Config:   cfg,
		Logger:   core.OrNop(logger),
		Profiler: NewProfiler(),
	}
}

// Init builds the mesh, its field and the scene.
func (a *App) Init() error {
	mc := a.Config.Mesh
	size := mgl64.Vec3{float64(mc.BlocksX), float64(mc.BlocksY), float64(mc.BlocksZ)}.Mul(mc.Spacing)
	origin := size.Mul(-0.5)
	a.Mesh = mesh.NewTetraGrid(mc.BlocksX, mc.BlocksY, mc.BlocksZ, origin, mgl64.Vec3{mc.Spacing, mc.Spacing, mc.Spacing})

	var sample func(x, y, z float64) float64
	switch strings.ToLower(mc.Field) {
	case "radial":
		sample = func(x, y, z float64) float64 { return math.Sqrt(x*x + y*y + z*z) }
	case "linear":
		sample = func(x, y, z float64) float64 { return x + y + z }
	}
	if sample != nil {
		if err := a.Mesh.AddField(mesh.FieldFromFunc[float32](scalarFieldName, a.Mesh, sample)); err != nil {
			return fmt.Errorf("init field: %w", err)
		}
	}

	rc := a.Config.Render
	a.Mapper = tetra.NewMapper(a.Mesh, tetra.WithLogger(a.Logger), tetra.WithRecorder(a.Profiler))
	a.Mapper.ScalarField = scalarFieldName
	a.Mapper.ImageSampleDistance = rc.SampleDistance
	a.Mapper.MaxNumberOfIntersections = rc.MaxIntersections

	a.Renderer = core.NewRenderer(rc.Width, rc.Height)
	a.Volume = core.NewVolume(a.Mapper)
	a.baseCamera = a.framingCamera(size.Len())

	a.Logger.Infof("mesh: %d points, %d tetrahedra", a.Mesh.NumPoints(), a.Mesh.NumCells())
	return nil
}

// framingCamera looks at the grid centre from outside its bounding sphere.
func (a *App) framingCamera(diag float64) *core.Camera {
	cc := a.Config.Camera
	cam := core.NewCamera()

	dist := cc.Distance
	if dist == 0 {
		dist = 3 * diag
	}
	radius := diag / 2
	cam.Position = mgl64.Vec3{0, 0, dist}
	cam.ViewAngle = cc.ViewAngle
	cam.ParallelProjection = cc.Parallel
	cam.ParallelScale = cc.ParallelScale
	if cam.ParallelScale == 0 {
		cam.ParallelScale = radius
	}
	cam.ClippingRange = [2]float64{math.Max(dist-radius, 0.01*dist), dist + radius}
	cam.Elevation(cc.Elevation)
	cam.Azimuth(cc.Azimuth)
	return cam
}

// Run renders every configured frame.
func (a *App) Run(ctx context.Context) error {
	rc := a.Config.Render
	table := NewTurntable(turntableFPS)

	for frame := 0; frame < rc.Frames; frame++ {
		target := rc.Turntable * float64(frame) / float64(rc.Frames)
		angle := table.Step(target)

		a.Renderer.Camera = a.baseCamera.Clone()
		a.Renderer.Camera.Azimuth(angle)

		a.Profiler.Reset()
		proj, err := a.Mapper.Render(ctx, a.Renderer, a.Volume)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		a.Profiler.EndFrame()

		vals := proj.Thickness
		if strings.EqualFold(rc.Quantity, "integral") {
			vals = proj.Integral
		}
		path := rc.FramePath(frame)
		if err := WriteTIFF(path, ProjectionImage(proj, vals)); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		a.Logger.Infof("frame %d: azimuth %.1f, wrote %s", frame, angle, path)
		if a.DebugMode {
			a.Logger.Debugf("%s", a.Profiler.String())
		}

		if frame == 0 && rc.Surface != "" {
			// The topology persists past Finalize.
			topo := a.Mapper.RayCastFunction().Topology()
			if topo == nil {
				a.Logger.Warnf("no topology built, skipping surface %s", rc.Surface)
				continue
			}
			if err := ExportBoundary(rc.Surface, a.Mesh, topo); err != nil {
				return err
			}
			a.Logger.Infof("wrote %d boundary triangles to %s", len(topo.BoundaryTriangles()), rc.Surface)
		}
	}
	return nil
}

// ProjectionImage maps vals over the full viewport, top row first. Pixels the
// mesh covers land in [1, 65535]; everything else is 0.
func ProjectionImage(p *tetra.Projection, vals []float64) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, p.Viewport[0], p.Viewport[1]))
	lo, hi := p.Range(vals)
	scale := 0.0
	if hi > lo {
		scale = 65534 / (hi - lo)
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := y*p.Width + x
			if p.FirstCell[i] < 0 {
				continue
			}
			v := 1 + (vals[i]-lo)*scale
			if scale == 0 {
				v = 65535
			}
			row := p.Viewport[1] - 1 - (y + p.Origin[1])
			img.SetGray16(x+p.Origin[0], row, color.Gray16{Y: uint16(math.Round(v))})
		}
	}
	return img
}

func WriteTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
