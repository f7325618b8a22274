package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gcfg.v1"
)

const ExampleConfig = `[Mesh]

#######################
# Required Parameters #
#######################

# Number of grid blocks along each axis. Every block is split into six
# tetrahedra.
BlocksX = 8
BlocksY = 8
BlocksZ = 8

# Edge length of one block.
Spacing = 0.25

#######################
# Optional Parameters #
#######################

# Point field sampled on the grid: one of [ Radial | Linear | None ].
# Radial is the distance from the grid centre, Linear is x + y + z.
# Field = Radial

[Camera]

# Distance from the grid centre along +z before Elevation and Azimuth are
# applied. Defaults to three times the grid diagonal.
# Distance = 6

# Degrees.
# Elevation = 20
# Azimuth = 30
# ViewAngle = 30

# Orthographic projection. ParallelScale is half the viewport height in
# world units; it defaults to half the grid diagonal.
# Parallel = false
# ParallelScale = 1

[Render]

#######################
# Required Parameters #
#######################

Width = 256
Height = 256

# Image written for every frame. A single %d is replaced by the frame number.
Output = frame_%03d.tiff

#######################
# Optional Parameters #
#######################

# What each pixel stores: one of [ Thickness | Integral ].
# Quantity = Thickness

# Renderer pixels per cast ray.
# SampleDistance = 1

# Frames rendered while orbiting Turntable degrees around the grid.
# Frames = 1
# Turntable = 360

# Intersections drained per traversal call.
# MaxIntersections = 32

# Binary glTF file receiving the boundary surface of the mesh.
# Surface = boundary.glb`

type MeshConfig struct {
	// Required
	BlocksX, BlocksY, BlocksZ int
	Spacing                   float64

	// Optional
	Field string
}

type CameraConfig struct {
	Distance, Elevation, Azimuth float64
	ViewAngle                    float64
	Parallel                     bool
	ParallelScale                float64
}

type RenderConfig struct {
	// Required
	Width, Height int
	Output        string

	// Optional
	Quantity         string
	SampleDistance   float64
	Frames           int
	Turntable        float64
	MaxIntersections int
	Surface          string
}

type Config struct {
	Mesh   MeshConfig
	Camera CameraConfig
	Render RenderConfig
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{Field: "Radial"},
		Camera: CameraConfig{
			Elevation: 20,
			Azimuth:   30,
			ViewAngle: 30,
		},
		Render: RenderConfig{
			Quantity:         "Thickness",
			SampleDistance:   1,
			Frames:           1,
			Turntable:        360,
			MaxIntersections: 32,
		},
	}
}

// WriteExampleConfig writes ExampleConfig verbatim. The text carries a %03d
// frame pattern, so it never goes through a format string.
func WriteExampleConfig(w io.Writer) error {
	_, err := io.WriteString(w, ExampleConfig+"\n")
	return err
}

// ReadConfig parses an INI file over DefaultConfig and validates the result.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig is ReadConfig for in-memory text.
func ParseConfig(text string) (*Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadStringInto(cfg, text); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	fieldNames    = []string{"radial", "linear", "none"}
	quantityNames = []string{"thickness", "integral"}
)

func oneOf(v string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(v, n) {
			return true
		}
	}
	return false
}

// Validate reports every invalid parameter at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Mesh.BlocksX < 1 || c.Mesh.BlocksY < 1 || c.Mesh.BlocksZ < 1 {
		errs = append(errs, fmt.Errorf(
			"Mesh blocks must all be positive, but are %d x %d x %d",
			c.Mesh.BlocksX, c.Mesh.BlocksY, c.Mesh.BlocksZ,
		))
	}
	if c.Mesh.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("Mesh Spacing must be positive, but is %g", c.Mesh.Spacing))
	}
	if !oneOf(c.Mesh.Field, fieldNames) {
		errs = append(errs, fmt.Errorf("Mesh Field must be one of [ Radial | Linear | None ], but is '%s'", c.Mesh.Field))
	}

	if c.Camera.Distance < 0 {
		errs = append(errs, fmt.Errorf("Camera Distance must not be negative, but is %g", c.Camera.Distance))
	}
	if c.Camera.ViewAngle <= 0 || c.Camera.ViewAngle >= 180 {
		errs = append(errs, fmt.Errorf("Camera ViewAngle must be in (0, 180), but is %g", c.Camera.ViewAngle))
	}
	if c.Camera.ParallelScale < 0 {
		errs = append(errs, fmt.Errorf("Camera ParallelScale must not be negative, but is %g", c.Camera.ParallelScale))
	}

	if c.Render.Width < 1 || c.Render.Height < 1 {
		errs = append(errs, fmt.Errorf("Render size must be positive, but is %d x %d", c.Render.Width, c.Render.Height))
	}
	if c.Render.Output == "" {
		errs = append(errs, errors.New("Render Output must be set"))
	} else if n := strings.Count(c.Render.Output, "%"); n > 1 {
		errs = append(errs, fmt.Errorf("Render Output may hold one %%d verb, but '%s' has %d", c.Render.Output, n))
	}
	if !oneOf(c.Render.Quantity, quantityNames) {
		errs = append(errs, fmt.Errorf("Render Quantity must be one of [ Thickness | Integral ], but is '%s'", c.Render.Quantity))
	}
	if c.Render.SampleDistance < 1 {
		errs = append(errs, fmt.Errorf("Render SampleDistance must be at least 1, but is %g", c.Render.SampleDistance))
	}
	if c.Render.Frames < 1 {
		errs = append(errs, fmt.Errorf("Render Frames must be positive, but is %d", c.Render.Frames))
	}
	if c.Render.MaxIntersections < 1 {
		errs = append(errs, fmt.Errorf("Render MaxIntersections must be positive, but is %d", c.Render.MaxIntersections))
	}
	return errors.Join(errs...)
}

// FramePath is the output file of frame i.
func (c *RenderConfig) FramePath(i int) string {
	if strings.Contains(c.Output, "%") {
		return fmt.Sprintf(c.Output, i)
	}
	return c.Output
}
