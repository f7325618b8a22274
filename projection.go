package tetra

// Projection holds per-ray results of one render over the in-use region of
// the viewport. Pixel (x, y) of the projection is viewport pixel
// (x+Origin[0], y+Origin[1]).
type Projection struct {
	Viewport      [2]int
	Origin        [2]int
	Width, Height int

	Thickness []float64 // total length of cells crossed
	Integral  []float64 // line integral of the first field component
	Segments  []int
	FirstCell []int // -1 where the ray missed the mesh
}

func newProjection(viewport, origin, size [2]int) *Projection {
	n := size[0] * size[1]
	p := &Projection{
		Viewport:  viewport,
		Origin:    origin,
		Width:     size[0],
		Height:    size[1],
		Thickness: make([]float64, n),
		Integral:  make([]float64, n),
		Segments:  make([]int, n),
		FirstCell: make([]int, n),
	}
	for i := range p.FirstCell {
		p.FirstCell[i] = -1
	}
	return p
}

// Index returns the slice index of viewport pixel (x, y), or -1 when it lies
// outside the rendered region.
func (p *Projection) Index(x, y int) int {
	x -= p.Origin[0]
	y -= p.Origin[1]
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return -1
	}
	return y*p.Width + x
}

func (p *Projection) ThicknessAt(x, y int) float64 {
	if i := p.Index(x, y); i >= 0 {
		return p.Thickness[i]
	}
	return 0
}

func (p *Projection) IntegralAt(x, y int) float64 {
	if i := p.Index(x, y); i >= 0 {
		return p.Integral[i]
	}
	return 0
}

// Range returns the smallest and largest value of vals over pixels the
// mesh covered.
func (p *Projection) Range(vals []float64) (lo, hi float64) {
	first := true
	for i, v := range vals {
		if p.FirstCell[i] < 0 {
			continue
		}
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}
