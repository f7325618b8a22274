package bunyk

import (
	"math"

	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultMaxIntersections = 32

// Segments receives the cell spans crossed by a ray, near to far. Near and
// Far hold Components interpolated field values per segment.
type Segments[T mesh.Number] struct {
	Cells      []int
	Lengths    []float64
	Near       []T
	Far        []T
	Components int
}

func (s *Segments[T]) Len() int { return len(s.Cells) }

// Reset empties s, keeping its storage.
func (s *Segments[T]) Reset() {
	s.Cells = s.Cells[:0]
	s.Lengths = s.Lengths[:0]
	s.Near = s.Near[:0]
	s.Far = s.Far[:0]
}

func (s *Segments[T]) NearValues(i int) []T {
	return s.Near[i*s.Components : (i+1)*s.Components]
}

func (s *Segments[T]) FarValues(i int) []T {
	return s.Far[i*s.Components : (i+1)*s.Components]
}

// Ray is the traversal state of one pixel. It is owned by the caller and may
// be reused across pixels through Iterator.Start.
type Ray struct {
	X, Y int

	next     IntersectionRef
	triangle int32
	tetra    int
}

// Done reports whether the ray has nothing left to traverse.
func (r *Ray) Done() bool { return r.triangle == noTriangle && r.next == NoIntersection }

// Iterator walks rays of the function's current render. Bounds limits the
// depth range, in [0, 1] screen depth, in which segments are reported.
type Iterator struct {
	fn *RayCastFunction

	Bounds                   [2]float64
	MaxNumberOfIntersections int
}

func (it *Iterator) SetBounds(near, far float64) { it.Bounds = [2]float64{near, far} }

func (it *Iterator) SetMaxNumberOfIntersections(n int) { it.MaxNumberOfIntersections = n }

// Start positions r at the head of pixel (x, y) and skips every segment that
// ends before Bounds[0].
func (it *Iterator) Start(r *Ray, x, y int) {
	*r = Ray{
		X:        x,
		Y:        y,
		next:     it.fn.listHead(x, y),
		triangle: noTriangle,
		tetra:    noTetra,
	}
	for castRay[float64](it.fn, r, it.Bounds[0], it.maxCount(), nil, nil) > 0 {
	}
}

// Next reports up to MaxNumberOfIntersections more segments of r without
// sampling a field. It returns the count; 0 means the ray is finished or the
// next segment lies beyond Bounds[1].
func (it *Iterator) Next(r *Ray, out *Segments[float64]) int {
	if out != nil {
		out.Reset()
		out.Components = 0
	}
	return castRay[float64](it.fn, r, it.Bounds[1], it.maxCount(), nil, out)
}

func (it *Iterator) maxCount() int {
	if it.MaxNumberOfIntersections < 1 {
		return 1
	}
	return it.MaxNumberOfIntersections
}

// CastRay is Next with field values interpolated at both ends of every
// segment. field must belong to the render's input mesh.
func CastRay[T mesh.Number](it *Iterator, r *Ray, field *mesh.Field[T], out *Segments[T]) int {
	if out != nil {
		out.Reset()
		out.Components = 0
		if field != nil {
			out.Components = field.Components
		}
	}
	return castRay(it.fn, r, it.Bounds[1], it.maxCount(), field, out)
}

// castRay advances r through at most maxCount cells. A segment whose exit
// depth passes farClip is left unconsumed.
func castRay[T mesh.Number](fn *RayCastFunction, r *Ray, farClip float64, maxCount int, field *mesh.Field[T], out *Segments[T]) int {
	topo := fn.topology
	points := fn.points
	x, y := float64(r.X), float64(r.Y)

	nearZ := -math.MaxFloat64
	var nearPoint mgl64.Vec3
	if r.triangle != noTriangle {
		nearZ = topo.triangles[r.triangle].DepthAt(x, y)
		nearPoint = fn.PixelToModel(x, y, nearZ)
	}

	n := 0
	for n < maxCount {
		if r.triangle == noTriangle {
			if r.next == NoIntersection {
				break
			}
			rec := fn.pool.At(r.next)
			r.next = rec.Next
			r.triangle = rec.Triangle
			r.tetra = topo.triangles[rec.Triangle].ReferredByTetra[0]
			nearZ = topo.triangles[r.triangle].DepthAt(x, y)
			nearPoint = fn.PixelToModel(x, y, nearZ)
		}

		var candidates [3]int32
		found := 0
		for _, ti := range topo.tetraTriangles[r.tetra*4 : r.tetra*4+4] {
			if ti == r.triangle {
				continue
			}
			if found == len(candidates) {
				found++
				break
			}
			candidates[found] = ti
			found++
		}
		if found != len(candidates) {
			fn.warnCandidates(found)
			found = min(found, len(candidates))
		}

		exit := noTriangle
		farZ := math.MaxFloat64
		for _, ti := range candidates[:found] {
			cand := &topo.triangles[ti]
			if cand.C == 0 {
				continue
			}
			if z := cand.DepthAt(x, y); z > nearZ && z < farZ {
				farZ = z
				exit = ti
			}
		}

		// Lost the ray numerically; resume at the next entry.
		if exit == noTriangle || farZ <= nearZ {
			r.triangle = noTriangle
			r.tetra = noTetra
			continue
		}
		if farZ > farClip {
			return n
		}

		farPoint := fn.PixelToModel(x, y, farZ)
		if out != nil {
			out.Cells = append(out.Cells, r.tetra)
			out.Lengths = append(out.Lengths, farPoint.Sub(nearPoint).Len())
			if field != nil {
				out.Near = appendInterpolated(out.Near, field, &topo.triangles[r.triangle], x, y, points)
				out.Far = appendInterpolated(out.Far, field, &topo.triangles[exit], x, y, points)
			}
		}
		n++

		shared := &topo.triangles[exit]
		switch {
		case shared.IsBoundary():
			r.triangle = noTriangle
			r.tetra = noTetra
		case shared.ReferredByTetra[0] == r.tetra:
			r.triangle = exit
			r.tetra = shared.ReferredByTetra[1]
		default:
			r.triangle = exit
			r.tetra = shared.ReferredByTetra[0]
		}
		nearZ = farZ
		nearPoint = farPoint
	}
	return n
}

func appendInterpolated[T mesh.Number](dst []T, field *mesh.Field[T], tri *Triangle, x, y float64, points []mgl64.Vec3) []T {
	wa, wb, wc := tri.Weights(x, y, points)
	ia, ib, ic := tri.PointIndex[0], tri.PointIndex[1], tri.PointIndex[2]
	for c := 0; c < field.Components; c++ {
		v := wa*float64(field.Component(ia, c)) +
			wb*float64(field.Component(ib, c)) +
			wc*float64(field.Component(ic, c))
		dst = append(dst, T(v))
	}
	return dst
}
