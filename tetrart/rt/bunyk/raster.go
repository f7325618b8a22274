package bunyk

import "math"

// resizeImage clears the per-pixel list heads, reallocating when the in-use
// size changed, and empties the pool.
func (f *RayCastFunction) resizeImage(size [2]int) {
	size[0], size[1] = max(size[0], 0), max(size[1], 0)
	n := size[0] * size[1]
	if size != f.imageSize || len(f.image) != n {
		f.image = make([]IntersectionRef, n)
		f.imageSize = size
	}
	for i := range f.image {
		f.image[i] = NoIntersection
	}
	if f.pool == nil {
		f.pool = NewIntersectionPool(f.maxSlabs, f.slabSize)
	}
	f.pool.Reset()
}

// computePixelIntersections inserts every front-facing boundary triangle into
// the lists of the pixels it covers, ordered by the depth of its first point.
func (f *RayCastFunction) computePixelIntersections() {
	input := f.mapper.Input()
	points := f.points
	w, h := f.imageSize[0], f.imageSize[1]

	for ti := range f.topology.triangles {
		tri := &f.topology.triangles[ti]
		if !tri.IsBoundary() {
			continue
		}
		if !IsTriangleFrontFacing(tri, input.CellPoints(tri.ReferredByTetra[0]), points) {
			continue
		}

		a, b, c := points[tri.PointIndex[0]], points[tri.PointIndex[1]], points[tri.PointIndex[2]]
		minX := int(math.Floor(math.Min(a[0], math.Min(b[0], c[0]))))
		maxX := int(math.Ceil(math.Max(a[0], math.Max(b[0], c[0]))))
		minY := int(math.Floor(math.Min(a[1], math.Min(b[1], c[1]))))
		maxY := int(math.Ceil(math.Max(a[1], math.Max(b[1], c[1]))))
		minZ := math.Min(a[2], math.Min(b[2], c[2]))

		if minX >= w || minY >= h || maxX < 0 || maxY < 0 || minZ <= 0 {
			continue
		}
		minX, minY = max(minX, 0), max(minY, 0)
		maxX, maxY = min(maxX, w-1), min(maxY, h-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if !InTriangle(float64(x), float64(y), tri, points) {
					continue
				}
				if !f.insertIntersection(y*w+x, int32(ti), a[2]) {
					return
				}
			}
		}
	}
}

// insertIntersection links a new record into a pixel list, after any records
// of equal depth. It returns false once the pool is exhausted.
func (f *RayCastFunction) insertIntersection(pixel int, ti int32, z float64) bool {
	ref := f.pool.New()
	if ref == NoIntersection {
		if !f.poolExhausted {
			f.poolExhausted = true
			f.logger.Errorf("Out of space for intersections: %d records in use", f.pool.Len())
		}
		return false
	}
	rec := f.pool.At(ref)
	rec.Triangle = ti
	rec.Z = z
	rec.Next = NoIntersection

	head := f.image[pixel]
	if head == NoIntersection || z < f.pool.At(head).Z {
		rec.Next = head
		f.image[pixel] = ref
		return true
	}
	prev := f.pool.At(head)
	for prev.Next != NoIntersection && f.pool.At(prev.Next).Z <= z {
		prev = f.pool.At(prev.Next)
	}
	rec.Next = prev.Next
	prev.Next = ref
	return true
}

// ListEntry is a copy of one intersection record.
type ListEntry struct {
	Triangle int
	Z        float64
}

// IntersectionList copies the list of pixel (x, y) in image-local
// coordinates. It is nil outside the image or when no triangle covers it.
func (f *RayCastFunction) IntersectionList(x, y int) []ListEntry {
	ref := f.listHead(x, y)
	var out []ListEntry
	for ref != NoIntersection {
		rec := f.pool.At(ref)
		out = append(out, ListEntry{Triangle: int(rec.Triangle), Z: rec.Z})
		ref = rec.Next
	}
	return out
}

func (f *RayCastFunction) listHead(x, y int) IntersectionRef {
	if x < 0 || y < 0 || x >= f.imageSize[0] || y >= f.imageSize[1] {
		return NoIntersection
	}
	return f.image[y*f.imageSize[0]+x]
}
