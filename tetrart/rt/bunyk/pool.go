package bunyk

import "math"

const (
	DefaultMaxSlabs = 10000
	DefaultSlabSize = 10000
)

// IntersectionRef addresses a record in an IntersectionPool.
// NoIntersection terminates a list.
type IntersectionRef int32

const NoIntersection IntersectionRef = -1

// Intersection is one entry of a pixel's depth-sorted list of front-facing
// boundary triangles.
type Intersection struct {
	Triangle int32
	Z        float64
	Next     IntersectionRef
}

// IntersectionPool hands out Intersection records from lazily allocated
// fixed-size slabs. Records live until Reset; nothing is freed individually.
type IntersectionPool struct {
	slabs    [][]Intersection
	used     []int
	current  int
	slabSize int
	maxSlabs int
}

func NewIntersectionPool(maxSlabs, slabSize int) *IntersectionPool {
	if maxSlabs < 1 {
		maxSlabs = 1
	}
	if slabSize < 1 {
		slabSize = 1
	}
	// Refs are int32 slab*slabSize+offset.
	if limit := math.MaxInt32 / slabSize; maxSlabs > limit {
		maxSlabs = limit
	}
	return &IntersectionPool{
		slabs:    make([][]Intersection, 0, min(maxSlabs, 16)),
		slabSize: slabSize,
		maxSlabs: maxSlabs,
	}
}

// New reserves a record, or returns NoIntersection when every slab is full
// and no more may be allocated.
func (p *IntersectionPool) New() IntersectionRef {
	for p.current < p.maxSlabs {
		if p.current == len(p.slabs) {
			p.slabs = append(p.slabs, make([]Intersection, p.slabSize))
			p.used = append(p.used, 0)
		}
		if n := p.used[p.current]; n < p.slabSize {
			p.used[p.current] = n + 1
			return IntersectionRef(p.current*p.slabSize + n)
		}
		p.current++
	}
	return NoIntersection
}

func (p *IntersectionPool) At(ref IntersectionRef) *Intersection {
	i := int(ref)
	return &p.slabs[i/p.slabSize][i%p.slabSize]
}

// Reset marks every slab empty and keeps the storage for reuse.
func (p *IntersectionPool) Reset() {
	for i := range p.used {
		p.used[i] = 0
	}
	p.current = 0
}

// Len is the number of records handed out since the last Reset.
func (p *IntersectionPool) Len() int {
	n := 0
	for _, u := range p.used {
		n += u
	}
	return n
}

// Slabs is the number of slabs allocated so far.
func (p *IntersectionPool) Slabs() int { return len(p.slabs) }
