package mesh

import "fmt"

type Number interface {
	float32 | float64
}

type FieldKind uint8

const (
	FieldFloat32 FieldKind = iota + 1
	FieldFloat64
)

func (k FieldKind) String() string {
	switch k {
	case FieldFloat32:
		return "float32"
	case FieldFloat64:
		return "float64"
	}
	return fmt.Sprintf("fieldkind(%d)", uint8(k))
}

// Field is a point-data array of Components values per point, stored
// tuple-major.
type Field[T Number] struct {
	Name       string
	Components int
	Values     []T
}

func NewField[T Number](name string, components, tuples int) *Field[T] {
	if components < 1 {
		components = 1
	}
	return &Field[T]{
		Name:       name,
		Components: components,
		Values:     make([]T, components*tuples),
	}
}

func (f *Field[T]) NumTuples() int {
	if f.Components == 0 {
		return 0
	}
	return len(f.Values) / f.Components
}

func (f *Field[T]) NumComponents() int { return f.Components }

func (f *Field[T]) FieldName() string { return f.Name }

func (f *Field[T]) Component(pt, c int) T {
	return f.Values[pt*f.Components+c]
}

func (f *Field[T]) SetComponent(pt, c int, v T) {
	f.Values[pt*f.Components+c] = v
}

func (f *Field[T]) Tuple(pt int) []T {
	return f.Values[pt*f.Components : (pt+1)*f.Components]
}

func (f *Field[T]) Kind() FieldKind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return FieldFloat32
	default:
		return FieldFloat64
	}
}

func (f *Field[T]) pointField() {}

// PointField is satisfied only by *Field[float32] and *Field[float64]; callers
// type-switch on it once to pick a specialised code path.
type PointField interface {
	Kind() FieldKind
	FieldName() string
	NumComponents() int
	NumTuples() int
	pointField()
}

// AddField attaches f as point data. Fields with the same name are replaced.
func (m *Mesh) AddField(f PointField) error {
	if f.NumTuples() != len(m.points) {
		return fmt.Errorf("add field %q: %d tuples for %d points: %w",
			f.FieldName(), f.NumTuples(), len(m.points), ErrFieldSize)
	}
	for i, existing := range m.fields {
		if existing.FieldName() == f.FieldName() {
			m.fields[i] = f
			m.Modified()
			return nil
		}
	}
	m.fields = append(m.fields, f)
	m.Modified()
	return nil
}

// Field returns the named point field, or nil.
func (m *Mesh) Field(name string) PointField {
	for _, f := range m.fields {
		if f.FieldName() == name {
			return f
		}
	}
	return nil
}

func (m *Mesh) Fields() []PointField {
	return append([]PointField(nil), m.fields...)
}

// FieldFromFunc samples fn at every point of m into a single-component field.
func FieldFromFunc[T Number](name string, m *Mesh, fn func(x, y, z float64) float64) *Field[T] {
	f := NewField[T](name, 1, m.NumPoints())
	for i, p := range m.points {
		f.Values[i] = T(fn(p[0], p[1], p[2]))
	}
	return f
}
