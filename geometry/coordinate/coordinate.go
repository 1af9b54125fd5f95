package coordinate

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

type Point[T Number] struct {
	X T
	Y T
}

func NewPoint[T Number](x, y T) Point[T] {
	return Point[T]{X: x, Y: y}
}

// Add returns the component-wise sum of p and q.
func (p Point[T]) Add(q Point[T]) Point[T] {
	return Point[T]{X: p.X + q.X, Y: p.Y + q.Y}
}

// Bounds is an axis-aligned rectangle given by its top-left (Min) and
// bottom-right (Max) corners.
type Bounds[T Number] struct {
	Min Point[T]
	Max Point[T]
}

// NewBounds returns the rectangle spanned by two opposite corners.
func NewBounds[T Number](a, b Point[T]) Bounds[T] {
	return Bounds[T]{
		Min: Point[T]{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Point[T]{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// Valid reports whether Min is not to the right of or below Max.
func (b Bounds[T]) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y
}

// Size returns the width and height of b.
func (b Bounds[T]) Size() Point[T] {
	return Point[T]{X: b.Max.X - b.Min.X, Y: b.Max.Y - b.Min.Y}
}
