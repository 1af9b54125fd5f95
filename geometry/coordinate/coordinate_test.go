package coordinate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoundsNormalizes(t *testing.T) {
	b := NewBounds(NewPoint(10.0, 2.0), NewPoint(4.0, 8.0))
	assert.Equal(t, Point[float64]{X: 4, Y: 2}, b.Min)
	assert.Equal(t, Point[float64]{X: 10, Y: 8}, b.Max)
	assert.True(t, b.Valid())
	assert.Equal(t, Point[float64]{X: 6, Y: 6}, b.Size())
}

func TestBoundsValid(t *testing.T) {
	b := Bounds[int]{Min: NewPoint(5, 0), Max: NewPoint(4, 1)}
	assert.False(t, b.Valid())
	assert.Equal(t, NewPoint(9, 1), b.Min.Add(NewPoint(4, 1)))
}
