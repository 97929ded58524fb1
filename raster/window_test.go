package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowIntersection(t *testing.T) {
	bounding := Window{ColOff: 0, RowOff: 0, Width: 100, Height: 80}

	inner := Window{ColOff: 10, RowOff: 10, Width: 20, Height: 20}
	assert.Equal(t, inner, inner.Intersection(bounding))

	overhang := Window{ColOff: 90, RowOff: 70, Width: 20, Height: 20}
	clipped := overhang.Intersection(bounding)
	assert.Equal(t, Window{ColOff: 90, RowOff: 70, Width: 10, Height: 10}, clipped)

	negative := Window{ColOff: -5, RowOff: -5, Width: 20, Height: 20}
	assert.Equal(t, Window{ColOff: 0, RowOff: 0, Width: 15, Height: 15}, negative.Intersection(bounding))

	disjoint := Window{ColOff: 200, RowOff: 200, Width: 10, Height: 10}
	assert.True(t, disjoint.Intersection(bounding).IsEmpty())
}

func TestWindowBounds(t *testing.T) {
	// 10m pixels, origin at (500000, 5400000)
	transform := [6]float64{500000, 10, 0, 5400000, 0, -10}

	full := Window{ColOff: 0, RowOff: 0, Width: 100, Height: 50}
	bounds := full.Bounds(transform)
	assert.Equal(t, Bounds{MinX: 500000, MinY: 5399500, MaxX: 501000, MaxY: 5400000}, bounds)

	tile := Window{ColOff: 10, RowOff: 20, Width: 5, Height: 5}
	bounds = tile.Bounds(transform)
	assert.Equal(t, Bounds{MinX: 500100, MinY: 5399750, MaxX: 500150, MaxY: 5399800}, bounds)
}

func TestBoundsIntersects(t *testing.T) {
	base := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	assert.True(t, base.Intersects(Bounds{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}))
	assert.True(t, base.Intersects(Bounds{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}), "shared edge counts")
	assert.False(t, base.Intersects(Bounds{MinX: 11, MinY: 11, MaxX: 20, MaxY: 20}))
}
