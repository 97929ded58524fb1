package raster

// Window is a rectangular pixel region of a raster, addressed by its
// column/row offset and size.
type Window struct {
	ColOff int
	RowOff int
	Width  int
	Height int
}

// Intersection clips the window against another window. The result may be
// empty, which IsEmpty reports.
func (w Window) Intersection(other Window) Window {
	colOff := max(w.ColOff, other.ColOff)
	rowOff := max(w.RowOff, other.RowOff)
	colEnd := min(w.ColOff+w.Width, other.ColOff+other.Width)
	rowEnd := min(w.RowOff+w.Height, other.RowOff+other.Height)

	result := Window{ColOff: colOff, RowOff: rowOff, Width: colEnd - colOff, Height: rowEnd - rowOff}
	if result.Width < 0 {
		result.Width = 0
	}
	if result.Height < 0 {
		result.Height = 0
	}
	return result
}

// IsEmpty reports whether the window covers no pixels
func (w Window) IsEmpty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// Bounds returns the georeferenced bounding box of the window under a
// north-up affine geotransform
func (w Window) Bounds(transform [6]float64) Bounds {
	minX := transform[0] + float64(w.ColOff)*transform[1]
	maxX := transform[0] + float64(w.ColOff+w.Width)*transform[1]
	maxY := transform[3] + float64(w.RowOff)*transform[5]
	minY := transform[3] + float64(w.RowOff+w.Height)*transform[5]
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Bounds is a georeferenced bounding box in the coordinate reference system
// of the raster it belongs to.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Intersects reports whether two bounding boxes overlap. Boxes sharing only
// an edge count as overlapping.
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinX <= other.MaxX && other.MinX <= b.MaxX &&
		b.MinY <= other.MaxY && other.MinY <= b.MaxY
}
