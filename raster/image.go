// Package raster holds an in-memory image model for satellite scenes and the
// processing steps applied to them after download. Pixel data lives in a
// band-sequential float64 array alongside an affine geotransform and an EPSG
// code. GDAL is only involved at the file and reprojection boundary, see
// gdal.go.
package raster

import (
	"errors"
	"fmt"
	"math"
)

// DimOrder selects how Pixels lays out the band dimension.
type DimOrder string

const (
	// DimOrderFirst presents pixels band by band (band, row, column)
	DimOrderFirst DimOrder = "first"
	// DimOrderLast interleaves bands per pixel (row, column, band)
	DimOrderLast DimOrder = "last"
)

func (d DimOrder) valid() bool {
	return d == DimOrderFirst || d == DimOrderLast
}

// Image is a georeferenced raster held fully in memory.
type Image struct {
	arr       []float64
	bands     int
	rows      int
	cols      int
	transform [6]float64
	epsg      int
	dimOrder  DimOrder
}

// NewImageFromArray creates an Image from a band-sequential pixel array of
// shape (bands, rows, cols). An EPSG code and a geotransform are required.
func NewImageFromArray(data []float64, bands, rows, cols int, epsg int, transform [6]float64, dimOrder DimOrder) (*Image, error) {
	if !dimOrder.valid() {
		return nil, errors.New("dimorder for bands or channels must be either 'first' or 'last'")
	}
	if epsg <= 0 {
		return nil, errors.New("crs must be given when creating an image from an array")
	}
	if transform == ([6]float64{}) {
		return nil, errors.New("transform must be given when creating an image from an array")
	}
	if bands <= 0 || rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid image shape (%d, %d, %d)", bands, rows, cols)
	}
	if len(data) != bands*rows*cols {
		return nil, fmt.Errorf("pixel array has %d values, shape (%d, %d, %d) needs %d", len(data), bands, rows, cols, bands*rows*cols)
	}
	return &Image{
		arr:       data,
		bands:     bands,
		rows:      rows,
		cols:      cols,
		transform: transform,
		epsg:      epsg,
		dimOrder:  dimOrder,
	}, nil
}

// NewImageFromGrid creates a single band Image from a row-major grid.
func NewImageFromGrid(grid [][]float64, epsg int, transform [6]float64, dimOrder DimOrder) (*Image, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, errors.New("pixel grid must not be empty")
	}
	rows := len(grid)
	cols := len(grid[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range grid {
		if len(row) != cols {
			return nil, errors.New("pixel grid rows must have equal length")
		}
		data = append(data, row...)
	}
	return NewImageFromArray(data, 1, rows, cols, epsg, transform, dimOrder)
}

// Bands returns the band count.
func (im *Image) Bands() int { return im.bands }

// Rows returns the row count.
func (im *Image) Rows() int { return im.rows }

// Cols returns the column count.
func (im *Image) Cols() int { return im.cols }

// EPSG returns the EPSG code of the coordinate reference system.
func (im *Image) EPSG() int { return im.epsg }

// Transform returns the affine geotransform in GDAL order.
func (im *Image) Transform() [6]float64 { return im.transform }

// Bounds returns the georeferenced bounding box of the full raster.
func (im *Image) Bounds() Bounds {
	return im.fullWindow().Bounds(im.transform)
}

// At returns the pixel value at (band, row, col).
func (im *Image) At(band, row, col int) float64 {
	return im.arr[band*im.rows*im.cols+row*im.cols+col]
}

// Band returns the pixel values of one band as a row-major slice. The slice
// aliases the image, writes show through.
func (im *Image) Band(band int) ([]float64, error) {
	if band < 0 || band >= im.bands {
		return nil, fmt.Errorf("band %d out of range, image has %d bands", band, im.bands)
	}
	size := im.rows * im.cols
	return im.arr[band*size : (band+1)*size], nil
}

// Pixels returns a copy of the pixel array laid out according to the image
// dimension order, band-sequential for "first" and pixel-interleaved for
// "last".
func (im *Image) Pixels() []float64 {
	out := make([]float64, len(im.arr))
	if im.dimOrder == DimOrderFirst {
		copy(out, im.arr)
		return out
	}
	size := im.rows * im.cols
	for i := 0; i < size; i++ {
		for b := 0; b < im.bands; b++ {
			out[i*im.bands+b] = im.arr[b*size+i]
		}
	}
	return out
}

func (im *Image) fullWindow() Window {
	return Window{Width: im.cols, Height: im.rows}
}

// ValidDataBounds returns the georeferenced bounds of the smallest window
// containing all pixels that differ from the nodata value in any band.
func (im *Image) ValidDataBounds(nodata float64) (Bounds, error) {
	minRow, minCol := im.rows, im.cols
	maxRow, maxCol := -1, -1
	for b := 0; b < im.bands; b++ {
		for r := 0; r < im.rows; r++ {
			for c := 0; c < im.cols; c++ {
				if im.At(b, r, c) == nodata {
					continue
				}
				if r < minRow {
					minRow = r
				}
				if r > maxRow {
					maxRow = r
				}
				if c < minCol {
					minCol = c
				}
				if c > maxCol {
					maxCol = c
				}
			}
		}
	}
	if maxRow < 0 {
		return Bounds{}, errors.New("image has no valid data pixels")
	}
	window := Window{ColOff: minCol, RowOff: minRow, Width: maxCol - minCol + 1, Height: maxRow - minRow + 1}
	return window.Bounds(im.transform), nil
}

// MaskOptions control Mask behavior.
type MaskOptions struct {
	// Crop shrinks the raster to the masked window
	Crop bool
	// Pad grows the raster first so bounds extending beyond it can be
	// masked without loss
	Pad bool
	// Fill is the nodata value written to masked and padded pixels
	Fill float64
}

// Mask replaces all pixels outside the given bounds with the fill value.
// With Crop set, the raster is cut down to the window covering the bounds
// and the geotransform is moved accordingly. With Pad set, the raster is
// padded out first where the bounds extend beyond it.
func (im *Image) Mask(bounds Bounds, opts MaskOptions) error {
	if bounds.MinX >= bounds.MaxX || bounds.MinY >= bounds.MaxY {
		return fmt.Errorf("degenerate mask bounds (%v)", bounds)
	}
	if opts.Pad {
		im.padToBounds(bounds, opts.Fill)
	}

	window := im.windowFor(bounds).Intersection(im.fullWindow())
	if window.IsEmpty() {
		return errors.New("mask bounds do not overlap the image")
	}

	if opts.Crop {
		im.crop(window)
		return nil
	}

	size := im.rows * im.cols
	for b := 0; b < im.bands; b++ {
		for r := 0; r < im.rows; r++ {
			for c := 0; c < im.cols; c++ {
				inside := r >= window.RowOff && r < window.RowOff+window.Height &&
					c >= window.ColOff && c < window.ColOff+window.Width
				if !inside {
					im.arr[b*size+r*im.cols+c] = opts.Fill
				}
			}
		}
	}
	return nil
}

// windowFor maps georeferenced bounds onto the pixel grid, rounding outward
// so partially covered pixels are included.
func (im *Image) windowFor(bounds Bounds) Window {
	colStart := int(math.Floor((bounds.MinX - im.transform[0]) / im.transform[1]))
	colEnd := int(math.Ceil((bounds.MaxX - im.transform[0]) / im.transform[1]))
	rowStart := int(math.Floor((bounds.MaxY - im.transform[3]) / im.transform[5]))
	rowEnd := int(math.Ceil((bounds.MinY - im.transform[3]) / im.transform[5]))
	return Window{ColOff: colStart, RowOff: rowStart, Width: colEnd - colStart, Height: rowEnd - rowStart}
}

func (im *Image) crop(window Window) {
	size := im.rows * im.cols
	out := make([]float64, im.bands*window.Height*window.Width)
	i := 0
	for b := 0; b < im.bands; b++ {
		for r := window.RowOff; r < window.RowOff+window.Height; r++ {
			offset := b*size + r*im.cols + window.ColOff
			i += copy(out[i:], im.arr[offset:offset+window.Width])
		}
	}
	im.arr = out
	im.rows = window.Height
	im.cols = window.Width
	im.transform[0] += float64(window.ColOff) * im.transform[1]
	im.transform[3] += float64(window.RowOff) * im.transform[5]
}

// padToBounds grows the raster uniformly on all sides by the largest
// distance the bounds extend beyond it, filling new pixels with the fill
// value.
func (im *Image) padToBounds(bounds Bounds, fill float64) {
	current := im.Bounds()
	diff := math.Max(bounds.MaxX-current.MaxX, bounds.MaxY-current.MaxY)
	diff = math.Max(diff, math.Max(current.MinX-bounds.MinX, current.MinY-bounds.MinY))
	if diff <= 0 {
		return
	}
	pad := int(math.Ceil(diff / im.transform[1]))

	rows := im.rows + 2*pad
	cols := im.cols + 2*pad
	out := make([]float64, im.bands*rows*cols)
	if fill != 0 {
		for i := range out {
			out[i] = fill
		}
	}
	oldSize := im.rows * im.cols
	for b := 0; b < im.bands; b++ {
		for r := 0; r < im.rows; r++ {
			src := b*oldSize + r*im.cols
			dst := b*rows*cols + (r+pad)*cols + pad
			copy(out[dst:dst+im.cols], im.arr[src:src+im.cols])
		}
	}
	im.arr = out
	im.rows = rows
	im.cols = cols
	im.transform[0] -= float64(pad) * im.transform[1]
	im.transform[3] -= float64(pad) * im.transform[5]
}

// Tiles cuts the raster into windows of the given pixel size, expanded by
// the overlap on every side and clipped to the raster bounds. The last
// column and row of tiles may be smaller.
func (im *Image) Tiles(width, height, overlap int) []Window {
	bounding := im.fullWindow()
	var tiles []Window
	for colOff := 0; colOff < im.cols; colOff += width {
		for rowOff := 0; rowOff < im.rows; rowOff += height {
			tile := Window{
				ColOff: colOff - overlap,
				RowOff: rowOff - overlap,
				Width:  width + 2*overlap,
				Height: height + 2*overlap,
			}
			tiles = append(tiles, tile.Intersection(bounding))
		}
	}
	return tiles
}

// Subset copies one band of a tile window out of the raster and returns it
// as a row-major slice together with the georeferenced bounds of the window.
func (im *Image) Subset(tile Window, band int) ([]float64, Bounds, error) {
	if band < 0 || band >= im.bands {
		return nil, Bounds{}, fmt.Errorf("band %d out of range, image has %d bands", band, im.bands)
	}
	clipped := tile.Intersection(im.fullWindow())
	if clipped != tile {
		return nil, Bounds{}, fmt.Errorf("tile %+v exceeds the image extent", tile)
	}
	size := im.rows * im.cols
	out := make([]float64, tile.Height*tile.Width)
	for r := 0; r < tile.Height; r++ {
		offset := band*size + (tile.RowOff+r)*im.cols + tile.ColOff
		copy(out[r*tile.Width:], im.arr[offset:offset+tile.Width])
	}
	return out, tile.Bounds(im.transform), nil
}
