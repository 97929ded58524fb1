package raster

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
)

// All GDAL traffic funnels through this file so the rest of the package
// stays testable without the native library.

var registerDrivers sync.Once

func gdalInit() {
	registerDrivers.Do(godal.RegisterAll)
}

var epsgAuthorityPattern = regexp.MustCompile(`AUTHORITY\["EPSG","(\d+)"\]`)

// epsgFromWKT digs the outermost EPSG authority code out of a WKT definition.
func epsgFromWKT(wkt string) (int, error) {
	matches := epsgAuthorityPattern.FindAllStringSubmatch(wkt, -1)
	if len(matches) == 0 {
		return 0, errors.New("spatial reference carries no EPSG authority code")
	}
	return strconv.Atoi(matches[len(matches)-1][1])
}

// OpenImage reads a GDAL supported raster file fully into memory.
func OpenImage(path string, dimOrder DimOrder) (*Image, error) {
	if !dimOrder.valid() {
		return nil, errors.New("dimorder for bands or channels must be either 'first' or 'last'")
	}
	gdalInit()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer ds.Close()

	return imageFromDataset(ds, dimOrder)
}

func imageFromDataset(ds *godal.Dataset, dimOrder DimOrder) (*Image, error) {
	structure := ds.Structure()
	cols, rows := structure.SizeX, structure.SizeY
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, errors.New("dataset has no raster bands")
	}

	transform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("reading geotransform: %w", err)
	}

	sr := ds.SpatialRef()
	defer sr.Close()
	wkt, err := sr.WKT()
	if err != nil {
		return nil, fmt.Errorf("reading spatial reference: %w", err)
	}
	epsg, err := epsgFromWKT(wkt)
	if err != nil {
		return nil, err
	}

	arr := make([]float64, len(bands)*rows*cols)
	size := rows * cols
	for i, band := range bands {
		if err := band.Read(0, 0, arr[i*size:(i+1)*size], cols, rows); err != nil {
			return nil, fmt.Errorf("reading band %d: %w", i+1, err)
		}
	}

	return &Image{
		arr:       arr,
		bands:     len(bands),
		rows:      rows,
		cols:      cols,
		transform: transform,
		epsg:      epsg,
		dimOrder:  dimOrder,
	}, nil
}

// toMemDataset round-trips the in-memory pixel array into a GDAL MEM dataset
// carrying the image georeferencing. The caller closes it.
func (im *Image) toMemDataset() (*godal.Dataset, error) {
	gdalInit()

	ds, err := godal.Create(godal.Memory, "", im.bands, godal.Float64, im.cols, im.rows)
	if err != nil {
		return nil, fmt.Errorf("creating memory dataset: %w", err)
	}
	if err := im.fillDataset(ds); err != nil {
		ds.Close()
		return nil, err
	}
	return ds, nil
}

func (im *Image) fillDataset(ds *godal.Dataset) error {
	if err := ds.SetGeoTransform(im.transform); err != nil {
		return fmt.Errorf("setting geotransform: %w", err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(im.epsg)
	if err != nil {
		return fmt.Errorf("resolving EPSG:%d: %w", im.epsg, err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("setting spatial reference: %w", err)
	}

	size := im.rows * im.cols
	for i, band := range ds.Bands() {
		if err := band.Write(0, 0, im.arr[i*size:(i+1)*size], im.cols, im.rows); err != nil {
			return fmt.Errorf("writing band %d: %w", i+1, err)
		}
	}
	return nil
}

// WarpOptions control Warp behavior.
type WarpOptions struct {
	// Resampling names a GDAL resampling method, near when empty
	Resampling string
	// Resolution forces a target pixel size in target CRS units
	Resolution float64
}

// Warp reprojects the image to the target coordinate reference system
// through a GDAL in-memory round trip. Array, geotransform and EPSG code are
// replaced by the warped result.
func (im *Image) Warp(targetEPSG int, opts WarpOptions) error {
	src, err := im.toMemDataset()
	if err != nil {
		return err
	}
	defer src.Close()

	resampling := opts.Resampling
	if resampling == "" {
		resampling = "near"
	}
	switches := []string{
		"-of", "MEM",
		"-t_srs", fmt.Sprintf("EPSG:%d", targetEPSG),
		"-r", resampling,
	}
	if opts.Resolution > 0 {
		res := strconv.FormatFloat(opts.Resolution, 'f', -1, 64)
		switches = append(switches, "-tr", res, res)
	}

	warped, err := src.Warp("", switches)
	if err != nil {
		return fmt.Errorf("warping to EPSG:%d: %w", targetEPSG, err)
	}
	defer warped.Close()

	result, err := imageFromDataset(warped, im.dimOrder)
	if err != nil {
		return err
	}
	im.arr = result.arr
	im.bands = result.bands
	im.rows = result.rows
	im.cols = result.cols
	im.transform = result.transform
	im.epsg = result.epsg
	return nil
}

// WriteOptions control Write behavior.
type WriteOptions struct {
	// DataType names the output pixel type, one of byte, uint16, int16,
	// uint32, int32, float32, float64 or min for the smallest type that
	// holds the data. Defaults to float64.
	DataType string
	// NoData marks a nodata value on every output band when set
	NoData *float64
	// Compress names a GeoTIFF compression like lzw or deflate
	Compress string
}

// Write stores the image as a GeoTIFF file.
func (im *Image) Write(path string, opts WriteOptions) error {
	gdalInit()

	dtype, err := im.outputDataType(opts.DataType)
	if err != nil {
		return err
	}
	var createOpts []godal.DatasetCreateOption
	if opts.Compress != "" {
		createOpts = append(createOpts, godal.CreationOption("COMPRESS="+opts.Compress))
	}

	ds, err := godal.Create(godal.GTiff, path, im.bands, dtype, im.cols, im.rows, createOpts...)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer ds.Close()

	if err := im.fillDataset(ds); err != nil {
		return err
	}
	if opts.NoData != nil {
		for _, band := range ds.Bands() {
			if err := band.SetNoData(*opts.NoData); err != nil {
				return fmt.Errorf("setting nodata: %w", err)
			}
		}
	}
	return nil
}

func (im *Image) outputDataType(name string) (godal.DataType, error) {
	switch name {
	case "", "float64":
		return godal.Float64, nil
	case "float32":
		return godal.Float32, nil
	case "byte", "uint8":
		return godal.Byte, nil
	case "uint16":
		return godal.UInt16, nil
	case "int16":
		return godal.Int16, nil
	case "uint32":
		return godal.UInt32, nil
	case "int32":
		return godal.Int32, nil
	case "min":
		return im.minimumDataType(), nil
	default:
		return godal.Unknown, fmt.Errorf("unsupported output data type %q", name)
	}
}

// minimumDataType picks the smallest GDAL pixel type that represents every
// value in the array.
func (im *Image) minimumDataType() godal.DataType {
	lo, hi := math.Inf(1), math.Inf(-1)
	integral := true
	for _, value := range im.arr {
		if value < lo {
			lo = value
		}
		if value > hi {
			hi = value
		}
		if integral && value != math.Trunc(value) {
			integral = false
		}
	}
	if !integral {
		if lo >= -math.MaxFloat32 && hi <= math.MaxFloat32 {
			return godal.Float32
		}
		return godal.Float64
	}
	switch {
	case lo >= 0 && hi <= math.MaxUint8:
		return godal.Byte
	case lo >= 0 && hi <= math.MaxUint16:
		return godal.UInt16
	case lo >= math.MinInt16 && hi <= math.MaxInt16:
		return godal.Int16
	case lo >= 0 && hi <= math.MaxUint32:
		return godal.UInt32
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return godal.Int32
	default:
		return godal.Float64
	}
}
