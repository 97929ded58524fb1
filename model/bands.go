package model

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/venicegeo/geojson-go/geojson"
)

// LandsatGCSBands is a mixin containing the band file URLs of a Landsat
// product hosted on the public Landsat object store
type LandsatGCSBands struct {
	Coastal      url.URL
	Blue         url.URL
	Green        url.URL
	Red          url.URL
	NIR          url.URL
	SWIR1        url.URL
	SWIR2        url.URL
	Panchromatic url.URL
	Cirrus       url.URL
	TIRS1        url.URL
	TIRS2        url.URL
}

type landsatSuffixDestination struct {
	BandSuffix  string
	Destination *url.URL
}

// NewLandsatGCSBands creates a new LandsatGCSBands by inferring the band
// file names from the product id and its bucket folder URL
func NewLandsatGCSBands(bucketFolderURL string, productID string) (*LandsatGCSBands, error) {
	baseURL, err := url.Parse(bucketFolderURL)
	if baseURL == nil || baseURL.String() == "" {
		err = errors.New("no base Landsat bucket folder could be parsed")
	}
	if err != nil {
		return nil, err
	}

	bands := LandsatGCSBands{}

	suffixes := []landsatSuffixDestination{
		{"B1", &bands.Coastal},
		{"B2", &bands.Blue},
		{"B3", &bands.Green},
		{"B4", &bands.Red},
		{"B5", &bands.NIR},
		{"B6", &bands.SWIR1},
		{"B7", &bands.SWIR2},
		{"B8", &bands.Panchromatic},
		{"B9", &bands.Cirrus},
		{"B10", &bands.TIRS1},
		{"B11", &bands.TIRS2},
	}

	for _, dest := range suffixes {
		filename := fmt.Sprintf("%s_%s.TIF", productID, dest.BandSuffix)
		fileURL, _ := url.Parse("./" + filename)
		*dest.Destination = *baseURL.ResolveReference(fileURL)
	}

	return &bands, nil
}

// Apply implements the GeoJSONFeatureMixin interface
func (lb LandsatGCSBands) Apply(feature *geojson.Feature) error {
	feature.Properties["bands"] = map[string]string{
		"coastal":      lb.Coastal.String(),
		"blue":         lb.Blue.String(),
		"green":        lb.Green.String(),
		"red":          lb.Red.String(),
		"nir":          lb.NIR.String(),
		"swir1":        lb.SWIR1.String(),
		"swir2":        lb.SWIR2.String(),
		"panchromatic": lb.Panchromatic.String(),
		"cirrus":       lb.Cirrus.String(),
		"tirs1":        lb.TIRS1.String(),
		"tirs2":        lb.TIRS2.String(),
	}
	return nil
}

var sentinelBandsFilenames = map[string]string{
	"coastal": "B01.jp2",
	"blue":    "B02.jp2",
	"green":   "B03.jp2",
	"red":     "B04.jp2",
	"rededge": "B05.jp2",
	"nir":     "B08.jp2",
	"swir1":   "B11.jp2",
	"swir2":   "B12.jp2",
	"cirrus":  "B10.jp2",
}

// SentinelBands is a mixin containing the jp2 band URLs of a Sentinel-2
// tile hosted on a public object store
type SentinelBands struct {
	TileFolderURL url.URL
}

// Apply implements the GeoJSONFeatureMixin interface
func (sb SentinelBands) Apply(feature *geojson.Feature) error {
	bands := make(map[string]string)
	for band, filename := range sentinelBandsFilenames {
		fileURL, _ := url.Parse("./" + filename)
		bands[band] = sb.TileFolderURL.ResolveReference(fileURL).String()
	}
	feature.Properties["bands"] = bands
	return nil
}
