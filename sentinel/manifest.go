package sentinel

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"
)

const gmlNamespace = "http://www.opengis.net/gml"
const safeNamespace = "http://www.esa.int/safe/sentinel-1.0"

// Manifest holds the fields read out of a SAFE manifest file. Tested with
// Sentinel-1.
type Manifest struct {
	// Footprint is the scene footprint polygon in lon/lat order
	Footprint *geojson.Polygon
	// OriginCountry is the country of the processing facility
	OriginCountry string
	// IPFVersion is the version of the instrument processing facility
	IPFVersion float64
}

// LoadManifest reads a manifest.safe file
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest reads a SAFE manifest document
func ParseManifest(reader io.Reader) (*Manifest, error) {
	manifest := Manifest{}
	decoder := xml.NewDecoder(reader)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed manifest: %v", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case start.Name.Space == gmlNamespace && start.Name.Local == "coordinates":
			var coordinates string
			if err = decoder.DecodeElement(&coordinates, &start); err != nil {
				return nil, fmt.Errorf("malformed manifest coordinates: %v", err)
			}
			if manifest.Footprint, err = footprintFromCoordinates(coordinates); err != nil {
				return nil, err
			}
		case start.Name.Space == safeNamespace && start.Name.Local == "facility":
			for _, attr := range start.Attr {
				if attr.Name.Local == "country" {
					manifest.OriginCountry = attr.Value
				}
			}
		case start.Name.Space == safeNamespace && start.Name.Local == "software":
			for _, attr := range start.Attr {
				if attr.Name.Local == "version" {
					if manifest.IPFVersion, err = strconv.ParseFloat(attr.Value, 64); err != nil {
						return nil, fmt.Errorf("malformed manifest software version %q", attr.Value)
					}
				}
			}
		}
	}

	if manifest.Footprint == nil {
		return nil, fmt.Errorf("manifest carries no footprint coordinates")
	}
	return &manifest, nil
}

// footprintFromCoordinates converts the gml "lat,lon lat,lon" coordinate
// list into a closed lon/lat polygon ring.
func footprintFromCoordinates(coordinates string) (*geojson.Polygon, error) {
	ring := [][]float64{}
	for _, pair := range strings.Fields(coordinates) {
		lat, lon, found := strings.Cut(pair, ",")
		if !found {
			return nil, fmt.Errorf("malformed coordinate pair %q", pair)
		}
		latValue, latErr := strconv.ParseFloat(lat, 64)
		lonValue, lonErr := strconv.ParseFloat(lon, 64)
		if latErr != nil || lonErr != nil {
			return nil, fmt.Errorf("malformed coordinate pair %q", pair)
		}
		ring = append(ring, []float64{lonValue, latValue})
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("footprint needs at least three vertices, got %d", len(ring))
	}

	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		ring = append(ring, first)
	}
	return geojson.NewPolygon([][][]float64{ring}), nil
}

// one arc degree covers roughly 10m / 8.983152841195215e-5 at the equator
const degreesPerTenMeters = 8.983152841195215e-5

// PixelSpacing reads the range pixel spacing for one polarization out of
// the annotation files of an unzipped SAFE scene directory. It returns the
// spacing in meters and in degrees.
func PixelSpacing(sceneDir string, polarization string) (float64, float64, error) {
	annotationDir := filepath.Join(sceneDir, "annotation")
	entries, err := os.ReadDir(annotationDir)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		parts := strings.Split(entry.Name(), "-")
		if len(parts) < 4 || parts[3] != strings.ToLower(polarization) {
			continue
		}

		meters, err := rangePixelSpacing(filepath.Join(annotationDir, entry.Name()))
		if err != nil {
			return 0, 0, err
		}
		return meters, (meters / 10.0) * degreesPerTenMeters, nil
	}
	return 0, 0, fmt.Errorf("no annotation for polarization %s in %s", polarization, annotationDir)
}

func rangePixelSpacing(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := xml.NewDecoder(file)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("malformed annotation: %v", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "rangePixelSpacing" {
			continue
		}

		var text string
		if err = decoder.DecodeElement(&text, &start); err != nil {
			return 0, fmt.Errorf("malformed annotation: %v", err)
		}
		return strconv.ParseFloat(strings.TrimSpace(text), 64)
	}
	return 0, fmt.Errorf("no rangePixelSpacing in %s", path)
}
