package sentinel

import (
	"fmt"

	"github.com/venicegeo/geojson-go/geojson"
)

const latitudeBands = "CDEFGHJKLMNPQRSTUVWX"

// ProjString returns the proj4 string of the UTM zone the footprint
// centroid is located in. The footprint itself might cover multiple zones.
func ProjString(footprint *geojson.Polygon) (string, error) {
	if footprint == nil || len(footprint.Coordinates) == 0 {
		return "", fmt.Errorf("footprint has no coordinates")
	}
	lon, lat := ringCentroid(footprint.Coordinates[0])
	zone, letter, err := utmZone(lat, lon)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("+proj=utm +zone=%d%s, +ellps=WGS84 +datum=WGS84 +units=m +no_defs", zone, letter), nil
}

// ringCentroid computes the area centroid of a closed polygon ring
func ringCentroid(ring [][]float64) (lon float64, lat float64) {
	var area, cx, cy float64
	for i := 0; i < len(ring)-1; i++ {
		cross := ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
		area += cross
		cx += (ring[i][0] + ring[i+1][0]) * cross
		cy += (ring[i][1] + ring[i+1][1]) * cross
	}
	if area == 0 {
		// degenerate ring, fall back to the vertex mean
		for _, vertex := range ring[:len(ring)-1] {
			cx += vertex[0]
			cy += vertex[1]
		}
		count := float64(len(ring) - 1)
		return cx / count, cy / count
	}
	area /= 2
	return cx / (6 * area), cy / (6 * area)
}

// utmZone resolves latitude and longitude into a UTM zone number and
// latitude band letter, including the Norway and Svalbard exceptions.
func utmZone(lat, lon float64) (int, string, error) {
	if lat < -80 || lat > 84 {
		return 0, "", fmt.Errorf("latitude %v is outside the UTM grid", lat)
	}
	if lon < -180 || lon > 180 {
		return 0, "", fmt.Errorf("longitude %v is outside the UTM grid", lon)
	}

	zone := int((lon+180)/6) + 1
	if lon == 180 {
		zone = 60
	}

	if 56 <= lat && lat < 64 && 3 <= lon && lon < 12 {
		zone = 32
	}
	if 72 <= lat && lat <= 84 && lon >= 0 {
		switch {
		case lon < 9:
			zone = 31
		case lon < 21:
			zone = 33
		case lon < 33:
			zone = 35
		case lon < 42:
			zone = 37
		}
	}

	band := int(lat+80) / 8
	if band > len(latitudeBands)-1 {
		band = len(latitudeBands) - 1
	}
	return zone, string(latitudeBands[band]), nil
}
