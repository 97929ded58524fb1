package model

import "fmt"

// Platform identifies a satellite image platform. The values double as
// the platform names used in harmonized metadata documents; for the
// Landsat platforms they are the EarthExplorer collection-1 dataset
// names, matching what the hubs expect.
type Platform string

// Recognized platforms
const (
	Sentinel1 Platform = "Sentinel-1"
	Sentinel2 Platform = "Sentinel-2"
	Sentinel3 Platform = "Sentinel-3"
	Landsat5  Platform = "LANDSAT_TM_C1"
	Landsat7  Platform = "LANDSAT_ETM_C1"
	Landsat8  Platform = "LANDSAT_8_C1"
)

var allPlatforms = []Platform{Sentinel1, Sentinel2, Sentinel3, Landsat5, Landsat7, Landsat8}

// ParsePlatform converts a platform name from a metadata document into
// a Platform, erroring on unrecognized names
func ParsePlatform(name string) (Platform, error) {
	for _, platform := range allPlatforms {
		if string(platform) == name {
			return platform, nil
		}
	}
	return "", fmt.Errorf("unrecognized platform name: `%s`", name)
}

// String implements the Stringer interface
func (p Platform) String() string {
	return string(p)
}

// IsLandsat returns true for the Landsat platforms
func (p Platform) IsLandsat() bool {
	return p == Landsat5 || p == Landsat7 || p == Landsat8
}

// IsSentinel returns true for the Sentinel platforms
func (p Platform) IsSentinel() bool {
	return p == Sentinel1 || p == Sentinel2 || p == Sentinel3
}
