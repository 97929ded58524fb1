package raster

import (
	"fmt"
	"strings"

	"github.com/venicegeo/sat-datahub/model"
)

// wavelengthBands maps spectral wavelength names to the Landsat band number
// suffixes used in MTL metadata keys.
var wavelengthBands = map[model.Platform]map[string]string{
	model.Landsat5: {
		"blue":  "1",
		"green": "2",
		"red":   "3",
		"nir":   "4",
		"swir1": "5",
		"tirs":  "6",
		"swir2": "7",
	},
	model.Landsat7: {
		"blue":  "1",
		"green": "2",
		"red":   "3",
		"nir":   "4",
		"swir1": "5",
		"tirs1": "6_VCID_1",
		"tirs2": "6_VCID_2",
		"swir2": "7",
		"pan":   "8",
	},
	model.Landsat8: {
		"aerosol": "1",
		"blue":    "2",
		"green":   "3",
		"red":     "4",
		"nir":     "5",
		"swir1":   "6",
		"swir2":   "7",
		"pan":     "8",
		"cirrus":  "9",
		"tirs1":   "10",
		"tirs2":   "11",
	},
}

// lookupBands resolves wavelength names like "Blue" or "TIRS1" to the band
// number suffixes of the given Landsat platform, in input order.
func lookupBands(platform model.Platform, wavelengths []string) ([]string, error) {
	table, ok := wavelengthBands[platform]
	if !ok {
		return nil, fmt.Errorf("no band table for platform %s", platform)
	}
	bands := make([]string, 0, len(wavelengths))
	for _, wavelength := range wavelengths {
		band, ok := table[strings.ToLower(wavelength)]
		if !ok {
			return nil, fmt.Errorf("platform %s has no %q band", platform, wavelength)
		}
		bands = append(bands, band)
	}
	return bands, nil
}

// isThermalBand reports whether a band number suffix names a thermal band of
// the platform, band 10/11 on Landsat-8 and band 6 variants otherwise.
func isThermalBand(platform model.Platform, band string) bool {
	if platform == model.Landsat8 {
		return band == "10" || band == "11"
	}
	return strings.HasPrefix(band, "6")
}
