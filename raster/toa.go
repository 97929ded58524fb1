package raster

import (
	"fmt"
	"math"

	"github.com/venicegeo/sat-datahub/model"
)

// DNToTOA converts digital numbers to top of atmosphere values in place.
// Landsat-5/7/8 reflectance bands are rescaled with the factors from the MTL
// file and corrected for sun elevation, thermal bands become brightness
// temperature in Kelvin. Sentinel-2 digital numbers divide by 10000. Zero
// stays zero as nodata.
func (im *Image) DNToTOA(platform model.Platform, mtlPath string, wavelengths []string) error {
	switch {
	case platform == model.Sentinel2:
		for i, value := range im.arr {
			im.arr[i] = value / 10000.0
		}
		return nil
	case platform.IsLandsat():
		if mtlPath == "" {
			return fmt.Errorf("an MTL file is required to convert %s digital numbers", platform)
		}
		mtl, err := LoadMTL(mtlPath)
		if err != nil {
			return err
		}
		return im.landsatDNToTOA(platform, mtl, wavelengths)
	default:
		return fmt.Errorf("cannot convert digital numbers for platform %s, supported are Landsat-5, Landsat-7, Landsat-8 and Sentinel-2", platform)
	}
}

func (im *Image) landsatDNToTOA(platform model.Platform, mtl *MTL, wavelengths []string) error {
	bands, err := lookupBands(platform, wavelengths)
	if err != nil {
		return err
	}
	if len(bands) != im.bands {
		return fmt.Errorf("%d wavelengths given for an image with %d bands", len(bands), im.bands)
	}
	sunElevation, err := mtl.Float("IMAGE_ATTRIBUTES", "SUN_ELEVATION")
	if err != nil {
		return err
	}

	for idx, band := range bands {
		pixels, err := im.Band(idx)
		if err != nil {
			return err
		}
		if isThermalBand(platform, band) {
			if err := brightnessTemp(pixels, platform, mtl, band); err != nil {
				return err
			}
			continue
		}
		if err := reflectance(pixels, mtl, band, sunElevation); err != nil {
			return err
		}
	}
	return nil
}

// reflectance rescales one band of digital numbers to top of atmosphere
// reflectance corrected for sun elevation.
func reflectance(pixels []float64, mtl *MTL, band string, sunElevation float64) error {
	mult, err := mtl.Float("RADIOMETRIC_RESCALING", "REFLECTANCE_MULT_BAND_"+band)
	if err != nil {
		return err
	}
	add, err := mtl.Float("RADIOMETRIC_RESCALING", "REFLECTANCE_ADD_BAND_"+band)
	if err != nil {
		return err
	}
	sinElevation := math.Sin(sunElevation * math.Pi / 180.0)
	for i, dn := range pixels {
		if dn == 0 {
			continue
		}
		pixels[i] = (mult*dn + add) / sinElevation
	}
	return nil
}

// brightnessTemp rescales one thermal band of digital numbers to at-sensor
// brightness temperature in Kelvin.
func brightnessTemp(pixels []float64, platform model.Platform, mtl *MTL, band string) error {
	constantsGroup := "THERMAL_CONSTANTS"
	if platform == model.Landsat8 {
		constantsGroup = "TIRS_THERMAL_CONSTANTS"
	}
	k1, err := mtl.Float(constantsGroup, "K1_CONSTANT_BAND_"+band)
	if err != nil {
		return err
	}
	k2, err := mtl.Float(constantsGroup, "K2_CONSTANT_BAND_"+band)
	if err != nil {
		return err
	}
	mult, err := mtl.Float("RADIOMETRIC_RESCALING", "RADIANCE_MULT_BAND_"+band)
	if err != nil {
		return err
	}
	add, err := mtl.Float("RADIOMETRIC_RESCALING", "RADIANCE_ADD_BAND_"+band)
	if err != nil {
		return err
	}
	for i, dn := range pixels {
		if dn == 0 {
			continue
		}
		radiance := mult*dn + add
		pixels[i] = k2 / math.Log(k1/radiance+1)
	}
	return nil
}
