// Package sentinel holds utilities for working with Sentinel scenes on
// disk: product name intelligence, SAFE manifest parsing and scene
// directory scanning.
package sentinel

import (
	"fmt"
	"strings"
)

// https://sentinel.esa.int/web/sentinel/user-guides/sentinel-1-sar/naming-conventions
var polarizations = map[string][]string{
	"SSV": {"VV"},
	"SSH": {"HH"},
	"SDV": {"VV", "VH"},
	"SDH": {"HH", "HV"},
}

// Polarization reads the polarization out of a Sentinel-1 product name,
// returning the primary polarization for dual-polarized products.
func Polarization(filename string) (string, error) {
	all, err := Polarizations(filename)
	if err != nil {
		return "", err
	}
	return all[0], nil
}

// Polarizations reads the polarization out of a Sentinel-1 product name,
// returning both polarizations for dual-polarized products.
func Polarizations(filename string) ([]string, error) {
	if len(filename) < 16 {
		return nil, fmt.Errorf("%s is too short for a Sentinel-1 product name", filename)
	}
	polarization, ok := polarizations[filename[13:16]]
	if !ok {
		return nil, fmt.Errorf("%s carries no recognized polarization code", filename)
	}
	return polarization, nil
}

// StartTimestamp reads the acquisition start timestamp out of a Sentinel
// product name. Works for S1, S3 and S2 names generated after the 6th of
// December, 2016.
func StartTimestamp(filename string) (string, error) {
	return timestamp(filename, true)
}

// StopTimestamp reads the acquisition stop timestamp out of a Sentinel
// product name.
func StopTimestamp(filename string) (string, error) {
	return timestamp(filename, false)
}

func timestamp(filename string, start bool) (string, error) {
	switch {
	case strings.HasPrefix(filename, "S2"):
		parts := strings.Split(filename, "_")
		if len(parts) < 3 {
			return "", fmt.Errorf("%s is not a recognized Sentinel-2 product name", filename)
		}
		return parts[2], nil
	case strings.HasPrefix(filename, "S1"):
		parts := strings.Split(filename, "_")
		if len(parts) < 6 {
			return "", fmt.Errorf("%s is not a recognized Sentinel-1 product name", filename)
		}
		if start {
			return parts[4], nil
		}
		return parts[5], nil
	case strings.HasPrefix(filename, "S3"):
		if len(filename) < 47 {
			return "", fmt.Errorf("%s is not a recognized Sentinel-3 product name", filename)
		}
		if start {
			return filename[16:31], nil
		}
		return filename[32:47], nil
	}
	return "", fmt.Errorf("%s is not a recognized Sentinel product name", filename)
}
