// Copyright 2016, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"os"
)

// Environment variables
const (
	LANDSAT_HOST       = "LANDSAT_HOST"
	SENTINEL_HOST      = "SENTINEL_HOST"
	STAC_API_URL       = "STAC_API_URL"
	SCIHUB_URL         = "SCIHUB_URL"
	SCIHUB_USER        = "SCIHUB_USER"
	SCIHUB_PW          = "SCIHUB_PW"
	EARTHEXPLORER_URL  = "EARTHEXPLORER_URL"
	EARTHEXPLORER_USER = "EARTHEXPLORER_USER"
	EARTHEXPLORER_PW   = "EARTHEXPLORER_PW"
)

const defaultLandsatHost = "https://storage.googleapis.com/gcp-public-data-landsat"
const defaultScihubURL = "https://scihub.copernicus.eu/dhus"
const defaultEarthExplorerURL = "https://earthexplorer.usgs.gov/inventory/json/v/1.4.1"

// EnvGet returns an environment variable or fails with a meaningful error
func EnvGet(key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("no environment variable %s found", key)
	}
	return value, nil
}

// GetLandsatHost returns the base URL of the public Landsat object store
func GetLandsatHost() string {
	landsatHost, ok := os.LookupEnv(LANDSAT_HOST)
	if !ok {
		return defaultLandsatHost
	}
	return landsatHost
}

// GetSentinelHost returns a string for the SENTINEL_HOST environment variable
func GetSentinelHost() string {
	sentinelHost, ok := os.LookupEnv(SENTINEL_HOST)
	if !ok {
		LogAlert(&BasicLogContext{}, "Did not get Sentinel Host URL from the environment. Sentinel band URLs will not be available.")
	}
	return sentinelHost
}

// GetStacAPIURL returns a string for the STAC_API_URL environment variable
func GetStacAPIURL() string {
	stacURL, ok := os.LookupEnv(STAC_API_URL)
	if !ok {
		LogAlert(&BasicLogContext{}, "Did not get STAC API URL from the environment. STAC will not be available.")
	}
	return stacURL
}

// GetScihubURL returns the SciHub endpoint, falling back to the ESA default
func GetScihubURL() string {
	scihubURL, ok := os.LookupEnv(SCIHUB_URL)
	if !ok {
		return defaultScihubURL
	}
	return scihubURL
}

// GetEarthExplorerURL returns the EarthExplorer JSON API endpoint
func GetEarthExplorerURL() string {
	eeURL, ok := os.LookupEnv(EARTHEXPLORER_URL)
	if !ok {
		return defaultEarthExplorerURL
	}
	return eeURL
}
