package model

// FileFormat is an enum type for recognized image file formats
type FileFormat string

// GeoTIFF corresponds to .TIF files with geospatial info
const GeoTIFF FileFormat = "GeoTIFF"

// JPEG2000 corresponds to .JP2 files
const JPEG2000 FileFormat = "JPEG2000"

// SAFE corresponds to Sentinel SAFE archives
const SAFE FileFormat = "SAFE"

// CloudCoverUnknown marks metadata whose source reported no cloud cover
const CloudCoverUnknown = -1.0
