package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

// FileHub queries a local directory of harmonized metadata GeoJSON files.
type FileHub struct {
	dir        string
	substrings []string
	context    *Context
}

// NewFileHub opens a metadata directory as a catalog. Optional substring
// patterns narrow which .json files count as metadata.
func NewFileHub(dir string, substrings []string, context *Context) (*FileHub, error) {
	if dir == "" {
		return nil, fmt.Errorf("a metadata directory has to be set for the file datahub")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to open metadata directory %v.", dir), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if len(substrings) == 0 {
		substrings = []string{""}
	}
	return &FileHub{dir: dir, substrings: substrings, context: context}, nil
}

// QueryMetadata walks the metadata directory and returns all scenes that
// match the query. A file that is not valid metadata fails the whole query,
// silently wrong catalogs are worse than loud ones.
func (h *FileHub) QueryMetadata(options SearchOptions) (*model.MetadataCollection, error) {
	metaFiles, err := h.metadataFiles()
	if err != nil {
		return nil, err
	}

	collection := model.MetadataCollection{}
	for _, metaFile := range metaFiles {
		data, err := os.ReadFile(metaFile)
		if err != nil {
			return nil, util.LogSimpleErr(h.context, fmt.Sprintf("Failed to read metadata file %v.", metaFile), err)
		}
		meta, err := model.MetadataFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s is not a valid metadata file: %v", filepath.Base(metaFile), err)
		}
		if h.matches(*meta, options) {
			collection.Items = append(collection.Items, *meta)
		}
	}
	return &collection, nil
}

func (h *FileHub) metadataFiles() ([]string, error) {
	var metaFiles []string
	err := filepath.Walk(h.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}
		for _, substr := range h.substrings {
			if strings.Contains(info.Name(), substr) {
				metaFiles = append(metaFiles, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, util.LogSimpleErr(h.context, fmt.Sprintf("Failed to walk metadata directory %v.", h.dir), err)
	}
	sort.Slice(metaFiles, func(i, j int) bool {
		return strings.ToLower(metaFiles[i]) < strings.ToLower(metaFiles[j])
	})
	return metaFiles, nil
}

func (h *FileHub) matches(meta model.Metadata, options SearchOptions) bool {
	if meta.Platform != options.Platform {
		return false
	}
	// acquisition date filter is [from, to)
	if meta.AcquisitionDate.Before(options.FromDate) || !meta.AcquisitionDate.Before(options.ToDate) {
		return false
	}
	if !h.intersects(meta, options) {
		return false
	}
	if options.CloudCover != nil && options.Platform != model.Sentinel1 {
		cloudCover := meta.CloudCoverPercentage
		if cloudCover == model.CloudCoverUnknown {
			cloudCover = 0
		}
		// cloud cover filter is [min, max)
		if cloudCover < options.CloudCover.Min || cloudCover >= options.CloudCover.Max {
			return false
		}
	}
	return true
}

func (h *FileHub) intersects(meta model.Metadata, options SearchOptions) bool {
	if meta.Geometry == nil {
		return false
	}
	feature := geojson.NewFeature(meta.Geometry, meta.ID, nil)
	return options.AOI.Intersects(feature.ForceBbox())
}

// DownloadImage is not supported for local metadata directories
func (h *FileHub) DownloadImage(platform model.Platform, productUUID string, targetDir string) error {
	return fmt.Errorf("downloading images is not supported for the file datahub")
}

// DownloadQuicklook is not supported for local metadata directories
func (h *FileHub) DownloadQuicklook(platform model.Platform, productUUID string, targetDir string) error {
	return fmt.Errorf("downloading quicklooks is not supported for the file datahub")
}

// Close implements the Datahub interface
func (h *FileHub) Close() error {
	return nil
}
