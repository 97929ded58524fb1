package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/venicegeo/sat-datahub/util"
)

// LandsatProductID is the parsed form of a Landsat Collection 1 product
// identifier like LC08_L1TP_193024_20200509_20200519_01_T1.
type LandsatProductID struct {
	ProductID       string
	Sensor          string
	Correction      string
	Path            int
	Row             int
	AcquisitionDate time.Time
	ProcessingDate  time.Time
	Collection      int
	Tier            string
}

// ParseLandsatProductID extracts the metadata embedded in a Landsat product
// identifier.
func ParseLandsatProductID(productID string) (*LandsatProductID, error) {
	parts := strings.Split(productID, "_")
	if len(parts) != 7 {
		return nil, fmt.Errorf("%s is not a Landsat product identifier", productID)
	}
	if len(parts[2]) != 6 {
		return nil, fmt.Errorf("%s has no valid path/row segment", productID)
	}
	path, err := strconv.Atoi(parts[2][:3])
	if err != nil {
		return nil, fmt.Errorf("%s has no valid path: %v", productID, err)
	}
	row, err := strconv.Atoi(parts[2][3:])
	if err != nil {
		return nil, fmt.Errorf("%s has no valid row: %v", productID, err)
	}
	acquisitionDate, err := time.Parse("20060102", parts[3])
	if err != nil {
		return nil, fmt.Errorf("%s has no valid acquisition date: %v", productID, err)
	}
	processingDate, err := time.Parse("20060102", parts[4])
	if err != nil {
		return nil, fmt.Errorf("%s has no valid processing date: %v", productID, err)
	}
	collection, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%s has no valid collection number: %v", productID, err)
	}
	return &LandsatProductID{
		ProductID:       productID,
		Sensor:          parts[0],
		Correction:      parts[1],
		Path:            path,
		Row:             row,
		AcquisitionDate: acquisitionDate,
		ProcessingDate:  processingDate,
		Collection:      collection,
		Tier:            parts[6],
	}, nil
}

// BucketFolderURL returns the folder of the product on the public Landsat
// object store host.
func (p LandsatProductID) BucketFolderURL(host string) string {
	return fmt.Sprintf("%s/%s/%02d/%03d/%03d/%s/",
		strings.TrimSuffix(host, "/"), p.Sensor, p.Collection, p.Path, p.Row, p.ProductID)
}

// per-sensor file labels available on the public object store
var landsatSensorFiles = map[string][]string{
	"LT04": {"B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF", "B6.TIF", "B7.TIF", "BQA.TIF", "ANG.txt", "MTL.txt"},
	"LT05": {"B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF", "B6.TIF", "B7.TIF", "BQA.TIF", "ANG.txt", "MTL.txt"},
	"LE07": {"B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF", "B6_VCID_1.TIF", "B6_VCID_2.TIF", "B7.TIF", "B8.TIF", "BQA.TIF", "ANG.txt", "MTL.txt"},
	"LC08": {"B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF", "B6.TIF", "B7.TIF", "B8.TIF", "B9.TIF", "B10.TIF", "B11.TIF", "BQA.TIF", "ANG.txt", "MTL.txt"},
}

// AvailableFiles lists the files of the product on the public object store
func (p LandsatProductID) AvailableFiles() ([]string, error) {
	labels, ok := landsatSensorFiles[p.Sensor]
	if !ok {
		return nil, fmt.Errorf("no file listing for Landsat sensor %s", p.Sensor)
	}
	files := make([]string, len(labels))
	for i, label := range labels {
		files[i] = p.ProductID + "_" + label
	}
	return files, nil
}

const landsatDownloadWorkers = 4

// downloadLandsatProduct fetches every file of a Landsat product from the
// public object store into targetDir, packs the result into a zip archive
// named after the product and removes the download directory.
func downloadLandsatProduct(productID, host, targetDir string, context util.LogContext) error {
	product, err := ParseLandsatProductID(productID)
	if err != nil {
		return err
	}
	files, err := product.AvailableFiles()
	if err != nil {
		return err
	}

	productDir := filepath.Join(targetDir, productID)
	if err = os.MkdirAll(productDir, 0755); err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to create %v.", productDir), err)
	}

	baseURL := product.BucketFolderURL(host)
	group := errgroup.Group{}
	group.SetLimit(landsatDownloadWorkers)
	for _, fileName := range files {
		fileURL := baseURL + fileName
		group.Go(func() error {
			_, err := downloadFile(downloadInput{url: fileURL, outDir: productDir, verify: true, progress: true}, context)
			return err
		})
	}
	if err = group.Wait(); err != nil {
		return err
	}

	if _, err = util.Pack(filepath.Join(targetDir, productID), productDir); err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to pack %v.", productDir), err)
	}
	return os.RemoveAll(productDir)
}
