package hub

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/util"
)

// quicklook noise threshold, JPEG compression smears the nodata border so
// plain zero checks miss it
const quicklookNoiseThreshold = 50

type quicklookInput struct {
	url    string
	auth   string
	srcID  string
	bbox   geojson.BoundingBox
	outDir string
}

// saveQuicklook downloads a scene quicklook, crops the noise border and
// writes the JPEG next to an ESRI world file that roughly geocodes it onto
// the scene footprint.
func saveQuicklook(input quicklookInput, context util.LogContext) error {
	data, err := fetchQuicklook(input, context)
	if err != nil {
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to decode quicklook for %v.", input.srcID), err)
	}
	cropped, err := cropNoiseBorder(img, quicklookNoiseThreshold)
	if err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Quicklook for %v is empty.", input.srcID), err)
	}

	jpgPath := filepath.Join(input.outDir, input.srcID+".jpg")
	file, err := os.Create(jpgPath)
	if err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to create %v.", jpgPath), err)
	}
	defer file.Close()
	if err = jpeg.Encode(file, cropped, nil); err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to encode %v.", jpgPath), err)
	}

	size := cropped.Bounds().Size()
	return writeWorldFile(filepath.Join(input.outDir, input.srcID+".jpgw"), input.bbox, size.X, size.Y, context)
}

func fetchQuicklook(input quicklookInput, context util.LogContext) ([]byte, error) {
	request, err := http.NewRequest("GET", input.url, nil)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", input.url), err)
	}
	if input.auth != "" {
		request.Header.Set("Authorization", input.auth)
	}
	util.LogAudit(context, util.LogAuditInput{Actor: "hub/fetchQuicklook", Action: "GET", Actee: input.url, Message: "Downloading quicklook", Severity: util.INFO})

	response, err := doRequest(request)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to download quicklook %v.", input.url), err)
	}
	defer response.Body.Close()
	if response.StatusCode != 200 {
		message := fmt.Sprintf("Failed to download quicklook %v: %v. ", input.url, response.Status)
		util.LogAlert(context, message)
		return nil, util.HTTPErr{Status: response.StatusCode, Message: message}
	}
	return io.ReadAll(response.Body)
}

// cropNoiseBorder cuts the image down to the smallest rectangle containing
// all pixels with a channel at or above the threshold.
func cropNoiseBorder(img image.Image, threshold uint8) (image.Image, error) {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if uint8(r>>8) >= threshold || uint8(g>>8) >= threshold || uint8(b>>8) >= threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX {
		return nil, fmt.Errorf("no pixels above threshold %d", threshold)
	}

	crop := image.Rect(minX, minY, maxX+1, maxY+1)
	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := 0; y < crop.Dy(); y++ {
		for x := 0; x < crop.Dx(); x++ {
			out.Set(x, y, img.At(crop.Min.X+x, crop.Min.Y+y))
		}
	}
	return out, nil
}

// writeWorldFile writes the six-line ESRI world file shifting the quicklook
// onto the scene footprint.
func writeWorldFile(path string, bbox geojson.BoundingBox, width, height int, context util.LogContext) error {
	if len(bbox) < 4 {
		return fmt.Errorf("scene footprint bounding box is incomplete")
	}
	distX := (bbox[2] - bbox[0]) / float64(width)
	distY := (bbox[3] - bbox[1]) / float64(height)

	lines := []float64{distX, 0, 0, -distY, bbox[0], bbox[3]}
	content := ""
	for _, line := range lines {
		content += strconv.FormatFloat(line, 'f', -1, 64) + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return util.LogSimpleErr(context, fmt.Sprintf("Failed to write %v.", path), err)
	}
	return nil
}
