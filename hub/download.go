package hub

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/venicegeo/sat-datahub/util"
)

type downloadInput struct {
	url      string
	outDir   string
	fileName string // derived from the URL when empty
	auth     string // basic auth header value, optional
	// verify checks the local MD5 against the remote ETag after download
	verify bool
	// progress renders a byte progress bar on stderr
	progress bool
}

// downloadFile streams a remote file to disk. A local file of the expected
// size is left alone so interrupted product downloads can be resumed by
// rerunning them.
func downloadFile(input downloadInput, context util.LogContext) (string, error) {
	fileName := input.fileName
	if fileName == "" {
		fileName = input.url[strings.LastIndex(input.url, "/")+1:]
	}
	filePath := filepath.Join(input.outDir, fileName)

	request, err := http.NewRequest("GET", input.url, nil)
	if err != nil {
		return "", util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", input.url), err)
	}
	if input.auth != "" {
		request.Header.Set("Authorization", input.auth)
	}
	util.LogAudit(context, util.LogAuditInput{Actor: "hub/downloadFile", Action: "GET", Actee: input.url, Message: "Downloading file", Severity: util.INFO})

	response, err := doRequest(request)
	if err != nil {
		return "", util.LogSimpleErr(context, fmt.Sprintf("Failed to download %v.", input.url), err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		message := fmt.Sprintf("Failed to download %v: %v. ", input.url, response.Status)
		util.LogAlert(context, message)
		return "", util.HTTPErr{Status: response.StatusCode, Message: message}
	}

	remoteSize := response.ContentLength
	if info, err := os.Stat(filePath); err == nil && remoteSize > 0 && info.Size() == remoteSize {
		util.LogInfo(context, fmt.Sprintf("Skipping %v, already complete.", fileName))
		return filePath, nil
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", util.LogSimpleErr(context, fmt.Sprintf("Failed to create %v.", filePath), err)
	}
	defer file.Close()

	var writer io.Writer = file
	if input.progress {
		bar := progressbar.DefaultBytes(remoteSize, fileName)
		writer = io.MultiWriter(file, bar)
	}
	if _, err = io.Copy(writer, response.Body); err != nil {
		return "", util.LogSimpleErr(context, fmt.Sprintf("Failed to write %v.", filePath), err)
	}

	if input.verify {
		etag := strings.Trim(response.Header.Get("ETag"), `"`)
		if err := verifyMD5(filePath, etag); err != nil {
			return "", util.LogSimpleErr(context, fmt.Sprintf("Download of %v corrupted.", input.url), err)
		}
	}
	return filePath, nil
}

// verifyMD5 compares the MD5 of a local file against an expected hex digest.
// An empty digest passes, not every endpoint sends one.
func verifyMD5(filePath, expected string) error {
	if expected == "" {
		return nil
	}
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	hash := md5.New()
	if _, err = io.Copy(hash, file); err != nil {
		return err
	}
	actual := hex.EncodeToString(hash.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("MD5 mismatch, got %s and expected %s", actual, expected)
	}
	return nil
}
