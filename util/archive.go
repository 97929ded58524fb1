package util

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Pack creates a zip archive at baseName+".zip" from the contents of
// rootDir and returns the archive path.
func Pack(baseName, rootDir string) (string, error) {
	archivePath := baseName + ".zip"
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer archiveFile.Close()

	writer := zip.NewWriter(archiveFile)
	defer writer.Close()

	err = filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		entry, err := writer.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}
		source, err := os.Open(path)
		if err != nil {
			return err
		}
		defer source.Close()
		_, err = io.Copy(entry, source)
		return err
	})
	if err != nil {
		return "", err
	}

	return archivePath, nil
}

// Unpack extracts a zip archive into extractDir.
func Unpack(archivePath, extractDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		targetPath := filepath.Join(extractDir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(targetPath, filepath.Clean(extractDir)+string(os.PathSeparator)) {
			continue // entry escapes the extraction dir
		}
		if entry.FileInfo().IsDir() {
			if err = os.MkdirAll(targetPath, 0755); err != nil {
				return err
			}
			continue
		}
		if err = os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
			return err
		}
		source, err := entry.Open()
		if err != nil {
			return err
		}
		target, err := os.Create(targetPath)
		if err != nil {
			source.Close()
			return err
		}
		if _, err = io.Copy(target, source); err != nil {
			source.Close()
			target.Close()
			return err
		}
		source.Close()
		target.Close()
	}

	return nil
}
