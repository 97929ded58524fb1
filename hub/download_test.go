package hub

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadFile(t *testing.T) {
	content := []byte("some file content")
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Length", fmt.Sprint(len(content)))
		writer.Write(content)
	}))
	defer server.Close()

	outDir := t.TempDir()
	filePath, err := downloadFile(downloadInput{url: server.URL + "/files/scene_B1.TIF", outDir: outDir}, &Context{})
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(outDir, "scene_B1.TIF"), filePath, "file name derived from the URL")

	written, err := os.ReadFile(filePath)
	assert.Nil(t, err)
	assert.Equal(t, content, written)
}

func TestDownloadFile_SkipsCompleteFile(t *testing.T) {
	content := []byte("some file content")
	served := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		served++
		writer.Header().Set("Content-Length", fmt.Sprint(len(content)))
		writer.Write(content)
	}))
	defer server.Close()

	outDir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(outDir, "scene.zip"), content, 0644))

	filePath, err := downloadFile(downloadInput{url: server.URL, outDir: outDir, fileName: "scene.zip"}, &Context{})
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(outDir, "scene.zip"), filePath)
	assert.Equal(t, 1, served, "the request is made but the body is not rewritten")

	info, err := os.Stat(filePath)
	assert.Nil(t, err)
	assert.Equal(t, int64(len(content)), info.Size())
}

func TestDownloadFile_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "no such file", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := downloadFile(downloadInput{url: server.URL, outDir: t.TempDir(), fileName: "scene.zip"}, &Context{})
	assert.NotNil(t, err)
}

func TestVerifyMD5(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "scene.zip")
	assert.Nil(t, os.WriteFile(filePath, []byte("some file content"), 0644))

	// MD5 of "some file content"
	assert.Nil(t, verifyMD5(filePath, "27c3a009a3cbba674d0b3e836f2d4685"))
	assert.Nil(t, verifyMD5(filePath, "27C3A009A3CBBA674D0B3E836F2D4685"), "digest comparison is case insensitive")
	assert.Nil(t, verifyMD5(filePath, ""), "an empty digest passes")
	assert.NotNil(t, verifyMD5(filePath, "00000000000000000000000000000000"))
}
