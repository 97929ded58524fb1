package sentinel

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenesFromDir(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, os.Mkdir(filepath.Join(dir, "S1M_hello_from_inside"), 0755))
	assert.Nil(t, os.Mkdir(filepath.Join(dir, "not_a_scene"), 0755))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "S1M_not_a_directory.txt"), []byte("x"), 0644))

	scenes, err := ScenesFromDir(dir)
	assert.Nil(t, err)
	defer closeAll(scenes)

	assert.Len(t, scenes, 1)
	assert.Equal(t, "S1M_hello_from_inside", scenes[0].Ident)
	assert.Equal(t, filepath.Join(dir, "S1M_hello_from_inside"), scenes[0].Path)
	assert.Nil(t, scenes[0].Close(), "closing an unzipped scene is a no-op")
}

func TestScenesFromDir_Zipped(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "S2A_MSIL1C_20200509T102031.zip")
	writeSceneZip(t, zipPath, "S2A_MSIL1C_20200509T102031.SAFE")

	scenes, err := ScenesFromDir(dir)
	assert.Nil(t, err)

	assert.Len(t, scenes, 1)
	scene := scenes[0]
	assert.Equal(t, "S2A_MSIL1C_20200509T102031.SAFE", filepath.Base(scene.Path))
	_, err = os.Stat(filepath.Join(scene.Path, "manifest.safe"))
	assert.Nil(t, err)

	assert.Nil(t, scene.Close())
	_, err = os.Stat(scene.Path)
	assert.True(t, os.IsNotExist(err), "closing an extracted scene removes the temporary directory")
}

func TestScenesFromDir_Missing(t *testing.T) {
	_, err := ScenesFromDir(filepath.Join(t.TempDir(), "missing"))
	assert.NotNil(t, err)
}

func writeSceneZip(t *testing.T, zipPath string, sceneDirName string) {
	t.Helper()
	file, err := os.Create(zipPath)
	assert.Nil(t, err)
	defer file.Close()

	writer := zip.NewWriter(file)
	manifest, err := writer.Create(sceneDirName + "/manifest.safe")
	assert.Nil(t, err)
	_, err = manifest.Write([]byte(sampleManifest))
	assert.Nil(t, err)
	assert.Nil(t, writer.Close())
}
