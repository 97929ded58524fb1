package sentinel

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/venicegeo/sat-datahub/util"
)

var sceneIdentPattern = regexp.MustCompile(`^S[1-3]._+`)

// Scene is a Sentinel scene directory found on disk. Scenes extracted out
// of a zip archive live in a temporary directory until Close is called.
type Scene struct {
	Path    string
	Ident   string
	tempDir string
}

// Close removes the temporary directory of an extracted scene. Scenes that
// were already directories are left alone.
func (s Scene) Close() error {
	if s.tempDir == "" {
		return nil
	}
	return os.RemoveAll(s.tempDir)
}

// ScenesFromDir scans a directory for Sentinel scenes, extracting zipped
// scenes as needed. Tested with Sentinel-1, -2 and -3.
func ScenesFromDir(dir string) ([]Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	scenes := []Scene{}
	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		ident := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !sceneIdentPattern.MatchString(ident) {
			continue
		}

		if strings.HasSuffix(entry.Name(), ".zip") {
			extracted, err := scenesFromZip(fullPath)
			if err != nil {
				closeAll(scenes)
				return nil, err
			}
			scenes = append(scenes, extracted...)
			continue
		}
		if entry.IsDir() {
			scenes = append(scenes, Scene{Path: fullPath, Ident: ident})
		}
	}
	return scenes, nil
}

// scenesFromZip extracts a zipped scene into a temporary directory and scans
// that. The temporary directory is tied to the lifetime of the returned
// scenes.
func scenesFromZip(zipPath string) ([]Scene, error) {
	tempDir, err := os.MkdirTemp("", "sentinel-scene-")
	if err != nil {
		return nil, err
	}
	if err = util.Unpack(zipPath, tempDir); err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}

	scenes, err := ScenesFromDir(tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	if len(scenes) == 0 {
		os.RemoveAll(tempDir)
		return nil, nil
	}

	// the first scene owns the temporary directory
	scenes[0].tempDir = tempDir
	return scenes, nil
}

func closeAll(scenes []Scene) {
	for _, scene := range scenes {
		scene.Close()
	}
}
