package localindex

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/venicegeo/sat-datahub/localindex/db"
)

func getPreviewURLForProductID(tx *sql.Tx, productID string) (*url.URL, error) {
	scene, err := db.GetSceneByID(tx, productID)
	if err != nil {
		return nil, err
	}

	sceneURL, err := url.Parse(scene.SceneURL)
	if err != nil {
		return nil, err
	}
	return sceneURL.ResolveReference(&url.URL{Path: getPreviewFileName(productID)}), nil
}

func getPreviewFileName(productID string) string {
	return fmt.Sprintf("%s_thumb_large.jpg", productID)
}
