package localindex

import (
	"database/sql"

	"github.com/venicegeo/sat-datahub/localindex/db"
	"github.com/venicegeo/sat-datahub/model"
)

func getMetadata(tx *sql.Tx, productID string) (*model.Metadata, error) {
	scene, err := db.GetSceneByID(tx, productID)
	if err != nil {
		return nil, err
	}
	meta := scene.Metadata()
	return &meta, nil
}
