package localindex

import (
	"database/sql"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/localindex/db"
	"github.com/venicegeo/sat-datahub/model"
)

func discoverScenes(tx *sql.Tx, bbox geojson.BoundingBox, platform model.Platform,
	maxCloudCover float64, minAcquiredDate time.Time, maxAcquiredDate time.Time) (*model.MetadataCollection, error) {
	scenes, err := db.SearchScenes(tx, bbox, platform, maxCloudCover, minAcquiredDate, maxAcquiredDate)
	if err != nil {
		return nil, err
	}

	collection := model.MetadataCollection{Items: make([]model.Metadata, len(scenes))}
	for i, scene := range scenes {
		collection.Items[i] = scene.Metadata()
	}
	return &collection, nil
}
