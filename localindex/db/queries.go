package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
)

// ConnectionProvider is a function that can provide a database connection.
type ConnectionProvider func() (*sql.DB, error)

const sceneColumns = `product_id, product_uuid, platform, acquisition_date, cloud_cover, scene_url, ST_AsGeoJSON(bounds)`

// GetSceneByID looks a single scene up by its product ID
func GetSceneByID(tx *sql.Tx, productID string) (*IndexedScene, error) {
	rows, err := tx.Query(`
		SELECT `+sceneColumns+`
		FROM public.scenes
		WHERE product_id=$1
		LIMIT 1`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	return scanScene(rows)
}

// SearchScenes finds the scenes intersecting a bounding box, filtered by
// platform, acquisition date range and maximum cloud cover percentage. An
// empty platform matches all platforms.
func SearchScenes(tx *sql.Tx, bbox geojson.BoundingBox, platform model.Platform,
	maxCloudCover float64, minAcquiredDate time.Time, maxAcquiredDate time.Time) ([]IndexedScene, error) {
	rows, err := tx.Query(`
		SELECT `+sceneColumns+`
		FROM public.scenes
		WHERE ST_Intersects(bounds, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		AND ($5 = '' OR platform = $5)
		AND cloud_cover <= $6
		AND acquisition_date BETWEEN $7 AND $8
		ORDER BY acquisition_date`,
		bbox[0], bbox[1], bbox[2], bbox[3],
		platform.String(), maxCloudCover, minAcquiredDate, maxAcquiredDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scenes := []IndexedScene{}
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *scene)
	}
	return scenes, rows.Err()
}

// UpsertScene inserts a scene, replacing any previously indexed version of
// the same product.
func UpsertScene(tx *sql.Tx, scene IndexedScene) error {
	bounds, err := json.Marshal(scene.Bounds)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO public.scenes
		(product_id, product_uuid, platform, acquisition_date, cloud_cover, scene_url, bounds)
		VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_GeomFromGeoJSON($7), 4326))
		ON CONFLICT (product_id) DO UPDATE SET
		product_uuid=EXCLUDED.product_uuid,
		platform=EXCLUDED.platform,
		acquisition_date=EXCLUDED.acquisition_date,
		cloud_cover=EXCLUDED.cloud_cover,
		scene_url=EXCLUDED.scene_url,
		bounds=EXCLUDED.bounds`,
		scene.ProductID, scene.ProductUUID, scene.Platform.String(),
		scene.AcquisitionDate, scene.CloudCover, scene.SceneURL, string(bounds),
	)
	return err
}

func scanScene(rows *sql.Rows) (*IndexedScene, error) {
	var boundsBytes []byte
	var platformName string
	scene := IndexedScene{}

	err := rows.Scan(&scene.ProductID, &scene.ProductUUID, &platformName,
		&scene.AcquisitionDate, &scene.CloudCover, &scene.SceneURL, &boundsBytes)
	if err != nil {
		return nil, err
	}

	if scene.Platform, err = model.ParsePlatform(platformName); err != nil {
		return nil, err
	}
	if scene.Bounds, err = geojson.PolygonFromBytes(boundsBytes); err != nil {
		return nil, err
	}
	return &scene, nil
}
