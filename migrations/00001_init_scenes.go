package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

// Up00001 creates the scenes table and its indexes
func Up00001(tx *sql.Tx) error {
	err := addScenesTable(tx)
	if err == nil {
		err = addIndexes(tx)
	}
	return err
}

// Down00001 undoes the db changes.
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS public.scenes;`)
	return err
}

func addScenesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE EXTENSION IF NOT EXISTS postgis;

		CREATE TABLE public.scenes
		(
			product_id text NOT NULL,
			platform text NOT NULL,
			acquisition_date timestamp with time zone NOT NULL,
			cloud_cover double precision NOT NULL DEFAULT -1,
			scene_url text,
			bounds geometry(Polygon,4326),
			CONSTRAINT scenes_primary_product_id PRIMARY KEY (product_id)
		);
		`)
	return err
}

func addIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE INDEX idx_scenes_bounds
		ON public.scenes USING gist
		(bounds);

		CREATE INDEX idx_scenes_platform_date
		ON public.scenes (platform, acquisition_date);
		`)
	return err
}
