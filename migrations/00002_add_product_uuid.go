package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00002, Down00002)
}

// Up00002 adds the catalog UUID so downloads can be started from an
// indexed scene without another catalog query.
func Up00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
		ALTER TABLE public.scenes
		ADD COLUMN product_uuid text NOT NULL DEFAULT '';
		`)
	return err
}

// Down00002 undoes the db changes.
func Down00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
		ALTER TABLE public.scenes
		DROP COLUMN IF EXISTS product_uuid;
		`)
	return err
}
