package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "github.com/lib/pq"

	"github.com/venicegeo/sat-datahub/util"
)

const connectionStringEnv = "DATABASE_URL"

// getDbConnection opens a new database connection.
func getDbConnection() (*sql.DB, error) {
	connStr := os.Getenv(connectionStringEnv)
	if connStr == "" {
		return nil, errors.New("no DB connection found in DATABASE_URL")
	}

	// XXX: pq expects SSL to be enabled if not explicitly disabled; we need to explicitly disable it
	dbURI, err := url.Parse(connStr)
	if err != nil {
		return nil, err
	}
	params := dbURI.Query()
	if params.Get("sslmode") == "" {
		params.Set("sslmode", "disable")
	}
	dbURI.RawQuery = params.Encode()

	util.LogInfo(&(util.BasicLogContext{}), fmt.Sprintf("Creating database connection at: `%s`", dbURI.Host))
	db, err := sql.Open("postgres", dbURI.String())
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

var getDbConnectionFunc = getDbConnection
