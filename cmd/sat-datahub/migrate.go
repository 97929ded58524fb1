package main

import (
	"log"

	"github.com/pressly/goose"
	cli "gopkg.in/urfave/cli.v1"

	_ "github.com/venicegeo/sat-datahub/migrations"
)

func migrateDatabaseAction(*cli.Context) {
	database, err := getDbConnectionFunc()
	if err != nil {
		log.Fatal("Could not open database connection.")
	}
	defer database.Close()

	goose.Run("up", database, ".")
}
