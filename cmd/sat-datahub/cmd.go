package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"
)

const version = "1.0.0"

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the sat-datahub webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the sat-datahub CLI",
		Action:  versionAction,
	},
	cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Run a single scene index ingest job and exit",
		Action:  ingestAction,
	},
	cli.Command{
		Name:   "ingest_schedule",
		Usage:  "Run scene index ingest jobs on a schedule, with an HTTP status endpoint",
		Action: ingestScheduleAction,
	},
	cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Update database schema",
		Action:  migrateDatabaseAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "sat-datahub"
	app.Usage = "Launch a sat-datahub process"
	app.Commands = commands
	return
}

func versionAction(*cli.Context) {
	fmt.Println(version)
}
