package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/venicegeo/sat-datahub/hub"
	"github.com/venicegeo/sat-datahub/localindex"
	"github.com/venicegeo/sat-datahub/util"
)

const metadataDirEnv = "METADATA_DIR"

func getPortStr() string {
	if port, ok := os.LookupEnv("PORT"); ok {
		return ":" + port
	}
	return ":8080"
}

func createRouter(ctx util.LogContext) (*mux.Router, error) {
	router := mux.NewRouter()
	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/discover/{source}", hub.NewDiscoverHandler(os.Getenv(metadataDirEnv)))
	router.Handle("/quicklook/{source}/{platform}/{id}", hub.NewQuicklookHandler())

	// the local index routes only come up when a database is configured
	if os.Getenv(connectionStringEnv) == "" {
		util.LogAlert(ctx, "No DATABASE_URL found, not serving local index routes")
		return router, nil
	}

	if discoverHandler, err := localindex.NewDiscoverHandler(getDbConnectionFunc); err == nil {
		router.Handle("/localindex/discover", discoverHandler)
	} else {
		return nil, err
	}
	if metadataHandler, err := localindex.NewMetadataHandler(getDbConnectionFunc); err == nil {
		router.Handle("/localindex/scene/{id}", metadataHandler)
	} else {
		return nil, err
	}
	if previewHandler, err := localindex.NewPreviewImageHandler(getDbConnectionFunc); err == nil {
		router.Handle("/localindex/preview/{id}.jpg", previewHandler)
	} else {
		return nil, err
	}
	return router, nil
}

func serveAction(*cli.Context) {
	logContext := &(util.BasicLogContext{})
	portStr := getPortStr()

	if router, err := createRouter(logContext); err == nil {
		util.LogInfo(logContext, fmt.Sprintf("Listening on %v", portStr))
		launchServerFunc(portStr, router)
	} else {
		util.LogSimpleErr(logContext, "Failed to create router: ", err)
	}
}

var launchServerFunc = launchServer

func launchServer(portStr string, router *mux.Router) {
	server := http.Server{
		Addr:    portStr,
		Handler: router,
	}
	log.Fatal(server.ListenAndServe())
}
