package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/venicegeo/sat-datahub/model"
)

const (
	// BeginIngestJobMessage starts an ingest job immediately
	BeginIngestJobMessage = "begin"
	// AbortIngestJobMessage stops an ingest job between scenes
	AbortIngestJobMessage = "abort"
)

// Importer manages the state for an ingest job. Mainly useful when
// launching the job on an interval.
type Importer struct {
	metadataDir    string
	dbConnProvider ConnectionProvider
	statusChan     chan chan string
}

// NewImporter initializes a new importer reading harmonized metadata files
// from a directory.
func NewImporter(metadataDir string, dbConnProvider ConnectionProvider) *Importer {
	return &Importer{
		metadataDir:    metadataDir,
		dbConnProvider: dbConnProvider,
		statusChan:     make(chan chan string, 10)}
}

// ImportWhile performs the Ingest() task and waits for a channel.
// Note: this is blocking.
// The function will exit when messageChan is closed and any in-progress jobs
// complete. To close quickly, send AbortIngestJobMessage on messageChan
// before closing it.
func (imp *Importer) ImportWhile(messageChan <-chan string, maxTimeBetweenJobs time.Duration) {
	previousStatus := "\tNone"
	var nextScheduledStartTime time.Time
	var scheduleTimer *time.Timer

	for {
		if scheduleTimer == nil {
			scheduleTimer = time.NewTimer(maxTimeBetweenJobs)
			nextScheduledStartTime = time.Now().Add(maxTimeBetweenJobs)
		}

		select {
		case <-scheduleTimer.C:
			scheduleTimer = nil
			previousStatus = imp.Import(messageChan)
		case msg, ok := <-messageChan:
			if !ok {
				return //The message channel has been closed.
			}
			switch msg {
			case BeginIngestJobMessage:
				scheduleTimer = nil
				previousStatus = imp.Import(messageChan)
			default:
				//ignore this message. We only want ones for begin.
			}
		case respChan := <-imp.statusChan:
			select {
			case respChan <- fmt.Sprintf("%v\nStatus: Sleeping until %v\nPrevious job:\n%v",
				time.Now().Format("Mon Jan _2 15:04:05 2006"),
				nextScheduledStartTime.Format("Mon Jan _2 15:04:05 2006"),
				previousStatus): //good
			default: //ignore
			}
		}
	}
}

// GetStatus is a thread safe way to get information about the import operation.
func (imp *Importer) GetStatus() string {
	responseChan := make(chan string, 1) //Must have a buffer. reportStatus won't wait if it can't send.
	imp.statusChan <- responseChan
	return <-responseChan
}

// Import opens the database connection, runs the ingest and closes the
// connection again.
func (imp *Importer) Import(messageChan <-chan string) (result string) {
	database, err := imp.dbConnProvider()
	if err != nil {
		log.Println("Could not open database connection:", err)
		return "Failed: no database connection"
	}
	defer database.Close()

	return imp.Ingest(database, messageChan)
}

// Ingest reads every harmonized metadata file in the directory and upserts
// the scenes into the index inside a single transaction. Sending
// AbortIngestJobMessage on messageChan rolls the job back between scenes.
func (imp *Importer) Ingest(database *sql.DB, messageChan <-chan string) string {
	started := time.Now()

	scenes, skipped, err := imp.readScenes()
	if err != nil {
		return fmt.Sprintf("Failed: %v", err)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Sprintf("Failed: could not begin transaction: %v", err)
	}

	ingested := 0
	for _, scene := range scenes {
		if aborted(messageChan) {
			tx.Rollback()
			return fmt.Sprintf("Aborted after %v scenes", ingested)
		}
		if err = UpsertScene(tx, scene); err != nil {
			tx.Rollback()
			return fmt.Sprintf("Failed on scene %v: %v", scene.ProductID, err)
		}
		ingested++
	}
	if err = tx.Commit(); err != nil {
		return fmt.Sprintf("Failed: could not commit transaction: %v", err)
	}

	return fmt.Sprintf("Completed at %v\n\t%v scenes ingested, %v files skipped, took %v",
		time.Now().Format("Mon Jan _2 15:04:05 2006"), ingested, skipped, time.Since(started).Round(time.Millisecond))
}

// readScenes loads the metadata directory up front so a malformed file
// fails the job before the transaction opens. Files without a footprint are
// skipped, they cannot be indexed.
func (imp *Importer) readScenes() ([]IndexedScene, int, error) {
	entries, err := os.ReadDir(imp.metadataDir)
	if err != nil {
		return nil, 0, err
	}

	scenes := []IndexedScene{}
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(imp.metadataDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, err
		}
		meta, err := model.MetadataFromBytes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("%s is not a valid metadata file: %v", entry.Name(), err)
		}
		scene, err := SceneFromMetadata(*meta)
		if err != nil {
			log.Printf("Skipping %v: %v", entry.Name(), err)
			skipped++
			continue
		}
		scenes = append(scenes, *scene)
	}
	return scenes, skipped, nil
}

func aborted(messageChan <-chan string) bool {
	select {
	case msg, ok := <-messageChan:
		return !ok || msg == AbortIngestJobMessage
	default:
		return false
	}
}
