package api

import (
	"context"
	"sync"
	"time"

	"github.com/postpulse/analytics-engine/app/database"
	"github.com/postpulse/analytics-engine/app/importer"
)

type ImportService interface {
	Run(ctx context.Context, userID, fileName string, data []byte) (*importer.Summary, error)
	LoadSnapshot(userID string, from, to time.Time) (*importer.Snapshot, error)
}

var _ ImportService = (*importer.Importer)(nil)

type Handler struct {
	imports ImportService
	runs    database.RunRepository

	maxUploadSize int64

	// Guards against a second import starting while one is in flight.
	importMu sync.Mutex
}
