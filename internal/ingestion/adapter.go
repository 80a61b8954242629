package ingestion

import (
	"context"
	"fmt"

	"github.com/trendradar/trendradar/internal/models"
)

// RawRecord is the normalized output contract every source adapter produces.
// Wire formats and pagination stay inside the adapter; the merger only ever
// sees this shape.
type RawRecord struct {
	Name        string
	Description string
	Website     string
	RepoURL     string
	ExternalID  string
	Tags        []string
	Metrics     models.Metrics
}

// SourceAdapter is one external platform client. Fetch returns the current
// snapshot of records for the platform; it must respect ctx cancellation.
type SourceAdapter interface {
	Name() string
	Source() models.DataSource
	Fetch(ctx context.Context) ([]RawRecord, error)
}

// AdapterError wraps a source fetch failure with the adapter that produced it.
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %s: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure with the operation and the identity
// of the record involved.
type PersistenceError struct {
	Op       string
	Identity string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s (%s): %v", e.Op, e.Identity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
