// Package jobs records a history of atlas conversions.
//
// Every pipeline run that completes produces a [Job] describing its input,
// the packed atlas size and the formats it rendered. Stores persist jobs
// for `psdatlas jobs` and the HTTP API:
//   - [FileStore]: one JSON file per job, for the CLI
//   - [MongoStore]: a MongoDB collection, for servers
//   - [NullStore]: discards everything
//
// # Usage
//
//	store, err := jobs.NewFileStore("")  // Uses ~/.local/share/psdatlas/jobs/
//	if err != nil {
//	    return err
//	}
//	job := jobs.New("hero/layers.toml")
//	job.Regions = len(layout.Regions)
//	store.Record(ctx, job)
//
//	recent, err := store.List(ctx, 10)
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 20

// Job is one completed conversion.
type Job struct {
	ID               string        `json:"id" bson:"_id"`
	Input            string        `json:"input" bson:"input"`
	SourceHash       string        `json:"source_hash,omitempty" bson:"source_hash,omitempty"`
	Regions          int           `json:"regions" bson:"regions"`
	AtlasWidth       int           `json:"atlas_width" bson:"atlas_width"`
	AtlasHeight      int           `json:"atlas_height" bson:"atlas_height"`
	Padding          int           `json:"padding" bson:"padding"`
	CoordinateSystem string        `json:"coordinate_system" bson:"coordinate_system"`
	Formats          []string      `json:"formats" bson:"formats"`
	Cached           bool          `json:"cached,omitempty" bson:"cached,omitempty"`
	Duration         time.Duration `json:"duration_ns" bson:"duration_ns"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
}

// New creates a job with a fresh random ID, timestamped now.
func New(input string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for job history backends.
type Store interface {
	// Record stores a job. Recording an existing ID replaces it.
	Record(ctx context.Context, job *Job) error

	// Get returns the job with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Job, error)

	// List returns up to limit jobs, newest first.
	List(ctx context.Context, limit int) ([]*Job, error)

	// Delete removes a job. Deleting a missing job is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id is a UUID, as assigned by New.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid job id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return apperr.New(apperr.ErrCodeNotFound, "job %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
