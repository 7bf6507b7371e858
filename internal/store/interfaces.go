package store

import (
	"context"
	"errors"

	"basegraph.app/siemd/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// EventStore defines the contract for event data access.
// Events are append-only; there is no update or delete.
type EventStore interface {
	// InsertBatch inserts events, skipping any whose (source_file, source_offset)
	// is already stored.
	InsertBatch(ctx context.Context, events []model.Event) error
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	// List returns summaries ordered by (ts DESC, id DESC), strictly after
	// cursor when one is given.
	List(ctx context.Context, filter model.EventFilter, cursor *model.Cursor, limit int32) ([]model.EventSummary, error)
	ListEventTypes(ctx context.Context, app *string) ([]string, error)
}

// FileOffsetStore defines the contract for tail checkpoint data access
type FileOffsetStore interface {
	Get(ctx context.Context, path string) (*model.FileOffset, error)
	Upsert(ctx context.Context, offset model.FileOffset) error
	List(ctx context.Context) ([]model.FileOffset, error)
}
