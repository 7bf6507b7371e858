package worker

import (
	"context"

	"basegraph.app/siemd/internal/model"
)

// Ingester abstracts the scan pass for testability. service.IngestService
// implements it.
type Ingester interface {
	IngestOnce(ctx context.Context, root string, batchSize, maxBatchesPerFile int) (model.IngestResult, error)
}
