package ports

import (
	"context"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

// RunLog records completed fetch runs.
type RunLog interface {
	// SaveRun stores a run, assigning an ID when it has none.
	SaveRun(ctx context.Context, run *entities.Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*entities.Run, error)
}
