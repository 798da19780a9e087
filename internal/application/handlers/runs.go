package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/ports"
)

// RunsHandler lists recorded fetch runs.
type RunsHandler struct {
	runs ports.RunLog
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runs ports.RunLog) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// Handle returns at most limit runs, newest first. limit <= 0 returns all.
func (h *RunsHandler) Handle(ctx context.Context, limit int) ([]*entities.Run, error) {
	runs, err := h.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
