package mocks

import (
	"context"
	"fmt"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

// RunLog is a mock implementation of ports.RunLog.
type RunLog struct {
	Runs []*entities.Run
	Err  error

	// Call tracking
	SaveRunCallCount int
}

// NewRunLog creates a new mock RunLog.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// SaveRun stores a run, numbering it when it has no ID.
func (m *RunLog) SaveRun(_ context.Context, run *entities.Run) error {
	m.SaveRunCallCount++
	if m.Err != nil {
		return m.Err
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", len(m.Runs)+1)
	}
	m.Runs = append(m.Runs, run)
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (m *RunLog) ListRuns(_ context.Context, limit int) ([]*entities.Run, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*entities.Run
	for i := len(m.Runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.Runs[i])
	}
	return out, nil
}
