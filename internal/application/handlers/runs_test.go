package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/mocks"
)

func TestRunsHandler_Handle(t *testing.T) {
	log := mocks.NewRunLog()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, log.SaveRun(ctx, &entities.Run{Command: "fetch"}))
	}
	h := NewRunsHandler(log)

	runs, err := h.Handle(ctx, 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
}

func TestRunsHandler_Error(t *testing.T) {
	log := mocks.NewRunLog()
	log.Err = errors.New("no such table: runs")

	_, err := NewRunsHandler(log).Handle(context.Background(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing runs")
	assert.ErrorIs(t, err, log.Err)
}
