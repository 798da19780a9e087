package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/services"
	"github.com/ersonp/famgraph/internal/infrastructure/grf"
)

// MergeHandler combines GRF files into one.
type MergeHandler struct {
	mergeService *services.MergeService
}

// NewMergeHandler creates a new merge handler.
func NewMergeHandler(mergeService *services.MergeService) *MergeHandler {
	return &MergeHandler{mergeService: mergeService}
}

// MergeResult contains the result of a merge.
type MergeResult struct {
	Inputs int
	Stats  entities.Stats
}

// Handle reads every path in order and writes the merged graph to out.
func (h *MergeHandler) Handle(ctx context.Context, paths []string, out io.Writer) (*MergeResult, error) {
	graphs := make([]*entities.Graph, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := readFile(path)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return h.merge(graphs, out)
}

// HandleReaders merges already opened GRF streams.
func (h *MergeHandler) HandleReaders(ctx context.Context, inputs []io.Reader, out io.Writer) (*MergeResult, error) {
	graphs := make([]*entities.Graph, 0, len(inputs))
	for i, r := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := grf.Read(r)
		if err != nil {
			return nil, fmt.Errorf("reading input %d: %w", i+1, err)
		}
		graphs = append(graphs, g)
	}
	return h.merge(graphs, out)
}

func (h *MergeHandler) merge(graphs []*entities.Graph, out io.Writer) (*MergeResult, error) {
	merged := h.mergeService.Merge(graphs)
	if err := grf.Write(out, merged); err != nil {
		return nil, fmt.Errorf("writing merged graph: %w", err)
	}
	return &MergeResult{Inputs: len(graphs), Stats: merged.Stats()}, nil
}

func readFile(path string) (*entities.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	g, err := grf.Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return g, nil
}
