// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/domain/services"
	"github.com/ersonp/famgraph/internal/infrastructure/grf"
)

// FetchHandler downloads a family graph and writes it as GRF.
type FetchHandler struct {
	builder    *services.BuildService
	supplement *services.SupplementService
	fetcher    ports.Fetcher
	runs       ports.RunLog
	logger     *slog.Logger
	now        func() time.Time
}

// NewFetchHandler creates a new fetch handler. runs may be nil.
func NewFetchHandler(fetcher ports.Fetcher, builder *services.BuildService, supplement *services.SupplementService, runs ports.RunLog, logger *slog.Logger) *FetchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchHandler{
		builder:    builder,
		supplement: supplement,
		fetcher:    fetcher,
		runs:       runs,
		logger:     logger,
		now:        time.Now,
	}
}

// FetchOptions controls which parts of the tree are downloaded.
type FetchOptions struct {
	Seeds        []string
	Ancestors    int
	Descendants  int
	Spouses      bool
	Contributors bool
	Ordinances   bool
	Workers      int
}

// FetchResult contains the result of a fetch.
type FetchResult struct {
	Graph              *entities.Graph
	Run                *entities.Run
	SupplementFailed   int
	OrdinancesDisabled bool
}

// Summary returns the one-line report printed after a fetch.
func (r *FetchResult) Summary() string {
	return fmt.Sprintf("Downloaded %d individuals, %d families, %d sources and %d notes in %d seconds with %d HTTP requests.",
		r.Run.Individuals, r.Run.Families, r.Run.Sources, r.Run.Notes,
		int64(math.Round(r.Run.Duration().Seconds())), r.Run.Requests)
}

// Handle runs the structural phases, the supplementary phase and writes
// the graph to out. progressFn, if set, receives one line per phase.
func (h *FetchHandler) Handle(ctx context.Context, opts FetchOptions, out io.Writer, progressFn func(msg string)) (*FetchResult, error) {
	if progressFn == nil {
		progressFn = func(string) {}
	}
	started := h.now()
	startRequests := h.requests()

	seeds := opts.Seeds
	if len(seeds) == 0 {
		id, err := h.builder.CurrentPersonID(ctx)
		if err != nil {
			return nil, err
		}
		seeds = []string{id}
	}

	g := entities.NewGraph()
	progressFn("Downloading starting individuals...")
	if err := h.builder.AddIndividuals(ctx, g, seeds); err != nil {
		return nil, fmt.Errorf("downloading starting individuals: %w", err)
	}

	if opts.Ancestors > 0 {
		progressFn(fmt.Sprintf("Downloading up to %d generations of ancestors...", opts.Ancestors))
		if err := h.builder.Ancestors(ctx, g, seeds, opts.Ancestors); err != nil {
			return nil, fmt.Errorf("downloading ancestors: %w", err)
		}
	}
	if opts.Descendants > 0 {
		progressFn(fmt.Sprintf("Downloading up to %d generations of descendants...", opts.Descendants))
		if err := h.builder.Descendants(ctx, g, opts.Descendants); err != nil {
			return nil, fmt.Errorf("downloading descendants: %w", err)
		}
	}
	if opts.Spouses {
		progressFn("Downloading spouses and marriage information...")
		if err := h.builder.Spouses(ctx, g); err != nil {
			return nil, fmt.Errorf("downloading spouses: %w", err)
		}
	}

	progressFn(supplementMessage(opts))
	sup, err := h.supplement.Run(ctx, g, services.SupplementOptions{
		Contributors: opts.Contributors,
		Ordinances:   opts.Ordinances,
		Workers:      opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading notes: %w", err)
	}

	if err := grf.Write(out, g); err != nil {
		return nil, fmt.Errorf("writing graph: %w", err)
	}

	stats := g.Stats()
	run := &entities.Run{
		Command:     "fetch",
		Seeds:       seeds,
		Individuals: stats.Individuals,
		Families:    stats.Families,
		Sources:     stats.Sources,
		Notes:       stats.Notes,
		Requests:    h.requests() - startRequests,
		StartedAt:   started,
		FinishedAt:  h.now(),
	}
	if h.runs != nil {
		// The graph is already written.
		if err := h.runs.SaveRun(ctx, run); err != nil {
			h.logger.Warn("saving run failed", "error", err)
		}
	}

	return &FetchResult{
		Graph:              g,
		Run:                run,
		SupplementFailed:   sup.Failed,
		OrdinancesDisabled: sup.OrdinancesDisabled,
	}, nil
}

func (h *FetchHandler) requests() int64 {
	if c, ok := h.fetcher.(ports.RequestCounter); ok {
		return c.Requests()
	}
	return 0
}

func supplementMessage(opts FetchOptions) string {
	switch {
	case opts.Ordinances && opts.Contributors:
		return "Downloading notes, ordinances and contributors..."
	case opts.Ordinances:
		return "Downloading notes and ordinances..."
	case opts.Contributors:
		return "Downloading notes and contributors..."
	default:
		return "Downloading notes..."
	}
}
