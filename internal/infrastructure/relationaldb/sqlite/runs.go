package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/ports"
)

var _ ports.RunLog = (*Repository)(nil)

// SaveRun stores a run, assigning an ID when it has none.
func (r *Repository) SaveRun(ctx context.Context, run *entities.Run) error {
	if run.ID == "" {
		run.ID = generateUUID()
	}
	seeds, err := json.Marshal(run.Seeds)
	if err != nil {
		return fmt.Errorf("marshaling seeds: %w", err)
	}

	query := `
		INSERT INTO runs (id, command, seeds, individuals, families, sources, notes, requests, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			individuals = excluded.individuals,
			families = excluded.families,
			sources = excluded.sources,
			notes = excluded.notes,
			requests = excluded.requests,
			finished_at = excluded.finished_at
	`
	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Command,
		string(seeds),
		run.Individuals,
		run.Families,
		run.Sources,
		run.Notes,
		run.Requests,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or
// less returns every run.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*entities.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, command, seeds, individuals, families, sources, notes, requests, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.Run
	for rows.Next() {
		var run entities.Run
		var seeds string
		if err := rows.Scan(
			&run.ID,
			&run.Command,
			&seeds,
			&run.Individuals,
			&run.Families,
			&run.Sources,
			&run.Notes,
			&run.Requests,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if seeds != "" && seeds != "null" {
			if err := json.Unmarshal([]byte(seeds), &run.Seeds); err != nil {
				return nil, fmt.Errorf("unmarshaling seeds: %w", err)
			}
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
