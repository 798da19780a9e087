package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/domain/records"
	"github.com/ersonp/famgraph/internal/infrastructure/worker"
)

// SupplementOptions selects the optional documents to load.
type SupplementOptions struct {
	Contributors bool
	Ordinances   bool
	Workers      int
}

// SupplementResult summarizes a supplementary phase.
type SupplementResult struct {
	Tasks              int
	Failed             int
	OrdinancesDisabled bool
}

// SupplementService loads notes, contributors and ordinances for every
// entity of a finished graph.
type SupplementService struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
}

// NewSupplementService creates a new SupplementService.
func NewSupplementService(fetcher ports.Fetcher, logger *slog.Logger) *SupplementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SupplementService{fetcher: fetcher, logger: logger}
}

// applyFunc mutates the graph with a task's fetched data.
type applyFunc func(g *entities.Graph)

// task is one (entity, document kind) fetch.
type task struct {
	seq   int
	name  string
	fetch func(ctx context.Context) (applyFunc, error)
}

// taskResult implements worker.Result.
type taskResult struct {
	seq   int
	name  string
	apply applyFunc
	err   error
}

func (r *taskResult) GetError() error { return r.err }

func (t *task) Execute(ctx context.Context) worker.Result {
	apply, err := t.fetch(ctx)
	return &taskResult{seq: t.seq, name: t.name, apply: apply, err: err}
}

// Run fetches every supplementary document concurrently and applies the
// results to g in task order after all of them have finished. A failed
// task only loses its own data. A restricted ordinance access check disables
// ordinance tasks for the run.
func (s *SupplementService) Run(ctx context.Context, g *entities.Graph, opts SupplementOptions) (*SupplementResult, error) {
	result := &SupplementResult{}

	ordinances := opts.Ordinances
	if ordinances {
		allowed, err := s.checkOrdinanceAccess(ctx)
		if err != nil {
			return nil, err
		}
		if !allowed {
			s.logger.Warn("ordinances are restricted for this account, skipping them")
			ordinances = false
			result.OrdinancesDisabled = true
		}
	}

	tasks := s.tasks(g, opts.Contributors, ordinances)
	result.Tasks = len(tasks)

	pool := worker.NewPool(ctx, opts.Workers)
	pool.Start()
	for _, t := range tasks {
		if !pool.Submit(t) {
			break
		}
	}
	results := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("supplementing graph: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].(*taskResult).seq < results[j].(*taskResult).seq
	})
	for _, r := range results {
		tr := r.(*taskResult)
		if tr.err != nil {
			result.Failed++
			s.logger.Warn("supplementary fetch failed", "task", tr.name, "error", tr.err)
			continue
		}
		if tr.apply != nil {
			tr.apply(g)
		}
	}
	return result, nil
}

// checkOrdinanceAccess reports whether the account may read ordinances.
func (s *SupplementService) checkOrdinanceAccess(ctx context.Context) (bool, error) {
	var user records.CurrentUserResponse
	found, err := s.fetcher.Fetch(ctx, records.CurrentUserPath, &user)
	if err != nil {
		return false, fmt.Errorf("fetching current user: %w", err)
	}
	if !found || len(user.Users) == 0 {
		return false, ErrNoCurrentPerson
	}
	var access records.OrdinancesResponse
	_, err = s.fetcher.Fetch(ctx, records.PersonOrdinancesPath(user.Users[0].PersonID), &access)
	if errors.Is(err, ports.ErrRestricted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking ordinance access: %w", err)
	}
	return true, nil
}

func (s *SupplementService) tasks(g *entities.Graph, contributors, ordinances bool) []*task {
	var tasks []*task
	add := func(name string, fetch func(ctx context.Context) (applyFunc, error)) {
		tasks = append(tasks, &task{seq: len(tasks), name: name, fetch: fetch})
	}

	for _, ind := range g.SortedIndividuals() {
		id := ind.ID
		add("notes "+id, s.personNotes(id))
		if ordinances {
			add("ordinances "+id, s.personOrdinances(id))
		}
		if contributors {
			add("contributors "+id, s.contributors(records.PersonChangesPath(id), func(g *entities.Graph, n *entities.Note) {
				g.Individuals[id].AddNote(n)
			}))
		}
	}
	for _, fam := range g.SortedFamilies() {
		if fam.ID == "" {
			continue
		}
		key, relID := fam.Key, fam.ID
		add("notes "+relID, s.coupleNotes(key, relID))
		if contributors {
			add("contributors "+relID, s.contributors(records.CoupleChangesPath(relID), func(g *entities.Graph, n *entities.Note) {
				g.Families[key].AddNote(n)
			}))
		}
	}
	return tasks
}

func (s *SupplementService) personNotes(id string) func(context.Context) (applyFunc, error) {
	return func(ctx context.Context) (applyFunc, error) {
		var resp records.NotesResponse
		found, err := s.fetcher.Fetch(ctx, records.PersonNotesPath(id), &resp)
		if err != nil || !found || len(resp.Persons) == 0 {
			return nil, err
		}
		notes := resp.Persons[0].Notes
		return func(g *entities.Graph) {
			ind := g.Individuals[id]
			for _, n := range notes {
				if text := noteText(n); entities.NormalizeNoteText(text) != "" {
					ind.AddNote(g.NewNote(text))
				}
			}
		}, nil
	}
}

func (s *SupplementService) coupleNotes(key entities.FamilyKey, relID string) func(context.Context) (applyFunc, error) {
	return func(ctx context.Context) (applyFunc, error) {
		var resp records.NotesResponse
		found, err := s.fetcher.Fetch(ctx, records.CoupleNotesPath(relID), &resp)
		if err != nil || !found || len(resp.Relationships) == 0 {
			return nil, err
		}
		notes := resp.Relationships[0].Notes
		return func(g *entities.Graph) {
			fam := g.Families[key]
			for _, n := range notes {
				if text := noteText(n); entities.NormalizeNoteText(text) != "" {
					fam.AddNote(g.NewNote(text))
				}
			}
		}, nil
	}
}

func (s *SupplementService) contributors(path string, attach func(*entities.Graph, *entities.Note)) func(context.Context) (applyFunc, error) {
	return func(ctx context.Context) (applyFunc, error) {
		var resp records.ChangesResponse
		found, err := s.fetcher.Fetch(ctx, path, &resp)
		if err != nil || !found {
			return nil, err
		}
		text := contributorsText(&resp)
		if text == "" {
			return nil, nil
		}
		return func(g *entities.Graph) {
			attach(g, g.FindOrCreateNote(text))
		}, nil
	}
}

func (s *SupplementService) personOrdinances(id string) func(context.Context) (applyFunc, error) {
	return func(ctx context.Context) (applyFunc, error) {
		var resp records.OrdinancesResponse
		found, err := s.fetcher.Fetch(ctx, records.PersonOrdinancesPath(id), &resp)
		if err != nil || !found || len(resp.Persons) == 0 {
			return nil, err
		}
		ordinances := resp.Persons[0].Ordinances
		return func(g *entities.Graph) {
			applyOrdinances(g, id, ordinances)
		}, nil
	}
}

func applyOrdinances(g *entities.Graph, id string, ordinances []records.Ordinance) {
	ind := g.Individuals[id]
	for i := range ordinances {
		o := &ordinances[i]
		switch o.Type {
		case records.OrdinanceBaptism:
			ind.Baptism = convertOrdinance(o)
		case records.OrdinanceConfirmation:
			ind.Confirmation = convertOrdinance(o)
		case records.OrdinanceEndowment:
			ind.Endowment = convertOrdinance(o)
		case records.OrdinanceSealingChild:
			ind.SealingChild = convertOrdinance(o)
			if o.Father != nil && o.Mother != nil {
				key := entities.FamilyKey{Father: o.Father.ID(), Mother: o.Mother.ID()}
				if _, ok := g.Families[key]; ok {
					ind.SealingChild.Family = &key
				}
			}
		case records.OrdinanceSealingSpouse:
			spouse := o.Spouse.ID()
			if fam, ok := g.Families[entities.FamilyKey{Father: id, Mother: spouse}]; ok {
				fam.SealingSpouse = convertOrdinance(o)
			} else if fam, ok := g.Families[entities.FamilyKey{Father: spouse, Mother: id}]; ok {
				fam.SealingSpouse = convertOrdinance(o)
			}
		}
	}
}
