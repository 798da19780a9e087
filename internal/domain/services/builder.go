package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/domain/records"
)

// Defaults for BuildService.
const (
	DefaultBatchSize = records.MaxPersons
	DefaultWorkers   = 8
)

// ErrNoCurrentPerson is returned when the signed-in user has no person in
// the tree.
var ErrNoCurrentPerson = errors.New("current user has no person in the tree")

// BuildOption configures a BuildService.
type BuildOption func(*BuildService)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(s *BuildService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBatchSize bounds the number of ids per persons request.
func WithBatchSize(n int) BuildOption {
	return func(s *BuildService) {
		if n > 0 && n <= records.MaxPersons {
			s.batchSize = n
		}
	}
}

// WithWorkers bounds the number of concurrent detail requests.
func WithWorkers(n int) BuildOption {
	return func(s *BuildService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// BuildService grows a family graph from the remote source.
//
// Structural phases are sequential: each generation's frontier is computed
// from the edges committed by the previous one. Inside a batch, per-person
// documents are fetched concurrently and applied to the graph in response
// order once all of them have arrived, so the graph is only ever mutated
// by the calling goroutine.
type BuildService struct {
	fetcher   ports.Fetcher
	logger    *slog.Logger
	batchSize int
	workers   int
}

// NewBuildService creates a new BuildService.
func NewBuildService(fetcher ports.Fetcher, opts ...BuildOption) *BuildService {
	s := &BuildService{
		fetcher:   fetcher,
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentPersonID returns the person id of the signed-in user.
func (s *BuildService) CurrentPersonID(ctx context.Context) (string, error) {
	var resp records.CurrentUserResponse
	found, err := s.fetcher.Fetch(ctx, records.CurrentUserPath, &resp)
	if err != nil {
		return "", fmt.Errorf("fetching current user: %w", err)
	}
	if !found || len(resp.Users) == 0 || resp.Users[0].PersonID == "" {
		return "", ErrNoCurrentPerson
	}
	return resp.Users[0].PersonID, nil
}

// AddIndividuals fetches every id not yet in g, in batches, and records the
// parent, child and spouse relationships listed with them. Absent batches
// are skipped.
func (s *BuildService) AddIndividuals(ctx context.Context, g *entities.Graph, ids []string) error {
	pending := newIDs(g, ids)
	for len(pending) > 0 {
		n := min(len(pending), s.batchSize)
		batch := pending[:n]
		pending = pending[n:]

		if err := s.addBatch(ctx, g, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *BuildService) addBatch(ctx context.Context, g *entities.Graph, ids []string) error {
	var resp records.PersonsResponse
	found, err := s.fetcher.Fetch(ctx, records.PersonsPath(ids), &resp)
	if err != nil {
		return fmt.Errorf("fetching persons: %w", err)
	}
	if !found {
		s.logger.Warn("persons batch absent", "ids", len(ids))
		return nil
	}

	for _, p := range resp.Places {
		if _, ok := g.Places[p.ID]; !ok {
			g.Places[p.ID] = entities.Coordinates{
				Latitude:  p.Latitude.String(),
				Longitude: p.Longitude.String(),
			}
		}
	}

	people := make([]*entities.Individual, len(resp.Persons))
	for i := range resp.Persons {
		people[i] = g.AddIndividual(resp.Persons[i].ID)
	}

	details, err := s.fetchDetails(ctx, resp.Persons)
	if err != nil {
		return err
	}
	for i := range resp.Persons {
		applyPerson(g, people[i], &resp.Persons[i], details[i])
	}

	for _, rel := range resp.ChildAndParentsRelationships {
		father, mother, child := rel.Father.ID(), rel.Mother.ID(), rel.Child.ID()
		trio := entities.Trio{Father: father, Mother: mother, Child: child}
		if ind, ok := g.Individuals[child]; ok {
			ind.Parents[trio.Key()] = struct{}{}
		}
		if ind, ok := g.Individuals[father]; ok {
			ind.Children[trio] = struct{}{}
		}
		if ind, ok := g.Individuals[mother]; ok {
			ind.Children[trio] = struct{}{}
		}
	}

	for _, rel := range resp.Relationships {
		if rel.Type != records.TypeCouple {
			continue
		}
		link := entities.SpouseLink{
			Person1:        rel.Person1.ID(),
			Person2:        rel.Person2.ID(),
			RelationshipID: rel.ID,
		}
		if ind, ok := g.Individuals[link.Person1]; ok {
			ind.Spouses[link] = struct{}{}
		}
		if ind, ok := g.Individuals[link.Person2]; ok {
			ind.Spouses[link] = struct{}{}
		}
	}
	return nil
}

// fetchDetails loads the sources and memories documents of the persons
// that list any.
func (s *BuildService) fetchDetails(ctx context.Context, persons []records.Person) ([]personDetails, error) {
	details := make([]personDetails, len(persons))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)

	for i := range persons {
		p := &persons[i]
		d := &details[i]
		if len(p.Sources) > 0 {
			eg.Go(func() error {
				var resp records.SourcesResponse
				found, err := s.fetcher.Fetch(ctx, records.PersonSourcesPath(p.ID), &resp)
				if err != nil {
					return fmt.Errorf("fetching sources of %s: %w", p.ID, err)
				}
				if found {
					d.sources = &resp
				}
				return nil
			})
		}
		if len(p.Evidence) > 0 {
			eg.Go(func() error {
				var resp records.MemoriesResponse
				found, err := s.fetcher.Fetch(ctx, records.PersonMemoriesPath(p.ID), &resp)
				if err != nil {
					return fmt.Errorf("fetching memories of %s: %w", p.ID, err)
				}
				if found {
					d.memories = &resp
				}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// AddParents fetches the parents of the given individuals and commits a
// family for each parent pair whose slots are all resolved. It returns
// the parent ids that were requested.
func (s *BuildService) AddParents(ctx context.Context, g *entities.Graph, ids []string) ([]string, error) {
	var parents []string
	present := presentIDs(g, ids)
	for _, id := range present {
		for _, key := range sortedKeys(g.Individuals[id].Parents) {
			parents = append(parents, key.Father, key.Mother)
		}
	}
	parents = uniqueIDs(parents)
	if len(parents) > 0 {
		if err := s.AddIndividuals(ctx, g, parents); err != nil {
			return nil, fmt.Errorf("adding parents: %w", err)
		}
	}

	for _, id := range present {
		for _, key := range sortedKeys(g.Individuals[id].Parents) {
			if g.ParentsResolved(key) {
				g.AddTrio(key.Father, key.Mother, id)
			}
		}
	}
	return parents, nil
}

// AddChildren fetches the children of the given individuals and commits
// each child whose parent slots are all resolved. It returns the children
// that were committed.
func (s *BuildService) AddChildren(ctx context.Context, g *entities.Graph, ids []string) ([]string, error) {
	trios := make(map[entities.Trio]struct{})
	for _, id := range presentIDs(g, ids) {
		for trio := range g.Individuals[id].Children {
			trios[trio] = struct{}{}
		}
	}
	if len(trios) == 0 {
		return nil, nil
	}

	sorted := sortedTrios(trios)
	var related []string
	for _, t := range sorted {
		related = append(related, t.Father, t.Mother, t.Child)
	}
	if err := s.AddIndividuals(ctx, g, uniqueIDs(related)); err != nil {
		return nil, fmt.Errorf("adding children: %w", err)
	}

	var children []string
	for _, t := range sorted {
		if g.Has(t.Child) && g.ParentsResolved(t.Key()) {
			g.AddTrio(t.Father, t.Mother, t.Child)
			children = append(children, t.Child)
		}
	}
	return uniqueIDs(children), nil
}

// AddSpouses fetches the partners of the given individuals, commits a
// family for every couple whose partners are both present and loads the
// marriage facts and sources of families that have no relationship id yet.
func (s *BuildService) AddSpouses(ctx context.Context, g *entities.Graph, ids []string) error {
	links := make(map[entities.SpouseLink]struct{})
	for _, id := range presentIDs(g, ids) {
		for link := range g.Individuals[id].Spouses {
			links[link] = struct{}{}
		}
	}
	if len(links) == 0 {
		return nil
	}

	sorted := sortedLinks(links)
	var partners []string
	for _, l := range sorted {
		partners = append(partners, l.Person1, l.Person2)
	}
	if err := s.AddIndividuals(ctx, g, uniqueIDs(partners)); err != nil {
		return fmt.Errorf("adding spouses: %w", err)
	}

	var marriages []marriage
	for _, l := range sorted {
		fam := g.LinkCouple(l.Key())
		if fam == nil || fam.ID != "" || l.RelationshipID == "" {
			continue
		}
		fam.ID = l.RelationshipID
		marriages = append(marriages, marriage{family: fam})
	}
	return s.addMarriages(ctx, g, marriages)
}

// marriage is the couple documents fetched for one family.
type marriage struct {
	family  *entities.Family
	couple  *records.Relationship
	sources *records.SourcesResponse
}

func (s *BuildService) addMarriages(ctx context.Context, g *entities.Graph, marriages []marriage) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i := range marriages {
		m := &marriages[i]
		relID := m.family.ID
		eg.Go(func() error {
			var resp records.RelationshipsResponse
			found, err := s.fetcher.Fetch(ctx, records.CouplePath(relID), &resp)
			if err != nil {
				return fmt.Errorf("fetching couple %s: %w", relID, err)
			}
			if !found || len(resp.Relationships) == 0 {
				return nil
			}
			m.couple = &resp.Relationships[0]
			if !hasUnknownSource(g, m.couple.Sources) {
				return nil
			}
			var sources records.SourcesResponse
			found, err = s.fetcher.Fetch(ctx, records.CoupleSourcesPath(relID), &sources)
			if err != nil {
				return fmt.Errorf("fetching sources of couple %s: %w", relID, err)
			}
			if found {
				m.sources = &sources
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, m := range marriages {
		if m.couple != nil {
			applyMarriage(g, m)
		}
	}
	return nil
}

// hasUnknownSource reports whether a reference names a source not in g.
// It only reads g and runs while no goroutine writes to it.
func hasUnknownSource(g *entities.Graph, refs []records.SourceReference) bool {
	for _, ref := range refs {
		if _, ok := g.Sources[ref.DescriptionID]; !ok {
			return true
		}
	}
	return false
}

func applyMarriage(g *entities.Graph, m marriage) {
	fam := m.family
	for i := range m.couple.Facts {
		if fact, ok := convertFact(g, &m.couple.Facts[i]); ok {
			fam.AddFact(fact)
		}
	}
	if m.sources != nil {
		for i := range m.sources.SourceDescriptions {
			addSource(g, &m.sources.SourceDescriptions[i])
		}
	}
	for _, ref := range m.couple.Sources {
		if src, ok := g.Sources[ref.DescriptionID]; ok {
			fam.AddCitation(entities.Citation{Source: src, Quote: ref.Attribution.ChangeMessage})
		}
	}
}

// Ancestors expands g upward from seeds for up to generations steps.
// It stops early when a generation yields no new parents.
func (s *BuildService) Ancestors(ctx context.Context, g *entities.Graph, seeds []string, generations int) error {
	todo := uniqueIDs(seeds)
	done := make(map[string]bool)
	for gen := 1; gen <= generations && len(todo) > 0; gen++ {
		for _, id := range todo {
			done[id] = true
		}
		s.logger.Info("downloading ancestors", "generation", gen, "frontier", len(todo))
		parents, err := s.AddParents(ctx, g, todo)
		if err != nil {
			return fmt.Errorf("ancestor generation %d: %w", gen, err)
		}
		todo = without(parents, done)
	}
	return nil
}

// Descendants expands g downward from every individual already in it for up
// to generations steps.
func (s *BuildService) Descendants(ctx context.Context, g *entities.Graph, generations int) error {
	todo := allIDs(g)
	done := make(map[string]bool)
	for gen := 1; gen <= generations && len(todo) > 0; gen++ {
		for _, id := range todo {
			done[id] = true
		}
		s.logger.Info("downloading descendants", "generation", gen, "frontier", len(todo))
		children, err := s.AddChildren(ctx, g, todo)
		if err != nil {
			return fmt.Errorf("descendant generation %d: %w", gen, err)
		}
		todo = without(children, done)
	}
	return nil
}

// Spouses links the partners of every individual in g.
func (s *BuildService) Spouses(ctx context.Context, g *entities.Graph) error {
	s.logger.Info("downloading spouses", "individuals", len(g.Individuals))
	return s.AddSpouses(ctx, g, allIDs(g))
}

// newIDs returns the unique non-empty ids not yet in g, in input order.
func newIDs(g *entities.Graph, ids []string) []string {
	var out []string
	for _, id := range uniqueIDs(ids) {
		if !g.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// uniqueIDs drops empty and repeated ids, keeping the first occurrence.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func presentIDs(g *entities.Graph, ids []string) []string {
	var out []string
	for _, id := range uniqueIDs(ids) {
		if g.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func allIDs(g *entities.Graph) []string {
	out := make([]string, 0, len(g.Individuals))
	for _, ind := range g.SortedIndividuals() {
		out = append(out, ind.ID)
	}
	return out
}

func without(ids []string, done map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if !done[id] {
			out = append(out, id)
		}
	}
	return out
}

func sortedKeys(keys map[entities.FamilyKey]struct{}) []entities.FamilyKey {
	out := make([]entities.FamilyKey, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Father != out[j].Father {
			return out[i].Father < out[j].Father
		}
		return out[i].Mother < out[j].Mother
	})
	return out
}

func sortedTrios(trios map[entities.Trio]struct{}) []entities.Trio {
	out := make([]entities.Trio, 0, len(trios))
	for t := range trios {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Father != b.Father {
			return a.Father < b.Father
		}
		if a.Mother != b.Mother {
			return a.Mother < b.Mother
		}
		return a.Child < b.Child
	})
	return out
}

func sortedLinks(links map[entities.SpouseLink]struct{}) []entities.SpouseLink {
	out := make([]entities.SpouseLink, 0, len(links))
	for l := range links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Person1 != b.Person1 {
			return a.Person1 < b.Person1
		}
		if a.Person2 != b.Person2 {
			return a.Person2 < b.Person2
		}
		return a.RelationshipID < b.RelationshipID
	})
	return out
}
