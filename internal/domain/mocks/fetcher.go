package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ersonp/famgraph/internal/domain/records"
)

const personsPrefix = "/platform/tree/persons.json?pids="

// Fetcher is an in-memory implementation of ports.Fetcher.
// Documents are stored as values and round-tripped through JSON so callers
// decode them the way they decode remote responses.
type Fetcher struct {
	mu sync.Mutex

	// Documents maps a path to the value served for it.
	Documents map[string]any
	// People holds the persons-batch fragment of each person id. A batch
	// request is answered with the fragments of the ids it names.
	People map[string]records.PersonsResponse
	// Errors maps a path to the error returned for it.
	Errors map[string]error

	paths []string
}

// NewFetcher creates a new mock Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Documents: make(map[string]any),
		People:    make(map[string]records.PersonsResponse),
		Errors:    make(map[string]error),
	}
}

// AddPerson registers p and the relationships listed with it.
func (m *Fetcher) AddPerson(p records.Person, caps []records.ChildAndParents, rels []records.Relationship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.People[p.ID] = records.PersonsResponse{
		Persons:                      []records.Person{p},
		ChildAndParentsRelationships: caps,
		Relationships:                rels,
	}
}

// Set serves v at path.
func (m *Fetcher) Set(path string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents[path] = v
}

// Fail makes path return err.
func (m *Fetcher) Fail(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[path] = err
}

// Fetch decodes the document registered for path into v.
func (m *Fetcher) Fetch(ctx context.Context, path string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	m.paths = append(m.paths, path)
	err := m.Errors[path]
	doc, found := m.Documents[path]
	if ids, ok := strings.CutPrefix(path, personsPrefix); ok && err == nil {
		doc, found = m.batch(strings.Split(ids, ","))
	}
	m.mu.Unlock()

	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshaling %s: %w", path, err)
	}
	return true, nil
}

func (m *Fetcher) batch(ids []string) (any, bool) {
	var out records.PersonsResponse
	for _, id := range ids {
		frag, ok := m.People[id]
		if !ok {
			continue
		}
		out.Persons = append(out.Persons, frag.Persons...)
		out.Places = append(out.Places, frag.Places...)
		out.ChildAndParentsRelationships = append(out.ChildAndParentsRelationships, frag.ChildAndParentsRelationships...)
		out.Relationships = append(out.Relationships, frag.Relationships...)
	}
	if len(out.Persons) == 0 {
		return nil, false
	}
	return out, true
}

// Paths returns every requested path in request order.
func (m *Fetcher) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Requests implements ports.RequestCounter.
func (m *Fetcher) Requests() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.paths))
}

// Count returns how many requested paths start with prefix.
func (m *Fetcher) Count(prefix string) int {
	n := 0
	for _, p := range m.Paths() {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}
