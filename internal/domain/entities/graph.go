package entities

import "sort"

// SlotState describes one parent slot of a family key relative to a graph.
type SlotState int

const (
	// SlotAbsent means the slot is known to be empty.
	SlotAbsent SlotState = iota
	// SlotPending means an id is known but the person is not in the graph yet.
	SlotPending
	// SlotPresent means the person is in the graph.
	SlotPresent
)

// Stats counts the entities in a graph.
type Stats struct {
	Individuals int
	Families    int
	Sources     int
	Notes       int
}

// Graph owns every entity of one family tree.
// Entities refer to each other by external id or family key and are looked
// up through the graph.
type Graph struct {
	Individuals map[string]*Individual
	Families    map[FamilyKey]*Family
	Sources     map[string]*Source
	Notes       []*Note
	Places      map[string]Coordinates

	alloc *Allocator
}

// NewGraph returns an empty graph with its own identity allocator.
func NewGraph() *Graph {
	return &Graph{
		Individuals: make(map[string]*Individual),
		Families:    make(map[FamilyKey]*Family),
		Sources:     make(map[string]*Source),
		Places:      make(map[string]Coordinates),
		alloc:       NewAllocator(),
	}
}

// Allocator returns the graph's identity allocator.
func (g *Graph) Allocator() *Allocator {
	return g.alloc
}

// Has reports whether the individual is in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.Individuals[id]
	return ok
}

// AddIndividual returns the individual with the given id, creating it with
// a fresh identity if needed.
func (g *Graph) AddIndividual(id string) *Individual {
	if ind, ok := g.Individuals[id]; ok {
		return ind
	}
	ind := newIndividual(id, g.alloc.Next(KindIndividual))
	g.Individuals[id] = ind
	return ind
}

// InsertIndividual is AddIndividual with a caller-chosen identity.
// An existing individual keeps its identity.
func (g *Graph) InsertIndividual(id string, num int) *Individual {
	if ind, ok := g.Individuals[id]; ok {
		return ind
	}
	g.alloc.Observe(KindIndividual, num)
	ind := newIndividual(id, num)
	g.Individuals[id] = ind
	return ind
}

// AddFamily returns the family with the given key, creating it if needed.
func (g *Graph) AddFamily(key FamilyKey) *Family {
	if fam, ok := g.Families[key]; ok {
		return fam
	}
	fam := newFamily(key, g.alloc.Next(KindFamily))
	g.Families[key] = fam
	return fam
}

// InsertFamily is AddFamily with a caller-chosen identity.
func (g *Graph) InsertFamily(key FamilyKey, num int) *Family {
	if fam, ok := g.Families[key]; ok {
		return fam
	}
	g.alloc.Observe(KindFamily, num)
	fam := newFamily(key, num)
	g.Families[key] = fam
	return fam
}

// AddSource returns the source with the given id and whether it was created.
func (g *Graph) AddSource(id string) (*Source, bool) {
	if src, ok := g.Sources[id]; ok {
		return src, false
	}
	src := &Source{Num: g.alloc.Next(KindSource), ID: id}
	g.Sources[id] = src
	return src, true
}

// InsertSource is AddSource with a caller-chosen identity.
func (g *Graph) InsertSource(id string, num int) (*Source, bool) {
	if src, ok := g.Sources[id]; ok {
		return src, false
	}
	g.alloc.Observe(KindSource, num)
	src := &Source{Num: num, ID: id}
	g.Sources[id] = src
	return src, true
}

// NewNote creates a note with trimmed text and a fresh identity.
func (g *Graph) NewNote(text string) *Note {
	n := &Note{Num: g.alloc.Next(KindNote), Text: NormalizeNoteText(text)}
	g.Notes = append(g.Notes, n)
	return n
}

// InsertNote registers a note with a caller-chosen identity and text as-is.
func (g *Graph) InsertNote(num int, text string) *Note {
	g.alloc.Observe(KindNote, num)
	n := &Note{Num: num, Text: text}
	g.Notes = append(g.Notes, n)
	return n
}

// FindOrCreateNote returns an existing note with the same trimmed text, or a
// new one.
func (g *Graph) FindOrCreateNote(text string) *Note {
	text = NormalizeNoteText(text)
	for _, n := range g.Notes {
		if n.Text == text {
			return n
		}
	}
	return g.NewNote(text)
}

// Slot classifies a parent slot.
func (g *Graph) Slot(id string) SlotState {
	switch {
	case id == "":
		return SlotAbsent
	case g.Has(id):
		return SlotPresent
	default:
		return SlotPending
	}
}

// ParentsResolved reports whether a family can be committed: no slot is
// still pending and at least one parent is present.
func (g *Graph) ParentsResolved(key FamilyKey) bool {
	father, mother := g.Slot(key.Father), g.Slot(key.Mother)
	if father == SlotPending || mother == SlotPending {
		return false
	}
	return father == SlotPresent || mother == SlotPresent
}

// AddTrio commits a possibly incomplete child-and-parents relationship.
// Present parents get the family as spouse; the child and the family are
// linked only when the child and at least one parent are present.
//
// Call it only once ParentsResolved holds for the key. The family key keeps
// a parent that is not in the graph, and writers drop such a parent, so a
// pending slot would read back as absent.
func (g *Graph) AddTrio(father, mother, child string) {
	key := FamilyKey{Father: father, Mother: mother}
	if ind, ok := g.Individuals[father]; ok && father != "" {
		ind.AddFamilyAsSpouse(key)
	}
	if ind, ok := g.Individuals[mother]; ok && mother != "" {
		ind.AddFamilyAsSpouse(key)
	}
	ind, ok := g.Individuals[child]
	if !ok || child == "" || !(g.Has(father) || g.Has(mother)) {
		return
	}
	ind.AddFamilyAsChild(key)
	g.AddFamily(key).AddChild(child)
}

// LinkCouple commits a couple when both partners are present.
// It returns the family, or nil if a partner is missing.
func (g *Graph) LinkCouple(key FamilyKey) *Family {
	father, ok1 := g.Individuals[key.Father]
	mother, ok2 := g.Individuals[key.Mother]
	if !ok1 || !ok2 {
		return nil
	}
	father.AddFamilyAsSpouse(key)
	mother.AddFamilyAsSpouse(key)
	return g.AddFamily(key)
}

// SortedIndividuals returns individuals ordered by identity, then id.
func (g *Graph) SortedIndividuals() []*Individual {
	out := make([]*Individual, 0, len(g.Individuals))
	for _, ind := range g.Individuals {
		out = append(out, ind)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Num != out[b].Num {
			return out[a].Num < out[b].Num
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// SortedFamilies returns families ordered by identity, then key.
func (g *Graph) SortedFamilies() []*Family {
	out := make([]*Family, 0, len(g.Families))
	for _, fam := range g.Families {
		out = append(out, fam)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Num != out[b].Num {
			return out[a].Num < out[b].Num
		}
		if out[a].Key.Father != out[b].Key.Father {
			return out[a].Key.Father < out[b].Key.Father
		}
		return out[a].Key.Mother < out[b].Key.Mother
	})
	return out
}

// SortedSources returns sources ordered by identity, then id.
func (g *Graph) SortedSources() []*Source {
	out := make([]*Source, 0, len(g.Sources))
	for _, src := range g.Sources {
		out = append(out, src)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Num != out[b].Num {
			return out[a].Num < out[b].Num
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// SortedNotes returns notes ordered by identity. Notes sharing an identity
// keep their relative order.
func (g *Graph) SortedNotes() []*Note {
	out := make([]*Note, len(g.Notes))
	copy(out, g.Notes)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Num < out[b].Num
	})
	return out
}

// Renumber reassigns every identity densely from 1, keeping the current
// relative order. Notes that share an identity keep sharing one.
// It must run after all edges are known and before serialization.
func (g *Graph) Renumber() {
	g.alloc.Reset()
	for _, ind := range g.SortedIndividuals() {
		ind.Num = g.alloc.Next(KindIndividual)
	}
	for _, fam := range g.SortedFamilies() {
		fam.Num = g.alloc.Next(KindFamily)
	}
	for _, src := range g.SortedSources() {
		src.Num = g.alloc.Next(KindSource)
	}
	var current, previous int
	for i, n := range g.SortedNotes() {
		if i == 0 || n.Num != previous {
			current = g.alloc.Next(KindNote)
		}
		previous = n.Num
		n.Num = current
	}
}

// Stats counts the graph's entities.
func (g *Graph) Stats() Stats {
	return Stats{
		Individuals: len(g.Individuals),
		Families:    len(g.Families),
		Sources:     len(g.Sources),
		Notes:       len(g.Notes),
	}
}
