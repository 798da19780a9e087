package entities

import "sort"

// FamilyKey identifies a family by its parents' external ids.
// An empty slot means that parent is absent.
type FamilyKey struct {
	Father string
	Mother string
}

// Family is a couple and their children.
type Family struct {
	Num           int
	Key           FamilyKey
	ID            string
	Facts         []Fact
	SealingSpouse *Ordinance
	Children      map[string]struct{}
	Notes         []*Note
	Sources       []Citation
}

func newFamily(key FamilyKey, num int) *Family {
	return &Family{
		Num:      num,
		Key:      key,
		Children: make(map[string]struct{}),
	}
}

// AddChild records a child by external id.
func (f *Family) AddChild(id string) {
	if id == "" {
		return
	}
	f.Children[id] = struct{}{}
}

// AddNote attaches n unless it is already attached.
func (f *Family) AddNote(n *Note) {
	f.Notes = AppendNote(f.Notes, n)
}

// AddCitation attaches a source citation.
func (f *Family) AddCitation(c Citation) {
	f.Sources = AppendCitation(f.Sources, c)
}

// AddFact attaches a fact unless an equal one is present.
func (f *Family) AddFact(fact Fact) {
	f.Facts = AppendFact(f.Facts, fact)
}

// ChildIDs returns the children's external ids in sorted order.
func (f *Family) ChildIDs() []string {
	ids := make([]string, 0, len(f.Children))
	for id := range f.Children {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
