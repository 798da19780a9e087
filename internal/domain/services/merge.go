package services

import (
	"log/slog"
	"sort"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

// MergeService unions graphs read from several files.
type MergeService struct {
	logger *slog.Logger
}

// NewMergeService creates a new MergeService.
func NewMergeService(logger *slog.Logger) *MergeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MergeService{logger: logger}
}

// Merge unions inputs in order into a new graph.
//
// Individuals are matched by external id and families by parent key.
// Multi-valued fields are unioned. A single-valued field is replaced only
// by a non-empty incoming value, and a child sealing that already names
// its family is kept. Notes with equal trimmed text end up sharing one
// identity.
func (s *MergeService) Merge(inputs []*entities.Graph) *entities.Graph {
	out := entities.NewGraph()
	for i, in := range inputs {
		m := &graphMerger{out: out, in: in, notes: make(map[*entities.Note]*entities.Note)}
		m.merge()
		s.logger.Debug("merged input", "index", i, "individuals", len(in.Individuals), "families", len(in.Families))
	}
	numberNotesByText(out)
	return out
}

// graphMerger copies one input graph into the output graph.
type graphMerger struct {
	out   *entities.Graph
	in    *entities.Graph
	notes map[*entities.Note]*entities.Note
}

func (m *graphMerger) merge() {
	for id, c := range m.in.Places {
		if _, ok := m.out.Places[id]; !ok {
			m.out.Places[id] = c
		}
	}
	for _, src := range m.in.SortedSources() {
		m.source(src)
	}
	for _, ind := range m.in.SortedIndividuals() {
		m.individual(ind)
	}
	for _, fam := range m.in.SortedFamilies() {
		m.family(fam)
	}
	// Notes no entity refers to still belong to the graph.
	for _, n := range m.in.SortedNotes() {
		m.note(n)
	}
}

// note returns the output copy of an input note.
func (m *graphMerger) note(n *entities.Note) *entities.Note {
	if n == nil {
		return nil
	}
	if c, ok := m.notes[n]; ok {
		return c
	}
	c := m.out.NewNote(n.Text)
	m.notes[n] = c
	return c
}

func (m *graphMerger) notesOf(notes []*entities.Note, into []*entities.Note) []*entities.Note {
	for _, n := range notes {
		into = entities.AppendNote(into, m.note(n))
	}
	return into
}

func (m *graphMerger) source(in *entities.Source) *entities.Source {
	if in == nil {
		return nil
	}
	src, _ := m.out.AddSource(in.ID)
	if in.URL != "" {
		src.URL = in.URL
	}
	if in.Citation != "" {
		src.Citation = in.Citation
	}
	if in.Title != "" {
		src.Title = in.Title
	}
	src.Notes = m.notesOf(in.Notes, src.Notes)
	return src
}

func (m *graphMerger) citations(in []entities.Citation, into []entities.Citation) []entities.Citation {
	for _, c := range in {
		if c.Source == nil {
			continue
		}
		into = entities.AppendCitation(into, entities.Citation{Source: m.source(c.Source), Quote: c.Quote})
	}
	return into
}

func (m *graphMerger) name(n entities.Name) entities.Name {
	n.Note = m.note(n.Note)
	return n
}

func (m *graphMerger) names(in, into []entities.Name) []entities.Name {
	mapped := make([]entities.Name, 0, len(in))
	for _, n := range in {
		mapped = append(mapped, m.name(n))
	}
	return entities.UnionNames(into, mapped)
}

func (m *graphMerger) facts(in, into []entities.Fact) []entities.Fact {
	for _, f := range in {
		f.Note = m.note(f.Note)
		if f.Map != nil {
			c := *f.Map
			f.Map = &c
		}
		into = entities.AppendFact(into, f)
	}
	return into
}

func (m *graphMerger) individual(in *entities.Individual) {
	ind := m.out.AddIndividual(in.ID)

	if in.Name != nil {
		n := m.name(*in.Name)
		ind.Name = &n
	}
	if in.Gender != "" {
		ind.Gender = in.Gender
	}
	ind.Nicknames = m.names(in.Nicknames, ind.Nicknames)
	ind.BirthNames = m.names(in.BirthNames, ind.BirthNames)
	ind.AlsoKnownAs = m.names(in.AlsoKnownAs, ind.AlsoKnownAs)
	ind.MarriedNames = m.names(in.MarriedNames, ind.MarriedNames)
	ind.Facts = m.facts(in.Facts, ind.Facts)
	ind.Notes = m.notesOf(in.Notes, ind.Notes)
	ind.Sources = m.citations(in.Sources, ind.Sources)
	for _, media := range in.Media {
		ind.AddMedia(media)
	}

	if in.Baptism != nil {
		ind.Baptism = copyOrdinance(in.Baptism)
	}
	if in.Confirmation != nil {
		ind.Confirmation = copyOrdinance(in.Confirmation)
	}
	if in.Endowment != nil {
		ind.Endowment = copyOrdinance(in.Endowment)
	}
	if in.SealingChild != nil && (ind.SealingChild == nil || ind.SealingChild.Family == nil) {
		ind.SealingChild = copyOrdinance(in.SealingChild)
	}

	for key := range in.FamiliesAsChild {
		ind.AddFamilyAsChild(key)
	}
	for key := range in.FamiliesAsSpouse {
		ind.AddFamilyAsSpouse(key)
	}
}

func (m *graphMerger) family(in *entities.Family) {
	fam := m.out.AddFamily(in.Key)

	for id := range in.Children {
		fam.AddChild(id)
	}
	if in.ID != "" {
		fam.ID = in.ID
	}
	if len(in.Facts) > 0 {
		fam.Facts = m.facts(in.Facts, nil)
	}
	if in.SealingSpouse != nil {
		fam.SealingSpouse = copyOrdinance(in.SealingSpouse)
	}
	fam.Notes = m.notesOf(in.Notes, fam.Notes)
	fam.Sources = m.citations(in.Sources, fam.Sources)
}

func copyOrdinance(o *entities.Ordinance) *entities.Ordinance {
	c := *o
	if o.Family != nil {
		key := *o.Family
		c.Family = &key
	}
	return &c
}

// numberNotesByText orders notes by trimmed text and gives equal texts one
// shared identity.
func numberNotesByText(g *entities.Graph) {
	sort.SliceStable(g.Notes, func(i, j int) bool {
		return entities.NormalizeNoteText(g.Notes[i].Text) < entities.NormalizeNoteText(g.Notes[j].Text)
	})
	num := 0
	for i, n := range g.Notes {
		if i == 0 || entities.NormalizeNoteText(n.Text) != entities.NormalizeNoteText(g.Notes[i-1].Text) {
			num++
		}
		n.Num = num
	}
}
