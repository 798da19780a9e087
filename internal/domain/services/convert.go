package services

import (
	"sort"
	"strings"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/records"
)

const (
	memoriesAPIPath   = "familysearch.org/platform/memories/memories"
	memoriesPublicURL = "www.familysearch.org/photos/artifacts"

	lifeSketchTitle   = "Life Sketch"
	contributorsTitle = "Contributors"
)

// personDetails holds the documents fetched for one person besides its
// summary. A nil document was not requested or was absent.
type personDetails struct {
	sources  *records.SourcesResponse
	memories *records.MemoriesResponse
}

// applyPerson copies a person summary and its details into ind.
func applyPerson(g *entities.Graph, ind *entities.Individual, p *records.Person, d personDetails) {
	for i := range p.Names {
		n := &p.Names[i]
		name := convertName(g, n)
		switch {
		case n.Preferred:
			ind.Name = &name
		case n.Type == records.NameTypeNickname:
			ind.Nicknames = append(ind.Nicknames, name)
		case n.Type == records.NameTypeBirthName:
			ind.BirthNames = append(ind.BirthNames, name)
		case n.Type == records.NameTypeAlsoKnownAs:
			ind.AlsoKnownAs = append(ind.AlsoKnownAs, name)
		case n.Type == records.NameTypeMarriedName:
			ind.MarriedNames = append(ind.MarriedNames, name)
		}
	}

	if p.Gender != nil {
		switch p.Gender.Type {
		case records.GenderMale:
			ind.Gender = entities.GenderMale
		case records.GenderFemale:
			ind.Gender = entities.GenderFemale
		case records.GenderUnknown:
			ind.Gender = entities.GenderUnknown
		}
	}

	for i := range p.Facts {
		f := &p.Facts[i]
		if f.Type == entities.FactTypeLifeSketch {
			ind.AddNote(g.NewNote(titled(lifeSketchTitle, f.Value)))
			continue
		}
		if fact, ok := convertFact(g, f); ok {
			ind.AddFact(fact)
		}
	}

	if d.sources != nil {
		var refs []records.SourceReference
		if len(d.sources.Persons) > 0 {
			refs = d.sources.Persons[0].Sources
		}
		for _, cit := range citations(g, refs, d.sources.SourceDescriptions) {
			ind.AddCitation(cit)
		}
	}

	if d.memories != nil {
		for i := range d.memories.SourceDescriptions {
			applyMemory(g, ind, &d.memories.SourceDescriptions[i])
		}
	}
}

func convertName(g *entities.Graph, n *records.Name) entities.Name {
	var name entities.Name
	if len(n.NameForms) > 0 {
		for _, part := range n.NameForms[0].Parts {
			switch part.Type {
			case records.NamePartGiven:
				name.Given = part.Value
			case records.NamePartSurname:
				name.Surname = part.Value
			case records.NamePartPrefix:
				name.Prefix = part.Value
			case records.NamePartSuffix:
				name.Suffix = part.Value
			}
		}
	}
	if msg := n.Attribution.ChangeMessage; msg != "" {
		name.Note = g.NewNote(msg)
	}
	return name
}

// convertFact maps a remote fact. Facts of unknown type are dropped.
func convertFact(g *entities.Graph, f *records.Fact) (entities.Fact, bool) {
	var fact entities.Fact
	switch {
	case entities.CustomFactLabels[f.Type] != "":
		fact.Type = entities.CustomFactLabels[f.Type]
	case strings.HasPrefix(f.Type, entities.CustomFactPrefix):
		fact.Type = strings.TrimPrefix(f.Type, entities.CustomFactPrefix)
	case entities.FactTags[f.Type] != "":
		fact.Type = f.Type
	default:
		return entities.Fact{}, false
	}

	fact.Value = f.Value
	if f.Date != nil {
		fact.Date = f.Date.Original
	}
	if f.Place != nil {
		fact.Place = f.Place.Original
		if id, ok := strings.CutPrefix(f.Place.Description, "#"); ok {
			if c, found := g.Places[id]; found {
				fact.Map = &c
			}
		}
	}
	if msg := f.Attribution.ChangeMessage; msg != "" {
		fact.Note = g.NewNote(msg)
	}
	fact.MarkOccurred()
	return fact, true
}

// citations resolves source references against their descriptions,
// creating each source the first time its id is seen.
func citations(g *entities.Graph, refs []records.SourceReference, descs []records.SourceDescription) []entities.Citation {
	quotes := make(map[string]string, len(refs))
	for _, ref := range refs {
		quotes[ref.DescriptionID] = ref.Attribution.ChangeMessage
	}
	var out []entities.Citation
	for i := range descs {
		d := &descs[i]
		out = append(out, entities.Citation{
			Source: addSource(g, d),
			Quote:  quotes[d.ID],
		})
	}
	return out
}

// addSource returns the graph's source for d, filling it on creation.
func addSource(g *entities.Graph, d *records.SourceDescription) *entities.Source {
	src, created := g.AddSource(d.ID)
	if !created {
		return src
	}
	src.URL = strings.Replace(d.About, memoriesAPIPath, memoriesPublicURL, 1)
	if len(d.Citations) > 0 {
		src.Citation = d.Citations[0].Value
	}
	if len(d.Titles) > 0 {
		src.Title = d.Titles[0].Value
	}
	for _, n := range d.Notes {
		if n.Text != "" {
			src.AddNote(g.NewNote(n.Text))
		}
	}
	return src
}

// applyMemory turns a text memory into a note and a linked memory into a
// media reference.
func applyMemory(g *entities.Graph, ind *entities.Individual, d *records.SourceDescription) {
	if d.MediaType == records.MediaTypeText {
		var parts []string
		for _, v := range d.Titles {
			parts = append(parts, v.Value)
		}
		for _, v := range d.Descriptions {
			parts = append(parts, v.Value)
		}
		ind.AddNote(g.NewNote(strings.Join(parts, "\n")))
		return
	}
	if len(d.Links) == 0 {
		return
	}
	m := entities.MediaReference{URL: d.About}
	if len(d.Titles) > 0 {
		m.Description = d.Titles[0].Value
	}
	if len(d.Descriptions) > 0 {
		if m.Description != "" {
			m.Description += "\n"
		}
		m.Description += d.Descriptions[0].Value
	}
	ind.AddMedia(m)
}

func convertOrdinance(o *records.Ordinance) *entities.Ordinance {
	out := &entities.Ordinance{
		TempleCode: o.TempleCode,
		Status:     entities.OrdinanceStatusFromURI(o.Status),
	}
	if o.Date != nil {
		out.Date = o.Date.Formal
	}
	return out
}

// noteText renders a remote note as "=== subject ===\ntext\n".
func noteText(n records.Note) string {
	var b strings.Builder
	if n.Subject != "" {
		b.WriteString("=== " + n.Subject + " ===\n")
	}
	if n.Text != "" {
		b.WriteString(n.Text + "\n")
	}
	return b.String()
}

func titled(title, text string) string {
	return "=== " + title + " ===\n" + text
}

// contributorsText lists the unique contributor names of a change history,
// or returns "" when there are none.
func contributorsText(changes *records.ChangesResponse) string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range changes.Entries {
		for _, c := range e.Contributors {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return titled(contributorsTitle, strings.Join(names, "\n"))
}
