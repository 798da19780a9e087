// Package grf reads and writes family graphs in the leveled GRF text format.
package grf

import (
	"io"
	"strings"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

const descriptionPrefix = "Description:"

// Decoder reads a GRF stream into a graph.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode parses the whole stream.
//
// The first pass builds a raw tree of records whose cross-references are
// still file-local integers. The second pass maps those integers to
// external ids and family keys once every record is known, so references
// may point forward. References that never resolve are dropped and unknown
// tags are skipped.
func (d *Decoder) Decode() (*entities.Graph, error) {
	records, err := parseRecords(newScanner(d.r))
	if err != nil {
		return nil, err
	}
	r := newResolver(records)
	r.index()
	r.interpret()
	return r.g, nil
}

// Read decodes a single GRF stream.
func Read(r io.Reader) (*entities.Graph, error) {
	return NewDecoder(r).Decode()
}

// resolver holds the file-local identity tables.
type resolver struct {
	g        *entities.Graph
	records  []*node
	people   map[int]*entities.Individual
	families map[int]entities.FamilyKey
	sources  map[int]*entities.Source
	notes    map[int]*entities.Note
}

func newResolver(records []*node) *resolver {
	return &resolver{
		g:        entities.NewGraph(),
		records:  records,
		people:   make(map[int]*entities.Individual),
		families: make(map[int]entities.FamilyKey),
		sources:  make(map[int]*entities.Source),
		notes:    make(map[int]*entities.Note),
	}
}

// index registers every record under its file identity.
func (r *resolver) index() {
	for _, rec := range r.records {
		num, ok := parseRef(rec.pointer)
		if !ok {
			continue
		}
		switch rec.tag {
		case "INDI":
			if _, dup := r.people[num]; dup {
				continue
			}
			id := rec.childValue("_FSFTID")
			if id == "" {
				id = rec.pointer
			}
			r.people[num] = r.g.InsertIndividual(id, num)
		case "SOUR":
			if _, dup := r.sources[num]; dup {
				continue
			}
			id := rec.childValue("REFN")
			if id == "" {
				id = rec.pointer
			}
			r.sources[num], _ = r.g.InsertSource(id, num)
		case "NOTE":
			if _, dup := r.notes[num]; dup {
				continue
			}
			r.notes[num] = r.g.InsertNote(num, rec.value)
		}
	}

	// Family keys need every individual's external id.
	for _, rec := range r.records {
		num, ok := parseRef(rec.pointer)
		if !ok || rec.tag != "FAM" {
			continue
		}
		if _, dup := r.families[num]; dup {
			continue
		}
		var key entities.FamilyKey
		if ind := r.person(rec.childValue("HUSB")); ind != nil {
			key.Father = ind.ID
		}
		if ind := r.person(rec.childValue("WIFE")); ind != nil {
			key.Mother = ind.ID
		}
		r.g.InsertFamily(key, num)
		r.families[num] = key
	}
}

func (r *resolver) interpret() {
	for _, rec := range r.records {
		num, ok := parseRef(rec.pointer)
		if !ok {
			continue
		}
		switch rec.tag {
		case "INDI":
			r.individual(rec, r.people[num])
		case "FAM":
			r.family(rec, r.g.Families[r.families[num]])
		case "SOUR":
			r.source(rec, r.sources[num])
		}
	}
}

func (r *resolver) person(token string) *entities.Individual {
	num, ok := parseRef(token)
	if !ok {
		return nil
	}
	return r.people[num]
}

func (r *resolver) familyRef(token string) (entities.FamilyKey, bool) {
	num, ok := parseRef(token)
	if !ok {
		return entities.FamilyKey{}, false
	}
	key, ok := r.families[num]
	return key, ok
}

// note resolves a NOTE line: a reference to a NOTE record, or inline text.
func (r *resolver) note(n *node) *entities.Note {
	if num, ok := parseRef(n.value); ok {
		return r.notes[num]
	}
	if strings.TrimSpace(n.value) == "" {
		return nil
	}
	return r.g.NewNote(n.value)
}

func (r *resolver) citation(n *node) (entities.Citation, bool) {
	num, ok := parseRef(n.value)
	if !ok {
		return entities.Citation{}, false
	}
	src, ok := r.sources[num]
	if !ok {
		return entities.Citation{}, false
	}
	return entities.Citation{Source: src, Quote: n.childValue("PAGE")}, true
}

func (r *resolver) individual(rec *node, ind *entities.Individual) {
	for _, c := range rec.children {
		switch c.tag {
		case "NAME":
			r.name(c, ind)
		case "SEX":
			ind.Gender = entities.Gender(c.value)
		case "BAPL":
			ind.Baptism = r.ordinance(c)
		case "CONL":
			ind.Confirmation = r.ordinance(c)
		case "ENDL":
			ind.Endowment = r.ordinance(c)
		case "SLGC":
			ind.SealingChild = r.ordinance(c)
		case "FAMS":
			if key, ok := r.familyRef(c.value); ok {
				ind.AddFamilyAsSpouse(key)
			}
		case "FAMC":
			if key, ok := r.familyRef(c.value); ok {
				ind.AddFamilyAsChild(key)
			}
		case "NOTE":
			if n := r.note(c); n != nil {
				ind.AddNote(n)
			}
		case "SOUR":
			if cit, ok := r.citation(c); ok {
				ind.AddCitation(cit)
			}
		case "OBJE":
			ind.AddMedia(entities.MediaReference{
				Description: c.childValue("TITL"),
				URL:         c.childValue("FILE"),
			})
		default:
			if entities.IsFactTag(c.tag) {
				if f, ok := r.fact(c); ok {
					ind.AddFact(f)
				}
			}
		}
	}
}

func (r *resolver) name(n *node, ind *entities.Individual) {
	name := parseName(n.value)
	var kind string
	for _, c := range n.children {
		switch c.tag {
		case "TYPE":
			kind = c.value
		case "NPFX":
			name.Prefix = c.value
		case "GIVN":
			name.Given = c.value
		case "SURN":
			name.Surname = c.value
		case "NSFX":
			name.Suffix = c.value
		case "NOTE":
			name.Note = r.note(c)
		case "NICK":
			ind.Nicknames = append(ind.Nicknames, entities.Name{Given: c.value})
		}
	}

	switch kind {
	case nameTypeNickname:
		ind.Nicknames = append(ind.Nicknames, name)
	case nameTypeBirth:
		ind.BirthNames = append(ind.BirthNames, name)
	case nameTypeAlsoKnownAs:
		ind.AlsoKnownAs = append(ind.AlsoKnownAs, name)
	case nameTypeMarried:
		ind.MarriedNames = append(ind.MarriedNames, name)
	default:
		if ind.Name == nil {
			ind.Name = &name
		} else {
			ind.BirthNames = append(ind.BirthNames, name)
		}
	}
}

// parseName splits "given /surname/ suffix". Names whose parts contain a
// slash also carry GIVN, SURN and NSFX lines, which take precedence.
func parseName(value string) entities.Name {
	parts := strings.Split(value, "/")
	name := entities.Name{Given: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		name.Surname = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		name.Suffix = strings.TrimSpace(strings.Join(parts[2:], "/"))
	}
	return name
}

func (r *resolver) fact(n *node) (entities.Fact, bool) {
	var f entities.Fact
	if n.tag != "EVEN" {
		f.Type = entities.FactTypes[n.tag]
		f.Value = n.value
	}
	for _, c := range n.children {
		switch c.tag {
		case "TYPE":
			if n.tag == "EVEN" {
				f.Type = c.value
			}
		case "DATE":
			f.Date = c.value
		case "PLAC":
			f.Place = c.value
			if m := c.child("MAP"); m != nil {
				f.Map = coordinates(m)
			}
		case "MAP":
			f.Map = coordinates(c)
		case "NOTE":
			if desc, ok := strings.CutPrefix(c.value, descriptionPrefix); ok {
				f.Value = strings.TrimPrefix(desc, " ")
				continue
			}
			f.Note = r.note(c)
		}
	}
	return f, f.Type != ""
}

func coordinates(n *node) *entities.Coordinates {
	c := entities.Coordinates{
		Latitude:  n.childValue("LATI"),
		Longitude: n.childValue("LONG"),
	}
	if c.Latitude == "" && c.Longitude == "" {
		return nil
	}
	return &c
}

func (r *resolver) ordinance(n *node) *entities.Ordinance {
	o := &entities.Ordinance{}
	for _, c := range n.children {
		switch c.tag {
		case "DATE":
			o.Date = c.value
		case "TEMP":
			o.TempleCode = c.value
		case "STAT":
			o.Status = entities.OrdinanceStatus(c.value)
		case "FAMC":
			if key, ok := r.familyRef(c.value); ok {
				o.Family = &key
			}
		}
	}
	return o
}

func (r *resolver) family(rec *node, fam *entities.Family) {
	for _, c := range rec.children {
		switch c.tag {
		case "HUSB", "WIFE":
			// resolved into the key during indexing
		case "CHIL":
			if ind := r.person(c.value); ind != nil {
				fam.AddChild(ind.ID)
			}
		case "SLGS":
			fam.SealingSpouse = r.ordinance(c)
		case "_FSFTID":
			fam.ID = c.value
		case "NOTE":
			if n := r.note(c); n != nil {
				fam.AddNote(n)
			}
		case "SOUR":
			if cit, ok := r.citation(c); ok {
				fam.AddCitation(cit)
			}
		default:
			if entities.IsFactTag(c.tag) {
				if f, ok := r.fact(c); ok {
					fam.AddFact(f)
				}
			}
		}
	}
}

func (r *resolver) source(rec *node, src *entities.Source) {
	for _, c := range rec.children {
		switch c.tag {
		case "TITL":
			src.Title = c.value
		case "AUTH":
			src.Citation = c.value
		case "PUBL":
			src.URL = c.value
		case "NOTE":
			if n := r.note(c); n != nil {
				src.AddNote(n)
			}
		}
	}
}
