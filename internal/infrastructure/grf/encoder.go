package grf

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

// Name TYPE values for non-preferred names.
const (
	nameTypeNickname    = "nickname"
	nameTypeBirth       = "birth"
	nameTypeAlsoKnownAs = "aka"
	nameTypeMarried     = "married"
)

// Encoder writes a graph as a GRF stream.
type Encoder struct {
	w   *bufio.Writer
	g   *entities.Graph
	err error
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Write encodes g to w.
func Write(w io.Writer, g *entities.Graph) error {
	return NewEncoder(w).Encode(g)
}

// Encode renumbers g and writes it in a fixed order: header, individuals,
// families, sources, notes, trailer. Each kind is ordered by identity and
// a note identity shared by several notes is written once. A reference is
// written only when its target exists in g.
func (e *Encoder) Encode(g *entities.Graph) error {
	e.g = g
	g.Renumber()

	e.header()
	for _, ind := range g.SortedIndividuals() {
		e.individual(ind)
	}
	for _, fam := range g.SortedFamilies() {
		e.family(fam)
	}
	for _, src := range g.SortedSources() {
		e.source(src)
	}
	previous := 0
	for _, n := range g.SortedNotes() {
		if n.Num == previous {
			continue
		}
		previous = n.Num
		e.note(n)
	}
	e.line(0, "", "TRLR", "")

	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *Encoder) line(level int, pointer, tag, value string) {
	if e.err != nil {
		return
	}
	head := strconv.Itoa(level) + " "
	if pointer != "" {
		head += pointer + " "
	}
	head += tag
	for _, l := range wrap(head, level+1, value) {
		if _, err := e.w.WriteString(l); err != nil {
			e.err = err
			return
		}
		if _, err := e.w.WriteString(terminator(l)); err != nil {
			e.err = err
			return
		}
	}
}

// terminator returns the line ending for l. The reader drops one carriage
// return before each newline, so data that itself ends in a carriage return
// gets a CRLF ending to keep it.
func terminator(l string) string {
	if strings.HasSuffix(l, "\r") {
		return "\r\n"
	}
	return "\n"
}

func (e *Encoder) header() {
	e.line(0, "", "HEAD", "")
	e.line(1, "", "CHAR", "UTF-8")
	e.line(1, "", "GEDC", "")
	e.line(2, "", "VERS", "5.5")
	e.line(2, "", "FORM", "LINEAGE-LINKED")
}

func (e *Encoder) individual(ind *entities.Individual) {
	e.line(0, formatRef('I', ind.Num), "INDI", "")
	if ind.Name != nil {
		e.name(*ind.Name, "")
	}
	for _, n := range ind.Nicknames {
		e.name(n, nameTypeNickname)
	}
	for _, n := range ind.BirthNames {
		e.name(n, nameTypeBirth)
	}
	for _, n := range ind.AlsoKnownAs {
		e.name(n, nameTypeAlsoKnownAs)
	}
	for _, n := range ind.MarriedNames {
		e.name(n, nameTypeMarried)
	}
	if ind.Gender != "" {
		e.line(1, "", "SEX", string(ind.Gender))
	}
	for _, f := range ind.Facts {
		e.fact(f)
	}
	for _, m := range ind.Media {
		e.line(1, "", "OBJE", "")
		e.line(2, "", "FORM", "URL")
		if m.Description != "" {
			e.line(2, "", "TITL", m.Description)
		}
		if m.URL != "" {
			e.line(2, "", "FILE", m.URL)
		}
	}
	e.ordinance("BAPL", ind.Baptism)
	e.ordinance("CONL", ind.Confirmation)
	e.ordinance("ENDL", ind.Endowment)
	e.ordinance("SLGC", ind.SealingChild)
	for _, num := range e.familyNums(ind.FamiliesAsSpouse) {
		e.line(1, "", "FAMS", formatRef('F', num))
	}
	for _, num := range e.familyNums(ind.FamiliesAsChild) {
		e.line(1, "", "FAMC", formatRef('F', num))
	}
	if !isLocalID(ind.ID) {
		e.line(1, "", "_FSFTID", ind.ID)
	}
	e.noteLinks(1, ind.Notes)
	e.citations(ind.Sources)
}

func (e *Encoder) name(n entities.Name, kind string) {
	value := n.Given + " /" + n.Surname + "/"
	if n.Suffix != "" {
		value += " " + n.Suffix
	}
	e.line(1, "", "NAME", value)
	if kind != "" {
		e.line(2, "", "TYPE", kind)
	}
	if n.Prefix != "" {
		e.line(2, "", "NPFX", n.Prefix)
	}
	if strings.Contains(n.Given+n.Surname+n.Suffix, "/") {
		e.line(2, "", "GIVN", n.Given)
		e.line(2, "", "SURN", n.Surname)
		e.line(2, "", "NSFX", n.Suffix)
	}
	if n.Note != nil {
		e.line(2, "", "NOTE", formatRef('N', n.Note.Num))
	}
}

func (e *Encoder) fact(f entities.Fact) {
	switch {
	case f.Tag() != "":
		e.line(1, "", f.Tag(), f.Value)
	case f.Type != "":
		e.line(1, "", "EVEN", "")
		e.line(2, "", "TYPE", f.Type)
		if f.Value != "" {
			e.line(2, "", "NOTE", descriptionPrefix+" "+f.Value)
		}
	default:
		return
	}
	if f.Date != "" {
		e.line(2, "", "DATE", f.Date)
	}
	if f.Place != "" || f.Map != nil {
		e.line(2, "", "PLAC", f.Place)
	}
	if f.Map != nil {
		e.line(3, "", "MAP", "")
		e.line(4, "", "LATI", f.Map.Latitude)
		e.line(4, "", "LONG", f.Map.Longitude)
	}
	if f.Note != nil {
		e.line(2, "", "NOTE", formatRef('N', f.Note.Num))
	}
}

func (e *Encoder) ordinance(tag string, o *entities.Ordinance) {
	if o == nil {
		return
	}
	e.line(1, "", tag, "")
	if o.Date != "" {
		e.line(2, "", "DATE", o.Date)
	}
	if o.TempleCode != "" {
		e.line(2, "", "TEMP", o.TempleCode)
	}
	if o.Status.IsValid() {
		e.line(2, "", "STAT", string(o.Status))
	}
	if o.Family != nil {
		if fam, ok := e.g.Families[*o.Family]; ok {
			e.line(2, "", "FAMC", formatRef('F', fam.Num))
		}
	}
}

func (e *Encoder) familyNums(keys map[entities.FamilyKey]struct{}) []int {
	nums := make([]int, 0, len(keys))
	for key := range keys {
		if fam, ok := e.g.Families[key]; ok {
			nums = append(nums, fam.Num)
		}
	}
	sort.Ints(nums)
	return nums
}

func (e *Encoder) noteLinks(level int, notes []*entities.Note) {
	seen := make(map[int]bool, len(notes))
	for _, n := range notes {
		if seen[n.Num] {
			continue
		}
		seen[n.Num] = true
		e.line(level, "", "NOTE", formatRef('N', n.Num))
	}
}

func (e *Encoder) citations(citations []entities.Citation) {
	for _, c := range citations {
		if c.Source == nil {
			continue
		}
		if _, ok := e.g.Sources[c.Source.ID]; !ok {
			continue
		}
		e.line(1, "", "SOUR", formatRef('S', c.Source.Num))
		if c.Quote != "" {
			e.line(2, "", "PAGE", c.Quote)
		}
	}
}

func (e *Encoder) family(fam *entities.Family) {
	e.line(0, formatRef('F', fam.Num), "FAM", "")
	if ind, ok := e.g.Individuals[fam.Key.Father]; ok && fam.Key.Father != "" {
		e.line(1, "", "HUSB", formatRef('I', ind.Num))
	}
	if ind, ok := e.g.Individuals[fam.Key.Mother]; ok && fam.Key.Mother != "" {
		e.line(1, "", "WIFE", formatRef('I', ind.Num))
	}
	children := make([]int, 0, len(fam.Children))
	for id := range fam.Children {
		if ind, ok := e.g.Individuals[id]; ok {
			children = append(children, ind.Num)
		}
	}
	sort.Ints(children)
	for _, num := range children {
		e.line(1, "", "CHIL", formatRef('I', num))
	}
	for _, f := range fam.Facts {
		e.fact(f)
	}
	e.ordinance("SLGS", fam.SealingSpouse)
	if fam.ID != "" {
		e.line(1, "", "_FSFTID", fam.ID)
	}
	e.noteLinks(1, fam.Notes)
	e.citations(fam.Sources)
}

func (e *Encoder) source(src *entities.Source) {
	e.line(0, formatRef('S', src.Num), "SOUR", "")
	if src.Title != "" {
		e.line(1, "", "TITL", src.Title)
	}
	if src.Citation != "" {
		e.line(1, "", "AUTH", src.Citation)
	}
	if src.URL != "" {
		e.line(1, "", "PUBL", src.URL)
	}
	e.noteLinks(1, src.Notes)
	if !isLocalID(src.ID) {
		e.line(1, "", "REFN", src.ID)
	}
}

func (e *Encoder) note(n *entities.Note) {
	e.line(0, formatRef('N', n.Num), "NOTE", n.Text)
}

// isLocalID reports whether id is empty or a file-local pointer assigned by
// the decoder for a record without an external id.
func isLocalID(id string) bool {
	_, ok := parseRef(id)
	return id == "" || ok
}
