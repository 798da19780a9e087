// Package entities contains core domain data structures.
package entities

import "strings"

// OccurredValue marks an event that is known to have happened but has
// neither a date nor a place.
const OccurredValue = "Y"

// Coordinates is a resolved latitude/longitude pair, kept as text so the
// values survive serialization unchanged.
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Fact represents a typed life event or attribute.
// Type is either a known fact type URI (see FactTags) or a free-form label
// for custom events.
type Fact struct {
	Type  string       `json:"type"`
	Value string       `json:"value,omitempty"`
	Date  string       `json:"date,omitempty"`
	Place string       `json:"place,omitempty"`
	Map   *Coordinates `json:"map,omitempty"`
	Note  *Note        `json:"-"`
}

// Tag returns the record tag for a known fact type, or "" for a custom event.
func (f Fact) Tag() string {
	return FactTags[f.Type]
}

// IsCustom reports whether the fact is a labelled custom event.
func (f Fact) IsCustom() bool {
	return f.Type != "" && f.Tag() == ""
}

// MarkOccurred collapses an occurrence-only event into the presence sentinel.
func (f *Fact) MarkOccurred() {
	if !occurrenceTypes[f.Type] {
		return
	}
	if f.Value == "" && f.Date == "" && f.Place == "" {
		f.Value = OccurredValue
	}
}

// Equal reports whether two facts carry the same content.
// Notes are compared by text because merged graphs never share note objects.
func (f Fact) Equal(o Fact) bool {
	if f.Type != o.Type || f.Value != o.Value || f.Date != o.Date || f.Place != o.Place {
		return false
	}
	if (f.Map == nil) != (o.Map == nil) {
		return false
	}
	if f.Map != nil && *f.Map != *o.Map {
		return false
	}
	return noteText(f.Note) == noteText(o.Note)
}

// AppendFact appends f unless an equal fact is already present.
func AppendFact(facts []Fact, f Fact) []Fact {
	for _, existing := range facts {
		if existing.Equal(f) {
			return facts
		}
	}
	return append(facts, f)
}

// IsFactTag reports whether tag names a fact record.
func IsFactTag(tag string) bool {
	_, ok := FactTypes[tag]
	return ok || tag == "EVEN"
}

func noteText(n *Note) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}
