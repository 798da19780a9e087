package entities

import "strings"

// Note is a free-text node shared by reference between entities.
// Two notes with equal Num are the same node when serialized.
type Note struct {
	Num  int    `json:"num"`
	Text string `json:"text"`
}

// NormalizeNoteText trims surrounding whitespace from note text.
func NormalizeNoteText(text string) string {
	return strings.TrimSpace(text)
}

// Source is a cited source description.
type Source struct {
	Num      int     `json:"num"`
	ID       string  `json:"id"`
	URL      string  `json:"url,omitempty"`
	Citation string  `json:"citation,omitempty"`
	Title    string  `json:"title,omitempty"`
	Notes    []*Note `json:"-"`
}

// AddNote attaches n unless it is already attached.
func (s *Source) AddNote(n *Note) {
	s.Notes = AppendNote(s.Notes, n)
}

// Citation pairs a source with the quote that cites it.
type Citation struct {
	Source *Source
	Quote  string
}

// MediaReference points to an attached media item.
type MediaReference struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// AppendNote appends n unless the same note is already present.
func AppendNote(notes []*Note, n *Note) []*Note {
	if n == nil {
		return notes
	}
	for _, existing := range notes {
		if existing == n {
			return notes
		}
	}
	return append(notes, n)
}

// AppendCitation appends c unless the same source and quote are present.
func AppendCitation(citations []Citation, c Citation) []Citation {
	if c.Source == nil {
		return citations
	}
	for _, existing := range citations {
		if existing.Source == c.Source && existing.Quote == c.Quote {
			return citations
		}
	}
	return append(citations, c)
}

// AppendMedia appends m unless an identical reference is present.
func AppendMedia(media []MediaReference, m MediaReference) []MediaReference {
	for _, existing := range media {
		if existing == m {
			return media
		}
	}
	return append(media, m)
}
