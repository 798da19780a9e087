// Package records contains the decoded documents returned by the remote
// family tree source.
package records

import "encoding/json"

// MaxPersons is the largest number of ids accepted by one persons request.
const MaxPersons = 200

// Type URIs used by the source.
const (
	TypeCouple = "http://gedcomx.org/Couple"

	NameTypeNickname    = "http://gedcomx.org/Nickname"
	NameTypeBirthName   = "http://gedcomx.org/BirthName"
	NameTypeAlsoKnownAs = "http://gedcomx.org/AlsoKnownAs"
	NameTypeMarriedName = "http://gedcomx.org/MarriedName"

	NamePartGiven   = "http://gedcomx.org/Given"
	NamePartSurname = "http://gedcomx.org/Surname"
	NamePartPrefix  = "http://gedcomx.org/Prefix"
	NamePartSuffix  = "http://gedcomx.org/Suffix"

	GenderMale    = "http://gedcomx.org/Male"
	GenderFemale  = "http://gedcomx.org/Female"
	GenderUnknown = "http://gedcomx.org/Unknown"

	OrdinanceBaptism       = "http://lds.org/Baptism"
	OrdinanceConfirmation  = "http://lds.org/Confirmation"
	OrdinanceEndowment     = "http://lds.org/Endowment"
	OrdinanceSealingChild  = "http://lds.org/SealingChildToParents"
	OrdinanceSealingSpouse = "http://lds.org/SealingToSpouse"

	MediaTypeText = "text/plain"
)

// ResourceRef points to another resource by id.
type ResourceRef struct {
	ResourceID string `json:"resourceId"`
}

// ID returns the referenced id, or "" for a nil reference.
func (r *ResourceRef) ID() string {
	if r == nil {
		return ""
	}
	return r.ResourceID
}

// Attribution carries the contributor's change message.
type Attribution struct {
	ChangeMessage string `json:"changeMessage,omitempty"`
}

// Date is a date as originally recorded plus its normalized form.
type Date struct {
	Original string `json:"original,omitempty"`
	Formal   string `json:"formal,omitempty"`
}

// PlaceRef is a fact's place. Description is "#<place id>" when the place
// is resolved in the response's place table.
type PlaceRef struct {
	Original    string `json:"original,omitempty"`
	Description string `json:"description,omitempty"`
}

// Fact is a recorded event or attribute.
type Fact struct {
	Type        string      `json:"type"`
	Value       string      `json:"value,omitempty"`
	Date        *Date       `json:"date,omitempty"`
	Place       *PlaceRef   `json:"place,omitempty"`
	Attribution Attribution `json:"attribution"`
}

// NamePart is one typed part of a name form.
type NamePart struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NameForm is one rendering of a name.
type NameForm struct {
	Parts []NamePart `json:"parts,omitempty"`
}

// Name is a person's name.
type Name struct {
	Type        string      `json:"type,omitempty"`
	Preferred   bool        `json:"preferred"`
	NameForms   []NameForm  `json:"nameForms"`
	Attribution Attribution `json:"attribution"`
}

// Gender of a person.
type Gender struct {
	Type string `json:"type"`
}

// SourceReference cites a source description.
type SourceReference struct {
	DescriptionID string      `json:"descriptionId"`
	Attribution   Attribution `json:"attribution"`
}

// EvidenceReference points to attached evidence such as memories.
type EvidenceReference struct {
	ID string `json:"id"`
}

// Person is one person summary from a persons batch.
type Person struct {
	ID       string              `json:"id"`
	Names    []Name              `json:"names,omitempty"`
	Gender   *Gender             `json:"gender,omitempty"`
	Facts    []Fact              `json:"facts,omitempty"`
	Sources  []SourceReference   `json:"sources,omitempty"`
	Evidence []EvidenceReference `json:"evidence,omitempty"`
}

// Place is a resolved place. Coordinates keep their literal text.
type Place struct {
	ID        string      `json:"id"`
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

// ChildAndParents links a child to up to two parents.
type ChildAndParents struct {
	Father *ResourceRef `json:"father,omitempty"`
	Mother *ResourceRef `json:"mother,omitempty"`
	Child  *ResourceRef `json:"child,omitempty"`
}

// Relationship is a relationship between two persons.
type Relationship struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Person1 *ResourceRef      `json:"person1,omitempty"`
	Person2 *ResourceRef      `json:"person2,omitempty"`
	Facts   []Fact            `json:"facts,omitempty"`
	Sources []SourceReference `json:"sources,omitempty"`
}

// PersonsResponse is the document for a persons batch.
type PersonsResponse struct {
	Persons                      []Person          `json:"persons"`
	Places                       []Place           `json:"places,omitempty"`
	ChildAndParentsRelationships []ChildAndParents `json:"childAndParentsRelationships,omitempty"`
	Relationships                []Relationship    `json:"relationships,omitempty"`
}

// TextValue is a localized text value.
type TextValue struct {
	Value string `json:"value"`
}

// Link is a hypermedia link.
type Link struct {
	Href string `json:"href,omitempty"`
}

// Note is a note on a person or relationship.
type Note struct {
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text,omitempty"`
}

// SourceDescription describes a source or a memory.
type SourceDescription struct {
	ID           string          `json:"id"`
	About        string          `json:"about,omitempty"`
	MediaType    string          `json:"mediaType,omitempty"`
	Citations    []TextValue     `json:"citations,omitempty"`
	Titles       []TextValue     `json:"titles,omitempty"`
	Descriptions []TextValue     `json:"descriptions,omitempty"`
	Notes        []Note          `json:"notes,omitempty"`
	Links        map[string]Link `json:"links,omitempty"`
}

// SourceHolder is a person or relationship listing its source references.
type SourceHolder struct {
	Sources []SourceReference `json:"sources,omitempty"`
}

// SourcesResponse is the sources document of a person or relationship.
type SourcesResponse struct {
	Persons            []SourceHolder      `json:"persons,omitempty"`
	Relationships      []SourceHolder      `json:"relationships,omitempty"`
	SourceDescriptions []SourceDescription `json:"sourceDescriptions"`
}

// MemoriesResponse is a person's memories document.
type MemoriesResponse struct {
	SourceDescriptions []SourceDescription `json:"sourceDescriptions,omitempty"`
}

// NoteHolder is a person or relationship listing its notes.
type NoteHolder struct {
	Notes []Note `json:"notes,omitempty"`
}

// NotesResponse is the notes document of a person or relationship.
type NotesResponse struct {
	Persons       []NoteHolder `json:"persons,omitempty"`
	Relationships []NoteHolder `json:"relationships,omitempty"`
}

// Ordinance is a temple ordinance.
type Ordinance struct {
	Type       string       `json:"type"`
	Date       *Date        `json:"date,omitempty"`
	TempleCode string       `json:"templeCode,omitempty"`
	Status     string       `json:"status,omitempty"`
	Father     *ResourceRef `json:"father,omitempty"`
	Mother     *ResourceRef `json:"mother,omitempty"`
	Spouse     *ResourceRef `json:"spouse,omitempty"`
}

// OrdinanceHolder is a person with its ordinances.
type OrdinanceHolder struct {
	Ordinances []Ordinance `json:"ordinances,omitempty"`
}

// OrdinancesResponse is a person's ordinances document.
type OrdinancesResponse struct {
	Persons []OrdinanceHolder `json:"persons"`
}

// Contributor is the author of a change.
type Contributor struct {
	Name string `json:"name"`
}

// ChangeEntry is one change in a change history.
type ChangeEntry struct {
	Contributors []Contributor `json:"contributors,omitempty"`
}

// ChangesResponse is the change history of a person or relationship.
type ChangesResponse struct {
	Entries []ChangeEntry `json:"entries"`
}

// RelationshipsResponse is a couple relationship document.
type RelationshipsResponse struct {
	Relationships []Relationship `json:"relationships"`
}

// User is the signed-in user.
type User struct {
	PersonID          string `json:"personId"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
}

// CurrentUserResponse is the current user document.
type CurrentUserResponse struct {
	Users []User `json:"users"`
}
