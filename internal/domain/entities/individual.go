package entities

// Gender of an individual. The empty value means not recorded.
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "U"
)

// Name is one form of an individual's name.
type Name struct {
	Given   string `json:"given"`
	Surname string `json:"surname"`
	Prefix  string `json:"prefix,omitempty"`
	Suffix  string `json:"suffix,omitempty"`
	Note    *Note  `json:"-"`
}

// Equal reports whether two names carry the same content.
func (n Name) Equal(o Name) bool {
	return n.Given == o.Given && n.Surname == o.Surname &&
		n.Prefix == o.Prefix && n.Suffix == o.Suffix &&
		noteText(n.Note) == noteText(o.Note)
}

// UnionNames adds the names of in to into as a multiset union: a name
// ends up as many times as the larger of its counts in the two groups.
func UnionNames(into, in []Name) []Name {
	var seen []Name
	for _, n := range in {
		seen = append(seen, n)
		if countName(into, n) < countName(seen, n) {
			into = append(into, n)
		}
	}
	return into
}

func countName(names []Name, n Name) int {
	count := 0
	for _, existing := range names {
		if existing.Equal(n) {
			count++
		}
	}
	return count
}

// SpouseLink is a couple relationship seen from either partner.
type SpouseLink struct {
	Person1        string
	Person2        string
	RelationshipID string
}

// Key returns the family key the couple would be filed under.
func (s SpouseLink) Key() FamilyKey {
	return FamilyKey{Father: s.Person1, Mother: s.Person2}
}

// Trio is a child-and-parents relationship.
type Trio struct {
	Father string
	Mother string
	Child  string
}

// Key returns the parents' family key.
func (t Trio) Key() FamilyKey {
	return FamilyKey{Father: t.Father, Mother: t.Mother}
}

// Individual is a person in the family graph.
//
// Parents, Spouses and Children are working sets filled while the graph
// grows. FamiliesAsChild and FamiliesAsSpouse are the committed edges that
// get serialized.
type Individual struct {
	Num    int
	ID     string
	Name   *Name
	Gender Gender

	Nicknames    []Name
	BirthNames   []Name
	AlsoKnownAs  []Name
	MarriedNames []Name

	Facts        []Fact
	Baptism      *Ordinance
	Confirmation *Ordinance
	Endowment    *Ordinance
	SealingChild *Ordinance

	Notes   []*Note
	Sources []Citation
	Media   []MediaReference

	Parents  map[FamilyKey]struct{}
	Spouses  map[SpouseLink]struct{}
	Children map[Trio]struct{}

	FamiliesAsChild  map[FamilyKey]struct{}
	FamiliesAsSpouse map[FamilyKey]struct{}
}

func newIndividual(id string, num int) *Individual {
	return &Individual{
		Num:              num,
		ID:               id,
		Parents:          make(map[FamilyKey]struct{}),
		Spouses:          make(map[SpouseLink]struct{}),
		Children:         make(map[Trio]struct{}),
		FamiliesAsChild:  make(map[FamilyKey]struct{}),
		FamiliesAsSpouse: make(map[FamilyKey]struct{}),
	}
}

// AddNote attaches n unless it is already attached.
func (i *Individual) AddNote(n *Note) {
	i.Notes = AppendNote(i.Notes, n)
}

// AddCitation attaches a source citation.
func (i *Individual) AddCitation(c Citation) {
	i.Sources = AppendCitation(i.Sources, c)
}

// AddFact attaches f unless an equal fact is present.
func (i *Individual) AddFact(f Fact) {
	i.Facts = AppendFact(i.Facts, f)
}

// AddMedia attaches a media reference.
func (i *Individual) AddMedia(m MediaReference) {
	i.Media = AppendMedia(i.Media, m)
}

// AddFamilyAsChild records membership as a child of the family.
func (i *Individual) AddFamilyAsChild(key FamilyKey) {
	i.FamiliesAsChild[key] = struct{}{}
}

// AddFamilyAsSpouse records membership as a partner of the family.
func (i *Individual) AddFamilyAsSpouse(key FamilyKey) {
	i.FamiliesAsSpouse[key] = struct{}{}
}
