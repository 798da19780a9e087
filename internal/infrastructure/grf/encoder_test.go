package grf

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/famgraph/internal/domain/entities"
)

const smallFamily = `0 HEAD
1 CHAR UTF-8
1 GEDC
2 VERS 5.5
2 FORM LINEAGE-LINKED
0 @I1@ INDI
1 NAME Pierre /Martin/
1 SEX M
1 FAMS @F1@
1 _FSFTID AAAA-111
1 NOTE @N1@
0 @I2@ INDI
1 NAME Marie /Durand/
1 SEX F
1 FAMS @F1@
1 _FSFTID BBBB-222
0 @I3@ INDI
1 NAME Jean /Martin/
1 BIRT
2 DATE 1 JAN 1921
2 PLAC Lyon
1 FAMC @F1@
1 _FSFTID CCCC-333
1 SOUR @S1@
2 PAGE p. 4
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 NOTE @N1@
0 @S1@ SOUR
1 TITL Census
1 REFN SRC-1
0 @N1@ NOTE shared
0 TRLR
`

func buildSmallFamily() *entities.Graph {
	g := entities.NewGraph()
	father := g.AddIndividual("AAAA-111")
	father.Name = &entities.Name{Given: "Pierre", Surname: "Martin"}
	father.Gender = entities.GenderMale
	mother := g.AddIndividual("BBBB-222")
	mother.Name = &entities.Name{Given: "Marie", Surname: "Durand"}
	mother.Gender = entities.GenderFemale
	child := g.AddIndividual("CCCC-333")
	child.Name = &entities.Name{Given: "Jean", Surname: "Martin"}
	child.AddFact(entities.Fact{Type: entities.FactTypeBirth, Date: "1 JAN 1921", Place: "Lyon"})

	g.AddTrio("AAAA-111", "BBBB-222", "CCCC-333")

	src, _ := g.AddSource("SRC-1")
	src.Title = "Census"
	child.AddCitation(entities.Citation{Source: src, Quote: "p. 4"})

	note := g.NewNote("shared")
	father.AddNote(note)
	g.Families[entities.FamilyKey{Father: "AAAA-111", Mother: "BBBB-222"}].AddNote(note)
	return g
}

func TestEncoder_Layout(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, buildSmallFamily()))

	assert.Equal(t, smallFamily, buf.String())
}

func TestEncoder_SharedNoteIdentityWrittenOnce(t *testing.T) {
	g := entities.NewGraph()
	ind := g.AddIndividual("AAAA-111")
	first := g.InsertNote(4, "same text")
	second := g.InsertNote(4, "same text")
	ind.AddNote(first)
	ind.AddNote(second)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "0 @N1@ NOTE same text"))
	assert.Equal(t, 1, strings.Count(out, "1 NOTE @N1@"))
	assert.NotContains(t, out, "@N2@")
}

func TestEncoder_OnlyReferencesExistingRecords(t *testing.T) {
	g := entities.NewGraph()
	child := g.AddIndividual("CCCC-333")
	g.AddIndividual("AAAA-111")
	g.AddTrio("AAAA-111", "MISSING-1", "CCCC-333")
	child.AddFamilyAsChild(entities.FamilyKey{Father: "GONE-1"})
	child.SealingChild = &entities.Ordinance{
		Status: entities.OrdinanceStatus("BOGUS"),
		Family: &entities.FamilyKey{Father: "GONE-1"},
	}
	orphan := &entities.Source{Num: 9, ID: "NOT-IN-GRAPH"}
	child.AddCitation(entities.Citation{Source: orphan})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	out := buf.String()

	assert.Contains(t, out, "1 HUSB @I2@")
	assert.NotContains(t, out, "WIFE")
	assert.Equal(t, 1, strings.Count(out, "1 FAMC @F1@"))
	assert.Contains(t, out, "1 SLGC\n1 FAMC")
	assert.NotContains(t, out, "STAT")
	assert.NotContains(t, out, "SOUR")
}

func TestEncoder_CustomEventAndCoordinates(t *testing.T) {
	g := entities.NewGraph()
	ind := g.AddIndividual("AAAA-111")
	ind.AddFact(entities.Fact{
		Type:  "Stillborn",
		Value: "yes",
		Place: "Brest",
		Map:   &entities.Coordinates{Latitude: "N48.39", Longitude: "W4.49"},
	})
	ind.AddFact(entities.Fact{Type: entities.FactTypeDeath, Value: entities.OccurredValue})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	assert.Contains(t, buf.String(), `1 EVEN
2 TYPE Stillborn
2 NOTE Description: yes
2 PLAC Brest
3 MAP
4 LATI N48.39
4 LONG W4.49
1 DEAT Y
`)
}

func TestEncoder_LocalIDsAreNotWritten(t *testing.T) {
	g := decode(t, "0 @I7@ INDI\n1 NAME A /B/\n0 @S2@ SOUR\n1 TITL T\n0 TRLR\n")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	assert.NotContains(t, buf.String(), "_FSFTID")
	assert.NotContains(t, buf.String(), "REFN")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncoder_PropagatesWriteError(t *testing.T) {
	g := buildSmallFamily()

	err := Write(failingWriter{}, g)

	assert.EqualError(t, err, "disk full")
}
