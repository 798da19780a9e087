package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/domain/mocks"
	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/domain/records"
	"github.com/ersonp/famgraph/internal/domain/services"
	"github.com/ersonp/famgraph/internal/infrastructure/grf"
)

func ref(id string) *records.ResourceRef {
	return &records.ResourceRef{ResourceID: id}
}

func person(id, given, gender string) records.Person {
	return records.Person{
		ID: id,
		Names: []records.Name{{
			Preferred: true,
			NameForms: []records.NameForm{{Parts: []records.NamePart{
				{Type: records.NamePartGiven, Value: given},
				{Type: records.NamePartSurname, Value: "Lefebvre"},
			}}},
		}},
		Gender: &records.Gender{Type: gender},
	}
}

// smallTree serves the signed-in user X and X's parents F and M.
func smallTree() *mocks.Fetcher {
	f := mocks.NewFetcher()
	f.Set(records.CurrentUserPath, records.CurrentUserResponse{Users: []records.User{{PersonID: "X"}}})
	parents := []records.ChildAndParents{{Father: ref("F"), Mother: ref("M"), Child: ref("X")}}
	f.AddPerson(person("X", "Xavier", records.GenderMale), parents, nil)
	f.AddPerson(person("F", "Francois", records.GenderMale), parents, nil)
	f.AddPerson(person("M", "Marie", records.GenderFemale), parents, nil)
	f.Set(records.PersonNotesPath("M"), records.NotesResponse{Persons: []records.NoteHolder{{Notes: []records.Note{
		{Subject: "Origin", Text: "Born in Lille."},
	}}}})
	return f
}

func newFetchHandler(f *mocks.Fetcher, runs *mocks.RunLog) *FetchHandler {
	builder := services.NewBuildService(f)
	supplement := services.NewSupplementService(f, nil)
	h := NewFetchHandler(f, builder, supplement, runs, nil)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	h.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 2400 * time.Millisecond)
	}
	return h
}

func TestFetchHandler_Handle(t *testing.T) {
	f := smallTree()
	runs := mocks.NewRunLog()
	h := newFetchHandler(f, runs)
	var out bytes.Buffer
	var progress []string

	result, err := h.Handle(context.Background(), FetchOptions{Ancestors: 4, Workers: 2}, &out, func(msg string) {
		progress = append(progress, msg)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Downloading starting individuals...",
		"Downloading up to 4 generations of ancestors...",
		"Downloading notes...",
	}, progress)

	written, err := grf.Read(strings.NewReader(out.String()))
	require.NoError(t, err)
	assert.Len(t, written.Individuals, 3)
	assert.Len(t, written.Families, 1)
	require.Len(t, written.Individuals["M"].Notes, 1)
	assert.Equal(t, "=== Origin ===\nBorn in Lille.", written.Individuals["M"].Notes[0].Text)

	require.Len(t, runs.Runs, 1)
	run := runs.Runs[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "fetch", run.Command)
	assert.Equal(t, []string{"X"}, run.Seeds)
	assert.Equal(t, 3, run.Individuals)
	assert.Equal(t, 1, run.Families)
	assert.Equal(t, 1, run.Notes)
	assert.Equal(t, f.Requests(), run.Requests)
	assert.Same(t, run, result.Run)

	assert.Equal(t,
		"Downloaded 3 individuals, 1 families, 0 sources and 1 notes in 2 seconds with "+
			fmt.Sprint(f.Requests())+" HTTP requests.",
		result.Summary())
}

func TestFetchHandler_ExplicitSeedsSkipCurrentUser(t *testing.T) {
	f := smallTree()
	h := newFetchHandler(f, nil)
	var out bytes.Buffer

	result, err := h.Handle(context.Background(), FetchOptions{Seeds: []string{"M"}, Workers: 1}, &out, nil)

	require.NoError(t, err)
	assert.Zero(t, f.Count(records.CurrentUserPath))
	assert.Equal(t, 1, result.Run.Individuals)
	assert.Contains(t, out.String(), "1 _FSFTID M")
}

func TestFetchHandler_RestrictedOrdinances(t *testing.T) {
	f := smallTree()
	f.Fail(records.PersonOrdinancesPath("X"), ports.ErrRestricted)
	h := newFetchHandler(f, nil)
	var progress []string

	result, err := h.Handle(context.Background(), FetchOptions{Ordinances: true, Contributors: true, Workers: 2}, &bytes.Buffer{}, func(msg string) {
		progress = append(progress, msg)
	})

	require.NoError(t, err)
	assert.True(t, result.OrdinancesDisabled)
	assert.Contains(t, progress, "Downloading notes, ordinances and contributors...")
}

func TestFetchHandler_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	tests := []struct {
		name    string
		setup   func(f *mocks.Fetcher)
		errMsg  string
		isError error
	}{
		{
			name:    "current user fails",
			setup:   func(f *mocks.Fetcher) { f.Fail(records.CurrentUserPath, boom) },
			errMsg:  "fetching current user",
			isError: boom,
		},
		{
			name:    "no current person",
			setup:   func(f *mocks.Fetcher) { delete(f.Documents, records.CurrentUserPath) },
			isError: services.ErrNoCurrentPerson,
		},
		{
			name:    "starting individuals fail",
			setup:   func(f *mocks.Fetcher) { f.Fail(records.PersonsPath([]string{"X"}), boom) },
			errMsg:  "downloading starting individuals",
			isError: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := smallTree()
			tt.setup(f)
			runs := mocks.NewRunLog()
			h := newFetchHandler(f, runs)
			var out bytes.Buffer

			_, err := h.Handle(context.Background(), FetchOptions{Ancestors: 1, Workers: 1}, &out, nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.isError)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			assert.Empty(t, out.String(), "nothing is written on failure")
			assert.Zero(t, runs.SaveRunCallCount)
		})
	}
}

func TestFetchHandler_RunLogFailureKeepsResult(t *testing.T) {
	f := smallTree()
	runs := mocks.NewRunLog()
	runs.Err = errors.New("database is locked")
	h := newFetchHandler(f, runs)

	result, err := h.Handle(context.Background(), FetchOptions{Workers: 1}, &bytes.Buffer{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, runs.SaveRunCallCount)
	assert.Equal(t, 1, result.Run.Individuals)
}

func TestFetchHandler_Cancelled(t *testing.T) {
	h := newFetchHandler(smallTree(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Handle(ctx, FetchOptions{Seeds: []string{"X"}}, &bytes.Buffer{}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchResult_SummaryRoundsSeconds(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &FetchResult{Run: &entities.Run{
		Individuals: 10, Families: 4, Sources: 2, Notes: 7, Requests: 31,
		StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
	}}

	assert.Equal(t, "Downloaded 10 individuals, 4 families, 2 sources and 7 notes in 2 seconds with 31 HTTP requests.", r.Summary())
}
