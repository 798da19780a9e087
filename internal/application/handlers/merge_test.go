package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/famgraph/internal/domain/services"
	"github.com/ersonp/famgraph/internal/infrastructure/grf"
)

const mothersFile = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Anne /Roy/
1 SEX F
1 _FSFTID AAAA-111
1 NOTE @N1@
0 @N1@ NOTE Shared story
0 TRLR
`

const sonsFile = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Paul /Roy/
1 SEX M
1 FAMC @F1@
1 _FSFTID BBBB-222
1 NOTE @N1@
0 @I2@ INDI
1 NAME Anne /Roy/
1 FAMS @F1@
1 _FSFTID AAAA-111
0 @F1@ FAM
1 WIFE @I2@
1 CHIL @I1@
0 @N1@ NOTE Shared story
0 TRLR
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMergeHandler_Handle(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeInput(t, dir, "anne.grf", mothersFile),
		writeInput(t, dir, "paul.grf", sonsFile),
	}
	h := NewMergeHandler(services.NewMergeService(nil))
	var out bytes.Buffer

	result, err := h.Handle(context.Background(), paths, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Inputs)
	assert.Equal(t, 2, result.Stats.Individuals)
	assert.Equal(t, 1, result.Stats.Families)

	merged, err := grf.Read(strings.NewReader(out.String()))
	require.NoError(t, err)
	require.Len(t, merged.Individuals, 2)
	require.Len(t, merged.Notes, 1, "notes with equal text are written once")
	anne := merged.Individuals["AAAA-111"]
	paul := merged.Individuals["BBBB-222"]
	require.Len(t, anne.Notes, 1)
	require.Len(t, paul.Notes, 1)
	assert.Same(t, anne.Notes[0], paul.Notes[0])
	assert.Equal(t, 1, strings.Count(out.String(), "NOTE Shared story"))
}

func TestMergeHandler_HandleReaders(t *testing.T) {
	h := NewMergeHandler(services.NewMergeService(nil))
	var out bytes.Buffer

	result, err := h.HandleReaders(context.Background(), []io.Reader{strings.NewReader(sonsFile)}, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inputs)
	assert.True(t, strings.HasPrefix(out.String(), "0 HEAD\n"))
	assert.True(t, strings.HasSuffix(out.String(), "0 TRLR\n"))
}

func TestMergeHandler_Errors(t *testing.T) {
	dir := t.TempDir()
	h := NewMergeHandler(services.NewMergeService(nil))

	t.Run("missing file", func(t *testing.T) {
		_, err := h.Handle(context.Background(), []string{filepath.Join(dir, "nope.grf")}, io.Discard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening file")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeInput(t, dir, "bad.grf", "0 HEAD\nx INDI\n")
		_, err := h.Handle(context.Background(), []string{path}, io.Discard)
		require.Error(t, err)
		assert.ErrorIs(t, err, grf.ErrSyntax)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("malformed stream", func(t *testing.T) {
		_, err := h.HandleReaders(context.Background(), []io.Reader{strings.NewReader("x HEAD\n")}, io.Discard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading input 1")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.Handle(ctx, []string{writeInput(t, dir, "ok.grf", mothersFile)}, io.Discard)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("write failure", func(t *testing.T) {
		_, err := h.HandleReaders(context.Background(), []io.Reader{strings.NewReader(mothersFile)}, failingWriter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "writing merged graph")
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
