package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/famgraph/internal/infrastructure/config"
	"github.com/ersonp/famgraph/internal/infrastructure/grf"
)

func TestValidateIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{name: "none", ids: nil},
		{name: "valid", ids: []string{"KWQS-BBQ", "L1ZX-9P2"}},
		{name: "lower case", ids: []string{"kwqs-bbq"}, wantErr: true},
		{name: "too long", ids: []string{"KWQS-BBQQ"}, wantErr: true},
		{name: "missing dash", ids: []string{"KWQSBBQ"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateIDs(tt.ids)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid FamilySearch ID")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestApplyFetchFlags(t *testing.T) {
	cmd := newFetchCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-a", "2", "-m", "-c", "-t", "15", "-l", "fetch.log"}))
	var flags fetchFlags
	flags.ancestors, _ = cmd.Flags().GetInt("ancestors")
	flags.spouses, _ = cmd.Flags().GetBool("marriages")
	flags.ordinances, _ = cmd.Flags().GetBool("ordinances")
	flags.timeout, _ = cmd.Flags().GetInt("timeout")
	flags.logFile, _ = cmd.Flags().GetString("log")
	cfg := config.Default()
	cfg.Fetch.Descendants = 3

	applyFetchFlags(cmd, cfg, flags)

	assert.Equal(t, 2, cfg.Fetch.Ancestors)
	assert.Equal(t, 3, cfg.Fetch.Descendants, "unset flags keep the config value")
	assert.True(t, cfg.Fetch.Spouses)
	assert.True(t, cfg.Fetch.Ordinances)
	assert.False(t, cfg.Fetch.Contributors)
	assert.Equal(t, 15, cfg.Source.TimeoutSeconds)
	assert.Equal(t, "fetch.log", cfg.Log.File)
}

// fakeSource serves a one-person tree and counts persons requests.
func fakeSource(t *testing.T, persons *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/platform/users/current.json":
			w.Write([]byte(`{"users":[{"personId":"KWQS-BBQ"}]}`))
		case "/platform/tree/persons.json":
			persons.Add(1)
			w.Write([]byte(`{"persons":[{"id":"KWQS-BBQ","names":[{"preferred":true,"nameForms":[{"parts":[` +
				`{"type":"http://gedcomx.org/Given","value":"Louise"},` +
				`{"type":"http://gedcomx.org/Surname","value":"Girard"}]}]}],` +
				`"gender":{"type":"http://gedcomx.org/Female"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	globalConfig = ""
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFetchCommand_EndToEnd(t *testing.T) {
	var persons atomic.Int32
	srv := fakeSource(t, &persons)
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("FAMGRAPH_SOURCE_BASE_URL", srv.URL)
	t.Setenv("FAMGRAPH_SOURCE_SESSION_ID", "session-1")

	_, stderr, err := execute(t, "fetch", "-o", "tree.grf")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Downloading starting individuals...")
	assert.Contains(t, stderr, "Downloaded 1 individuals, 0 families, 0 sources and 0 notes in")

	data, err := os.ReadFile(filepath.Join(dir, "tree.grf"))
	require.NoError(t, err)
	g, err := grf.Read(bytes.NewReader(data))
	require.NoError(t, err)
	require.Contains(t, g.Individuals, "KWQS-BBQ")
	assert.Equal(t, "Louise", g.Individuals["KWQS-BBQ"].Name.Given)

	_, _, err = execute(t, "fetch", "-i", "KWQS-BBQ", "-o", "again.grf")
	require.NoError(t, err)
	assert.EqualValues(t, 1, persons.Load(), "the second run is served from the cache")

	stdout, _, err := execute(t, "runs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "REQUESTS")
	assert.Contains(t, lines[1], "KWQS-BBQ")
}

func TestFetchCommand_RequiresSession(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FAMGRAPH_SOURCE_SESSION_ID", "")

	_, _, err := execute(t, "fetch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id")
}

func TestFetchCommand_InvalidID(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{name: "flag", args: []string{"fetch", "-i", "nope"}},
		{name: "space separated", args: []string{"fetch", "-i", "KWQS-BBQ", "nope"}},
		{name: "argument", args: []string{"fetch", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid FamilySearch ID: nope")
		})
	}
}

func TestMergeCommand(t *testing.T) {
	first := "0 HEAD\n0 @I1@ INDI\n1 NAME Jean /Girard/\n1 _FSFTID L1ZX-9P2\n0 TRLR\n"
	second := "0 HEAD\n0 @I1@ INDI\n1 NAME Jean /Girard/\n1 _FSFTID L1ZX-9P2\n" +
		"0 @I2@ INDI\n1 NAME Anne /Girard/\n1 _FSFTID M5QR-7TZ\n0 TRLR\n"

	tests := []struct {
		name string
		args []string
	}{
		{name: "comma separated", args: []string{"merge", "-i", "a.grf,b.grf"}},
		{name: "repeated flag", args: []string{"merge", "-i", "a.grf", "-i", "b.grf"}},
		{name: "space separated", args: []string{"merge", "-i", "a.grf", "b.grf"}},
		{name: "arguments only", args: []string{"merge", "a.grf", "b.grf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			require.NoError(t, os.WriteFile("a.grf", []byte(first), 0644))
			require.NoError(t, os.WriteFile("b.grf", []byte(second), 0644))

			stdout, _, err := execute(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(stdout, " INDI\n"))
			assert.Equal(t, 1, strings.Count(stdout, "1 _FSFTID L1ZX-9P2"))
			assert.Contains(t, stdout, "1 _FSFTID M5QR-7TZ")
		})
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("FAMGRAPH_SOURCE_SESSION_ID", "secret")

	stdout, _, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, config.ConfigFilePath(dir))

	stdout, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "base_url: https://www.familysearch.org")
	assert.NotContains(t, stdout, "secret")

	_, _, err = execute(t, "config", "init")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
