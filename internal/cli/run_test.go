package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mward/statingest/internal/store"
)

func TestRunCommandIngestsSource(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{"/nat.csv": []byte(testNationalityCSV)})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/nat.csv", Kind: "csv", Tier: 2,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"NATIONALITY"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "NATIONALITY: completed: 2 processed, 2 inserted")
}

func TestRunCommandNoChangesOnSecondPass(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{"/nat.csv": []byte(testNationalityCSV)})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/nat.csv", Kind: "csv", Tier: 2,
	})

	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	for _, want := range []string{"completed: 2 processed", "completed (no changes)"} {
		buf := &bytes.Buffer{}
		cmd := newRunCommand(opts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"NATIONALITY"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), want)
	}
}

func TestRunCommandUnknownSource(t *testing.T) {
	dbPath := testDB(t)
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: "http://unused.invalid/nat.csv", Kind: "csv", Tier: 2,
	})

	stderr := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newRunCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"MISSING"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), "MISSING")
}

func TestRunCommandFetchFailureExitsNonZero(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{}) // everything 404s
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/gone.csv", Kind: "csv", Tier: 2,
	})

	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newRunCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"NATIONALITY"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// The failed attempt still lands on the ledger.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(context.Background(), "NATIONALITY", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunFailed, runs[0].Status)
}

func TestRunCommandJSONFormat(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{"/nat.csv": []byte(testNationalityCSV)})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/nat.csv", Kind: "csv", Tier: 2,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "json"}
	cmd := newRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"NATIONALITY"})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NATIONALITY", data["source_code"])
	assert.Equal(t, float64(2), data["records_processed"])
}

func TestRunAllCommandIsolatesFailures(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{"/good.csv": []byte(testNationalityCSV)})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/good.csv", Kind: "csv", Tier: 2,
	})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONAL_SUMMARY", Name: "National summary",
		URL: srv.URL + "/missing.html", Kind: "html", Tier: 1,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newRunAllCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "NATIONALITY: completed")
	assert.Contains(t, buf.String(), "NATIONAL_SUMMARY: failed")
	assert.Contains(t, buf.String(), "batch: 1 succeeded, 1 failed")
}

func TestRunAllCommandTierFilter(t *testing.T) {
	dbPath := testDB(t)
	srv := fixtureHTTP(t, map[string][]byte{"/good.csv": []byte(testNationalityCSV)})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: srv.URL + "/good.csv", Kind: "csv", Tier: 2,
	})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONAL_SUMMARY", Name: "National summary",
		URL: srv.URL + "/missing.html", Kind: "html", Tier: 1,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newRunAllCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--tier", "2"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "batch: 1 succeeded, 0 failed")
	assert.NotContains(t, buf.String(), "NATIONAL_SUMMARY")
}
