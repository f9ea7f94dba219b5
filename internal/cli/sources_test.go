package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mward/statingest/internal/store"
)

func TestSourcesCommandEmpty(t *testing.T) {
	dbPath := testDB(t)
	// Opening once creates the schema.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newSourcesCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "no sources registered")
}

func TestSourcesCommandTable(t *testing.T) {
	dbPath := testDB(t)
	registerTestSource(t, dbPath, store.Source{
		Code: "AREA_SUPPORT", Name: "Section 95 support by local authority",
		URL: "https://example.gov/area.xlsx", Kind: "xlsx", Tier: 1,
	})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: "https://example.gov/nat.csv", Kind: "csv", Tier: 2,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newSourcesCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "AREA_SUPPORT")
	assert.Contains(t, out, "NATIONALITY")
	assert.Contains(t, out, "quarterly")
	assert.Contains(t, out, "active")
}

func TestSourcesCommandStatusFilter(t *testing.T) {
	dbPath := testDB(t)
	registerTestSource(t, dbPath, store.Source{
		Code: "AREA_SUPPORT", Name: "Section 95 support by local authority",
		URL: "https://example.gov/area.xlsx", Kind: "xlsx", Tier: 1,
	})
	registerTestSource(t, dbPath, store.Source{
		Code: "LEGACY", Name: "Legacy feed",
		URL: "https://example.gov/old.csv", Kind: "csv", Tier: 3,
		Status: store.SourceDeprecated,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "text"}
	cmd := newSourcesCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--status", "active"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "AREA_SUPPORT")
	assert.NotContains(t, buf.String(), "LEGACY")
}

// The JSON listing for never-ingested sources is fully deterministic, so it
// is pinned as a golden file.
func TestSourcesCommandJSONGolden(t *testing.T) {
	dbPath := testDB(t)
	registerTestSource(t, dbPath, store.Source{
		Code: "AREA_SUPPORT", Name: "Section 95 support by local authority",
		URL: "https://example.gov/area.xlsx", Kind: "xlsx", Tier: 1,
	})
	registerTestSource(t, dbPath, store.Source{
		Code: "NATIONALITY", Name: "Support by nationality",
		URL: "https://example.gov/nat.csv", Kind: "csv", Tier: 2,
	})

	buf := &bytes.Buffer{}
	opts := &RootOptions{DBPath: dbPath, Format: "json"}
	cmd := newSourcesCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sources_json", buf.Bytes())
}
