package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mward/statingest/internal/store"
)

// testDB creates an empty database file path under a per-test temp dir.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "statingest.db")
}

// registerTestSource opens the database out-of-band and registers a source
// descriptor, the way the seed command would.
func registerTestSource(t *testing.T, dbPath string, src store.Source) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	if src.Cadence == "" {
		src.Cadence = "quarterly"
	}
	if src.Status == "" {
		src.Status = store.SourceActive
	}
	require.NoError(t, st.UpsertSource(context.Background(), src))
}

// fixtureHTTP serves fixed payloads by path.
func fixtureHTTP(t *testing.T, payloads map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const testNationalityCSV = "Date,Nationality,People supported\n" +
	"2023-03-31,Afghanistan,\"12,000\"\n" +
	"2023-03-31,Iran,\"8,000\"\n"
