package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaderboardHTML = `
<html><body>
<table>
  <tr><td>nothing here</td></tr>
</table>
<table>
  <tr><th>Rank</th><th>Model</th><th>Resolve Rate</th></tr>
  <tr><td>1</td><td>Claude Opus 4.6</td><td>74.5%</td></tr>
  <tr><td>2</td><td>GPT-5.2</td><td>71.2%</td></tr>
  <tr><td>3</td><td>Mystery</td><td>n/a</td></tr>
  <tr><td>4</td><td></td><td>50.0</td></tr>
  <tr><td>5</td><td>Large Corp Model</td><td>1,234</td></tr>
</table>
</body></html>`

func TestTableParse(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(leaderboardHTML))
	require.NoError(t, err)

	tbl := NewTable("swebench", "http://unused", []string{"model"}, []string{"resolve", "%"})
	values := tbl.parse(doc)

	require.Len(t, values, 3)
	assert.Equal(t, 74.5, values["Claude Opus 4.6"])
	assert.Equal(t, 71.2, values["GPT-5.2"])
	assert.Equal(t, 1234.0, values["Large Corp Model"], "thousands separators stripped")
	_, ok := values["Mystery"]
	assert.False(t, ok, "non-numeric cells are skipped")
}

func TestTableFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(leaderboardHTML))
	}))
	defer srv.Close()

	tbl := NewTable("swebench", srv.URL, nil, []string{"resolve"})
	values, err := tbl.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 74.5, values["Claude Opus 4.6"])
}

func TestTableFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tbl := NewTable("swebench", srv.URL, nil, nil)
	_, err := tbl.Fetch(context.Background())
	assert.Error(t, err)
}

func TestJSONAPIFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"model": "Claude Opus 4.6", "elo": 1410},
			{"model": "GPT-5.2", "elo": "1395.5"},
			{"model": "NoScore"},
			{"elo": 1200}
		]`))
	}))
	defer srv.Close()

	api := NewJSONAPI("arena", srv.URL, "model", "elo")
	values, err := api.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, values, 2)
	assert.Equal(t, 1410.0, values["Claude Opus 4.6"])
	assert.Equal(t, 1395.5, values["GPT-5.2"], "string-encoded numbers accepted")
}

func TestFileFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Alpha": 80, "Beta": 40}`), 0o644))

	src := NewFile("manual", path)
	values, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Alpha": 80, "Beta": 40}, values)

	_, err = NewFile("manual", filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.Error(t, err)
}

type failingSource struct{ name string }

func (f failingSource) Name() string { return f.name }
func (f failingSource) Fetch(ctx context.Context) (map[string]float64, error) {
	return nil, errors.New("unreachable")
}

func TestCollectFailuresAreData(t *testing.T) {
	sources := []Source{
		NewStatic("fixture", map[string]float64{"Alpha": 2.0}),
		failingSource{name: "flaky"},
		NewStatic("empty", nil),
	}

	results := Collect(context.Background(), "cost", true, sources)
	require.Len(t, results, 3)

	assert.False(t, results[0].Unavailable())
	assert.Equal(t, "cost", results[0].Category)
	assert.True(t, results[0].LowerIsBetter)

	assert.True(t, results[1].Unavailable())
	assert.Error(t, results[1].Err)

	assert.True(t, results[2].Unavailable(), "empty map means unavailable today")
	assert.NoError(t, results[2].Err)
}
