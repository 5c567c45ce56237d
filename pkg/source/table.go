package source

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Table scrapes a leaderboard published as an HTML table. The first table
// whose header row matches the configured hints is parsed; the name and
// score columns are located by substring match against the hints, falling
// back to columns 0 and 1.
type Table struct {
	client     *http.Client
	name       string
	url        string
	nameHints  []string
	scoreHints []string
}

// NewTable creates an HTML table provider.
func NewTable(name, url string, nameHints, scoreHints []string) *Table {
	if len(nameHints) == 0 {
		nameHints = []string{"model", "name"}
	}
	if len(scoreHints) == 0 {
		scoreHints = []string{"score", "%"}
	}
	return &Table{
		client:     &http.Client{Timeout: 30 * time.Second},
		name:       name,
		url:        url,
		nameHints:  nameHints,
		scoreHints: scoreHints,
	}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", t.name, err)
	}
	req.Header.Set("User-Agent", "trainingrun/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s status %d", t.name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s html: %w", t.name, err)
	}

	return t.parse(doc), nil
}

// parse walks every table in the document and returns the rows of the
// first one that yields any values.
func (t *Table) parse(doc *goquery.Document) map[string]float64 {
	var values map[string]float64

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		var headers []string
		rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
		})

		nameCol := findColumn(headers, t.nameHints, 0)
		scoreCol := findColumn(headers, t.scoreHints, 1)

		parsed := make(map[string]float64)
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() <= nameCol || cells.Length() <= scoreCol {
				return
			}

			name := strings.TrimSpace(cells.Eq(nameCol).Text())
			if name == "" {
				return
			}

			v, ok := parseValue(cells.Eq(scoreCol).Text())
			if !ok {
				return
			}
			parsed[name] = v
		})

		if len(parsed) > 0 {
			values = parsed
			return false
		}
		return true
	})

	if values == nil {
		return map[string]float64{}
	}
	return values
}

func findColumn(headers, hints []string, fallback int) int {
	for i, h := range headers {
		for _, hint := range hints {
			if strings.Contains(h, hint) {
				return i
			}
		}
	}
	return fallback
}

// parseValue converts a cell to a number, tolerating percent signs and
// thousands separators. Anything else is skipped, not an error.
func parseValue(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
