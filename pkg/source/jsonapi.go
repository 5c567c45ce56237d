package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// JSONAPI reads a leaderboard published as a JSON array of objects,
// extracting one name field and one numeric value field per entry.
type JSONAPI struct {
	client     *http.Client
	name       string
	url        string
	nameField  string
	valueField string
}

// NewJSONAPI creates a JSON endpoint provider.
func NewJSONAPI(name, url, nameField, valueField string) *JSONAPI {
	if nameField == "" {
		nameField = "model"
	}
	if valueField == "" {
		valueField = "score"
	}
	return &JSONAPI{
		client:     &http.Client{Timeout: 30 * time.Second},
		name:       name,
		url:        url,
		nameField:  nameField,
		valueField: valueField,
	}
}

func (j *JSONAPI) Name() string { return j.name }

func (j *JSONAPI) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", j.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trainingrun/1.0")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", j.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s status %d", j.name, resp.StatusCode)
	}

	var entries []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", j.name, err)
	}

	values := make(map[string]float64)
	for _, e := range entries {
		name, _ := e[j.nameField].(string)
		if name == "" {
			continue
		}
		if v, ok := asNumber(e[j.valueField]); ok {
			values[name] = v
		}
	}
	return values, nil
}

// asNumber accepts the numeric encodings JSON leaderboards actually use:
// numbers, and numbers shipped as strings.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
