package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// File reads measurements from a local JSON file holding a flat
// {"model name": value} object. Used for feeds delivered out of band and
// for boards replayed from archived data.
type File struct {
	name string
	path string
}

// NewFile creates a file-backed provider.
func NewFile(name, path string) *File {
	return &File{name: name, path: path}
}

func (f *File) Name() string { return f.name }

func (f *File) Fetch(ctx context.Context) (map[string]float64, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s file %s: %w", f.name, f.path, err)
	}

	var values map[string]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s file %s: %w", f.name, f.path, err)
	}
	return values, nil
}

// Static serves a fixed value map, for fixtures and regression boards.
type Static struct {
	name   string
	values map[string]float64
}

// NewStatic creates a fixed-map provider.
func NewStatic(name string, values map[string]float64) *Static {
	return &Static{name: name, values: values}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Fetch(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
