package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/solosevn/trainingrun/pkg/ledger"
)

// LoadLedger reads and structurally validates a board's dataset.
// A failed validation is fatal for the run, reported, never repaired.
func LoadLedger(path string) (*ledger.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var l ledger.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &l, nil
}

// SaveLedger writes a board's dataset atomically: the serialized document
// goes to a temp file in the same directory, which then replaces the
// target. A failure at any step leaves the previous version intact.
func SaveLedger(path string, l *ledger.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace ledger %s: %w", path, err)
	}
	return nil
}

// VerifyLedger is the dataset self-test: re-read the persisted document,
// re-check the alignment invariants, and recompute the integrity digest
// against the stored one.
func VerifyLedger(path string) error {
	l, err := LoadLedger(path)
	if err != nil {
		return err
	}
	if err := l.VerifyChecksum(); err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	return nil
}
