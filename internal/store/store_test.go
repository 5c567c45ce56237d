package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solosevn/trainingrun/pkg/ledger"
)

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	led := &ledger.Ledger{}
	idx, _ := led.ResolveDateSlot("2026-08-30")

	a, err := led.AddEntity("Alpha One", "alphalab")
	require.NoError(t, err)
	b, err := led.AddEntity("Beta Two", "betalab")
	require.NoError(t, err)

	sa, sb := 91.5, 84.0
	require.NoError(t, led.SetScore(a, idx, &sa))
	require.NoError(t, led.SetScore(b, idx, &sb))
	a.SourceCount = 3
	b.SourceCount = 2
	led.RecomputeRanks(idx, 2)
	led.Stamp()
	return led
}

func TestLedgerFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	led := sampleLedger(t)

	require.NoError(t, SaveLedger(path, led))

	got, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, led.Dates, got.Dates)
	assert.Equal(t, led.Checksum, got.Checksum)
	require.Len(t, got.Models, 2)
	assert.Equal(t, "Alpha One", got.Models[0].Name)
	assert.Equal(t, 1, got.Models[0].Rank)
}

func TestSaveLedgerLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, SaveLedger(path, sampleLedger(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "board.json", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestVerifyLedgerDetectsTamper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	led := sampleLedger(t)
	require.NoError(t, SaveLedger(path, led))

	require.NoError(t, VerifyLedger(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), "91.5", "99.5", 1)
	require.NotEqual(t, string(data), tampered)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	assert.Error(t, VerifyLedger(path))
}

func TestLoadLedgerRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dates":["2026-08-30"],"models":[{"name":""}]}`), 0o644))

	_, err := LoadLedger(path)
	assert.ErrorIs(t, err, ledger.ErrCorrupt)
}

func TestArchiveRecordsRuns(t *testing.T) {
	arch, err := OpenArchive(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer arch.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	id, err := arch.RecordRun(ctx, &RunRecord{
		Board:      "trs",
		RunDate:    "2026-08-30",
		Mode:       "append",
		Qualified:  2,
		Total:      3,
		Digest:     "abc123",
		Status:     "ok",
		StartedAt:  now,
		FinishedAt: now,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	require.NoError(t, arch.RecordMeasurements(ctx, id, []Measurement{
		{Source: "arena", Category: "human_preference", RawName: "Alpha-One", ResolvedName: "Alpha One", Value: 1302},
		{Source: "arena", Category: "human_preference", RawName: "Mystery", ResolvedName: "", Value: 1200},
	}))

	runs, err := arch.RecentRuns(ctx, "trs", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "abc123", runs[0].Digest)
	assert.Equal(t, 2, runs[0].Qualified)

	ms, err := arch.RunMeasurements(ctx, id)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Alpha One", ms[0].ResolvedName)
	assert.Empty(t, ms[1].ResolvedName)

	// Board filter excludes other boards.
	runs, err = arch.RecentRuns(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
