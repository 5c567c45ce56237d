package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func twoModelLedger() *Ledger {
	return &Ledger{
		Dates: []string{"2026-08-28", "2026-08-29"},
		Models: []*Entity{
			{Name: "Alpha", Company: "Acme", Scores: []*float64{f(81.2), f(82.0)}},
			{Name: "Beta", Scores: []*float64{nil, f(75.5)}},
		},
	}
}

func TestResolveDateSlotAppend(t *testing.T) {
	l := twoModelLedger()

	idx, replace := l.ResolveDateSlot("2026-08-30")
	assert.Equal(t, 2, idx)
	assert.False(t, replace)
	assert.Len(t, l.Dates, 3)

	// Every existing history gained an absent slot.
	for _, m := range l.Models {
		require.Len(t, m.Scores, 3)
		assert.Nil(t, m.Scores[2])
	}
}

func TestResolveDateSlotReplace(t *testing.T) {
	l := twoModelLedger()

	idx, replace := l.ResolveDateSlot("2026-08-29")
	assert.Equal(t, 1, idx)
	assert.True(t, replace)
	assert.Len(t, l.Dates, 2, "same-day rerun must not grow the date axis")
}

func TestResolveDateSlotPadsShortHistories(t *testing.T) {
	l := twoModelLedger()
	l.Models[1].Scores = l.Models[1].Scores[:1]

	_, _ = l.ResolveDateSlot("2026-08-29")
	assert.Len(t, l.Models[1].Scores, 2)
}

func TestAddEntityBackfillsAbsent(t *testing.T) {
	l := twoModelLedger()

	e, err := l.AddEntity("Gamma", "NewCo")
	require.NoError(t, err)
	require.Len(t, e.Scores, 2)
	assert.Nil(t, e.Scores[0])
	assert.Nil(t, e.Scores[1])

	_, err = l.AddEntity("Gamma", "")
	assert.Error(t, err, "duplicate names must be rejected")

	_, err = l.AddEntity("", "")
	assert.Error(t, err)
}

func TestRecomputeRanks(t *testing.T) {
	l := &Ledger{
		Dates: []string{"2026-08-30"},
		Models: []*Entity{
			{Name: "Alpha", Scores: []*float64{f(75.0)}, SourceCount: 2},
			{Name: "Beta", Scores: []*float64{f(75.0)}, SourceCount: 2},
			{Name: "Gamma", Scores: []*float64{f(90.0)}, SourceCount: 1},
			{Name: "Delta", Scores: []*float64{nil}, SourceCount: 3},
		},
	}

	l.RecomputeRanks(0, 2)

	// Gamma misses the gate, Delta has no score today.
	assert.Equal(t, 1, l.Find("Alpha").Rank, "tie broken by roster order")
	assert.Equal(t, 2, l.Find("Beta").Rank)
	assert.Equal(t, 0, l.Find("Gamma").Rank)
	assert.Equal(t, 0, l.Find("Delta").Rank)
}

func TestValidate(t *testing.T) {
	l := twoModelLedger()
	require.NoError(t, l.Validate())

	t.Run("misaligned history", func(t *testing.T) {
		bad := twoModelLedger()
		bad.Models[0].Scores = bad.Models[0].Scores[:1]
		err := bad.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("duplicate name", func(t *testing.T) {
		bad := twoModelLedger()
		bad.Models[1].Name = "Alpha"
		assert.ErrorIs(t, bad.Validate(), ErrCorrupt)
	})

	t.Run("empty name", func(t *testing.T) {
		bad := twoModelLedger()
		bad.Models[0].Name = ""
		assert.ErrorIs(t, bad.Validate(), ErrCorrupt)
	})
}

func TestDigestCanonicalFormat(t *testing.T) {
	models := []*Entity{
		{Name: "Alpha", Scores: []*float64{f(88), nil}},
		{Name: "Beta", Scores: []*float64{f(75.46), f(60.5)}},
	}

	// Whole numbers render with one decimal, absent slots as "null";
	// fractional scores round to one decimal in the canonical string.
	d1 := Digest(models)
	d2 := Digest(models)
	assert.Equal(t, d1, d2, "digest must be a pure function of the entities")
	assert.Len(t, d1, 64)

	t.Run("score mutation changes digest", func(t *testing.T) {
		models[1].Scores[1] = f(60.6)
		assert.NotEqual(t, d1, Digest(models))
		models[1].Scores[1] = f(60.5)
		assert.Equal(t, d1, Digest(models))
	})

	t.Run("name mutation changes digest", func(t *testing.T) {
		models[0].Name = "Alpha2"
		assert.NotEqual(t, d1, Digest(models))
		models[0].Name = "Alpha"
	})

	t.Run("absence differs from zero", func(t *testing.T) {
		withNull := Digest([]*Entity{{Name: "X", Scores: []*float64{nil}}})
		withZero := Digest([]*Entity{{Name: "X", Scores: []*float64{f(0)}}})
		assert.NotEqual(t, withNull, withZero)
	})
}

func TestStampAndVerify(t *testing.T) {
	l := twoModelLedger()
	l.Stamp()
	require.NoError(t, l.VerifyChecksum())

	l.Models[0].Scores[0] = f(99.9)
	err := l.VerifyChecksum()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
}
