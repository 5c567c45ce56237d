package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Claude Opus 4.6", "Claude Opus 4.6"},
		{"🆕 Claude Opus 4.6", "Claude Opus 4.6"},
		{"anthropic/claude-opus-4-6", "claude-opus-4-6"},
		{"Qwen3-Coder 480B/A35B Instruct", "Qwen3-Coder 480B/A35B Instruct"},
		{"gpt-4.5-preview (scratchpad)", "gpt-4.5-preview"},
		{"DeepSeek-R1 (Zero Shot)", "DeepSeek-R1"},
		{"  GPT-4o  ", "GPT-4o"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.in), "CleanName(%q)", tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"claude-opus-4-6", "claude opus 4.6"},
		{"GPT_4 Turbo", "gpt 4 turbo"},
		{"DeepSeek V3", "deepseek 3"},
		{"Grok 4.20", "grok 4.20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "NormalizeName(%q)", tt.in)
	}
}

func testResolver() *Resolver {
	return NewResolver(
		[]string{"Claude Opus 4.6", "GPT-5.2", "Gemini 3 Pro", "DeepSeek R1"},
		map[string]string{
			"opus 4.6":    "Claude Opus 4.6",
			"gpt-5-codex": "GPT-5.2",
		},
	)
}

func TestResolveExactCleaned(t *testing.T) {
	r := testResolver()

	name, ok := r.Resolve("claude opus 4.6")
	require.True(t, ok)
	assert.Equal(t, "Claude Opus 4.6", name)

	name, ok = r.Resolve("🔥 GPT-5.2")
	require.True(t, ok)
	assert.Equal(t, "GPT-5.2", name)
}

func TestResolveAlias(t *testing.T) {
	r := testResolver()

	name, ok := r.Resolve("Opus 4.6")
	require.True(t, ok)
	assert.Equal(t, "Claude Opus 4.6", name)

	name, ok = r.Resolve("GPT-5-CODEX")
	require.True(t, ok)
	assert.Equal(t, "GPT-5.2", name)
}

func TestResolveSubstring(t *testing.T) {
	r := testResolver()

	// "gemini 3 pro preview" contains the normalized roster form.
	name, ok := r.Resolve("Gemini 3 Pro Preview")
	require.True(t, ok)
	assert.Equal(t, "Gemini 3 Pro", name)
}

func TestResolveTokenOverlap(t *testing.T) {
	r := testResolver()

	// No containment, but normalized tokens share {deepseek, r1}.
	name, ok := r.Resolve("R1-DeepSeek Distill")
	require.True(t, ok)
	assert.Equal(t, "DeepSeek R1", name)
}

func TestResolveNoMatch(t *testing.T) {
	r := testResolver()

	for _, raw := range []string{"Falcon 180B", "", "   "} {
		_, ok := r.Resolve(raw)
		assert.False(t, ok, "expected no match for %q", raw)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := testResolver()

	first, firstOK := r.Resolve("deepseek r1 distill")
	for i := 0; i < 100; i++ {
		got, ok := r.Resolve("deepseek r1 distill")
		require.Equal(t, firstOK, ok)
		require.Equal(t, first, got)
	}
}

func TestCanonicalize(t *testing.T) {
	r := testResolver()

	assert.Equal(t, "Claude Opus 4.6", r.Canonicalize("opus 4.6"))
	assert.Equal(t, "Falcon 180B", r.Canonicalize("✅ Falcon 180B"))
}

func TestNearest(t *testing.T) {
	r := testResolver()

	name, dist := r.Nearest("claude opus 4.5")
	assert.Equal(t, "Claude Opus 4.6", name)
	assert.Equal(t, 1, dist)

	empty := NewResolver(nil, nil)
	_, dist = empty.Nearest("anything")
	assert.Equal(t, -1, dist)
}

func TestDiscoveryGuard(t *testing.T) {
	d := NewDiscovery(2)

	d.Observe("Falcon 180B", "arena", "human_preference", 1280)
	assert.Empty(t, d.Candidates(), "one source is below the guard")

	// Same source again does not count twice.
	d.Observe("Falcon 180B", "arena", "human_preference", 1290)
	assert.Empty(t, d.Candidates())

	d.Observe("Falcon 180B", "swebench", "coding", 41.5)
	cands := d.Candidates()
	require.Len(t, cands, 1)
	assert.Equal(t, "Falcon 180B", cands[0].Name)
	assert.Equal(t, 2, cands[0].Sources)

	// First value per category wins.
	assert.Equal(t, 1280.0, cands[0].Values["human_preference"])
	assert.Equal(t, 41.5, cands[0].Values["coding"])
}

func TestDiscoveryDeterministicOrder(t *testing.T) {
	d := NewDiscovery(1)
	d.Observe("Zeta", "a", "c1", 1)
	d.Observe("Alpha", "a", "c1", 1)
	d.Observe("Mid", "a", "c1", 1)

	cands := d.Candidates()
	require.Len(t, cands, 3)
	assert.Equal(t, "Alpha", cands[0].Name)
	assert.Equal(t, "Mid", cands[1].Name)
	assert.Equal(t, "Zeta", cands[2].Name)
}
