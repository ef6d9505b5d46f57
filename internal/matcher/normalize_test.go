package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Will BITCOIN Rally", "will bitcoin rally"},
		{"strips punctuation", "Will Bitcoin reach $100k?", "will bitcoin reach 100k"},
		{"collapses whitespace", "fed   rate\tcut", "fed rate cut"},
		{"trims", "  election night  ", "election night"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Will Bitcoin reach $100,000 by Dec 31, 2025?",
		"Fed rate cut in Q1?",
		"  messy   INPUT!!  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestTokenSet(t *testing.T) {
	tokens := TokenSet("will the fed cut rates in 2025")

	// Stop words and short tokens are dropped.
	assert.NotContains(t, tokens, "will")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "in")

	assert.Contains(t, tokens, "fed")
	assert.Contains(t, tokens, "cut")
	assert.Contains(t, tokens, "rates")
	assert.Contains(t, tokens, "2025")
}

func TestTitleSimilarity(t *testing.T) {
	t.Run("identical titles", func(t *testing.T) {
		sim := TitleSimilarity("Will Bitcoin reach $100k?", "Will Bitcoin reach $100k?")
		assert.Equal(t, 1.0, sim)
	})

	t.Run("no overlap", func(t *testing.T) {
		sim := TitleSimilarity("Will Bitcoin rally?", "Super Bowl winner announced")
		assert.Equal(t, 0.0, sim)
	})

	t.Run("empty title", func(t *testing.T) {
		assert.Equal(t, 0.0, TitleSimilarity("", "Will Bitcoin rally?"))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := "Will the Fed cut rates in March 2025?"
		b := "Fed rate cut by March?"
		assert.Equal(t, TitleSimilarity(a, b), TitleSimilarity(b, a))
	})

	t.Run("overlap coefficient uses smaller set", func(t *testing.T) {
		// Smaller side {fed, rates} is fully contained in the larger side,
		// so the coefficient is 1 regardless of the extra tokens.
		a := "fed rates"
		b := "will the fed finally cut interest rates this cycle"
		assert.Equal(t, 1.0, TitleSimilarity(a, b))
	})
}
