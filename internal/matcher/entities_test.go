package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities(t *testing.T) {
	t.Run("years quarters months", func(t *testing.T) {
		entities := ExtractEntities("Fed rate cut in Q1 March 2025?")
		assert.Contains(t, entities, "2025")
		assert.Contains(t, entities, "q1")
		assert.Contains(t, entities, "march")
		assert.Contains(t, entities, "fed")
		assert.Contains(t, entities, "rate cut")
	})

	t.Run("currency and percent survive normalization", func(t *testing.T) {
		entities := ExtractEntities("Will Bitcoin reach $100k with 5% odds?")
		assert.Contains(t, entities, "$100k")
		assert.Contains(t, entities, "5%")
		assert.Contains(t, entities, "bitcoin")
	})

	t.Run("worded amounts", func(t *testing.T) {
		entities := ExtractEntities("Will Nvidia hit 5 trillion market cap?")
		assert.Contains(t, entities, "5 trillion")
		assert.Contains(t, entities, "nvidia")
	})

	t.Run("multi-word key terms", func(t *testing.T) {
		entities := ExtractEntities("Who wins the Super Bowl in 2026?")
		assert.Contains(t, entities, "super bowl")
		assert.Contains(t, entities, "2026")
	})

	t.Run("key terms match whole words only", func(t *testing.T) {
		// "feder" must not match the "fed" term.
		entities := ExtractEntities("feder cup winner")
		assert.NotContains(t, entities, "fed")
	})

	t.Run("no entities", func(t *testing.T) {
		assert.Empty(t, ExtractEntities("Something happens eventually"))
	})
}

func TestYears(t *testing.T) {
	assert.Equal(t, []string{"2025"}, Years("Election 2025"))
	assert.Equal(t, []string{"2024", "2025"}, Years("from 2024 to 2025 and 2024 again"))
	assert.Nil(t, Years("no year here"))
	// Only 20xx tokens count as years.
	assert.Nil(t, Years("born in 1999"))
}

func TestIntersect(t *testing.T) {
	a := map[string]bool{"bitcoin": true, "2025": true, "fed": true}
	b := map[string]bool{"2025": true, "bitcoin": true, "ecb": true}
	assert.Equal(t, []string{"2025", "bitcoin"}, intersect(a, b))
	assert.Empty(t, intersect(a, map[string]bool{}))
}
