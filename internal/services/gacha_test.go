package services

import (
	"math/rand"
	"testing"

	"github.com/pictocat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []models.CatImage {
	return []models.CatImage{
		{NumericID: 1, Rarity: models.RarityCommon},
		{NumericID: 2, Rarity: models.RarityCommon},
		{NumericID: 3, Rarity: models.RarityCommon},
		{NumericID: 4, Rarity: models.RarityRare},
		{NumericID: 5, Rarity: models.RarityRare},
		{NumericID: 6, Rarity: models.RarityEpic},
	}
}

func TestSelectRarityDegenerateWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		assert.Equal(t, models.RarityCommon,
			SelectRarity(models.RarityProbabilities{Common: 100}, rng))
		assert.Equal(t, models.RarityRare,
			SelectRarity(models.RarityProbabilities{Rare: 100}, rng))
		assert.Equal(t, models.RarityEpic,
			SelectRarity(models.RarityProbabilities{Epic: 100}, rng))
	}
}

func TestSelectRarityWeightsRoughlyHold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := models.RarityProbabilities{Common: 80, Rare: 15, Epic: 5}

	counts := map[string]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		counts[SelectRarity(p, rng)]++
	}

	assert.InDelta(t, 0.80, float64(counts[models.RarityCommon])/n, 0.03)
	assert.InDelta(t, 0.15, float64(counts[models.RarityRare])/n, 0.03)
	assert.InDelta(t, 0.05, float64(counts[models.RarityEpic])/n, 0.03)
}

func TestDrawNeverYieldsOwnedOrDuplicates(t *testing.T) {
	envelope := &models.Envelope{
		ImageCount:          3,
		RarityProbabilities: models.RarityProbabilities{Common: 80, Rare: 15, Epic: 5},
	}
	owned := []int{1, 4}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		drawn := Draw(envelope, owned, testCatalog(), rng)

		seen := map[int]bool{}
		for _, img := range drawn {
			assert.NotContains(t, owned, img.NumericID)
			assert.False(t, seen[img.NumericID], "duplicate in one opening")
			seen[img.NumericID] = true
		}
	}
}

func TestDrawFallsBackWhenRarityExhausted(t *testing.T) {
	// Epic-only weights against a catalog whose single epic is owned: every
	// pick must fall back through rare to common.
	envelope := &models.Envelope{
		ImageCount:          2,
		RarityProbabilities: models.RarityProbabilities{Epic: 100},
	}
	rng := rand.New(rand.NewSource(7))

	drawn := Draw(envelope, []int{6}, testCatalog(), rng)

	require.Len(t, drawn, 2)
	for _, img := range drawn {
		assert.Equal(t, models.RarityRare, img.Rarity)
	}
}

func TestDrawReturnsFewerWhenPoolRunsDry(t *testing.T) {
	envelope := &models.Envelope{
		ImageCount:          5,
		RarityProbabilities: models.RarityProbabilities{Common: 100},
	}
	rng := rand.New(rand.NewSource(3))

	// Only images 5 and 6 remain unowned.
	drawn := Draw(envelope, []int{1, 2, 3, 4}, testCatalog(), rng)

	assert.Len(t, drawn, 2)
}

func TestDrawEmptyWhenEverythingOwned(t *testing.T) {
	envelope := &models.Envelope{
		ImageCount:          3,
		RarityProbabilities: models.RarityProbabilities{Common: 100},
	}
	rng := rand.New(rand.NewSource(9))

	drawn := Draw(envelope, []int{1, 2, 3, 4, 5, 6}, testCatalog(), rng)
	assert.Empty(t, drawn)
}

func TestOwnsEntireCatalog(t *testing.T) {
	catalog := testCatalog()

	assert.False(t, OwnsEntireCatalog(nil, catalog))
	assert.False(t, OwnsEntireCatalog([]int{1, 2, 3}, catalog))
	assert.True(t, OwnsEntireCatalog([]int{1, 2, 3, 4, 5, 6}, catalog))
	assert.True(t, OwnsEntireCatalog([]int{6, 5, 4, 3, 2, 1, 99}, catalog))
	assert.True(t, OwnsEntireCatalog(nil, nil))
}
