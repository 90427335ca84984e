package services

import (
	"math/rand"

	"github.com/pictocat/backend/internal/models"
)

// SelectRarity samples a rarity tier from the envelope's weights. The roll
// is checked against cumulative thresholds in common→rare→epic order; epic
// is the implicit remainder, so weights that don't quite sum to 100 still
// resolve to something.
func SelectRarity(p models.RarityProbabilities, rng *rand.Rand) string {
	roll := rng.Float64() * 100
	cumulative := 0.0

	cumulative += float64(p.Common)
	if roll < cumulative {
		return models.RarityCommon
	}
	cumulative += float64(p.Rare)
	if roll < cumulative {
		return models.RarityRare
	}
	return models.RarityEpic
}

// rarityFallback is the fixed search order when the selected rarity has no
// unowned images left.
func rarityFallback(rarity string) []string {
	switch rarity {
	case models.RarityEpic:
		return []string{models.RarityEpic, models.RarityRare, models.RarityCommon}
	case models.RarityRare:
		return []string{models.RarityRare, models.RarityCommon, models.RarityEpic}
	default:
		return []string{models.RarityCommon, models.RarityRare, models.RarityEpic}
	}
}

// Draw resolves one envelope opening: up to envelope.ImageCount images the
// user doesn't own yet, honoring the rarity weights with fallback. Each hit
// leaves the candidate pool, so a single opening never yields duplicates.
// Pure over its inputs — the caller persists the result. May return fewer
// images than ImageCount (or none) when the remaining pool runs dry.
func Draw(envelope *models.Envelope, ownedIDs []int, catalog []models.CatImage, rng *rand.Rand) []models.CatImage {
	owned := make(map[int]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	pool := map[string][]models.CatImage{}
	for _, img := range catalog {
		if !owned[img.NumericID] {
			pool[img.Rarity] = append(pool[img.Rarity], img)
		}
	}

	var drawn []models.CatImage
	for i := 0; i < envelope.ImageCount; i++ {
		selected := SelectRarity(envelope.RarityProbabilities, rng)

		for _, rarity := range rarityFallback(selected) {
			candidates := pool[rarity]
			if len(candidates) == 0 {
				continue
			}
			pick := rng.Intn(len(candidates))
			drawn = append(drawn, candidates[pick])
			pool[rarity] = append(candidates[:pick], candidates[pick+1:]...)
			break
		}
	}

	return drawn
}

// OwnsEntireCatalog reports whether there is nothing left to draw for this user.
func OwnsEntireCatalog(ownedIDs []int, catalog []models.CatImage) bool {
	owned := make(map[int]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}
	for _, img := range catalog {
		if !owned[img.NumericID] {
			return false
		}
	}
	return true
}
