package services

import (
	"math/rand"

	"github.com/pictocat/backend/internal/models"
)

// Daily pass: two independent 24h clocks per user. Rewards regenerate once
// per window; claiming is allowed once per window regardless of when the
// current rewards were generated. Timestamps are epoch milliseconds.
const (
	DailyPassWindowMs = int64(24 * 60 * 60 * 1000)
	// DailyRewardImageCount is how many unowned images a generation picks.
	DailyRewardImageCount = 2
	// DailyCoinRewardAllUnlocked is the flat fallback when the user already
	// owns the entire catalog.
	DailyCoinRewardAllUnlocked = 100
)

// NeedsNewRewards reports whether the generation clock has expired.
func NeedsNewRewards(dp *models.DailyPass, nowMs int64) bool {
	if dp == nil || dp.LastGeneratedTimestamp == 0 {
		return true
	}
	return nowMs-dp.LastGeneratedTimestamp > DailyPassWindowMs
}

// IsClaimable reports whether the claim clock allows claiming right now.
func IsClaimable(dp *models.DailyPass, nowMs int64) bool {
	if dp == nil || dp.LastClaimedTimestamp == 0 {
		return true
	}
	return nowMs-dp.LastClaimedTimestamp > DailyPassWindowMs
}

// NextClaimTimestamp is the moment the pass becomes (or became) claimable,
// surfaced to the client for its countdown.
func NextClaimTimestamp(dp *models.DailyPass, nowMs int64) int64 {
	last := nowMs - DailyPassWindowMs
	if dp != nil && dp.LastClaimedTimestamp != 0 {
		last = dp.LastClaimedTimestamp
	}
	return last + DailyPassWindowMs
}

// GenerateRewards picks up to DailyRewardImageCount images the user doesn't
// own (uniformly, without replacement) plus one random upgrade reference.
// When nothing is left to unlock the reward degrades to a flat coin bonus.
// Pure over its inputs; the caller persists the result.
func GenerateRewards(lockedImages []models.CatImage, upgrades []models.Upgrade, rng *rand.Rand) models.DailyPassRewards {
	rewards := models.DailyPassRewards{ImageIDs: []int{}}

	if len(lockedImages) > 0 {
		pool := make([]models.CatImage, len(lockedImages))
		copy(pool, lockedImages)
		for i := 0; i < DailyRewardImageCount && len(pool) > 0; i++ {
			pick := rng.Intn(len(pool))
			rewards.ImageIDs = append(rewards.ImageIDs, pool[pick].NumericID)
			pool = append(pool[:pick], pool[pick+1:]...)
		}
	} else {
		rewards.CoinReward = DailyCoinRewardAllUnlocked
	}

	if len(upgrades) > 0 {
		rewards.UpgradeID = upgrades[rng.Intn(len(upgrades))].ID
	}

	return rewards
}
