package services

import (
	"math/rand"
	"testing"

	"github.com/pictocat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nowMs = int64(1_700_000_000_000)

func TestNeedsNewRewards(t *testing.T) {
	assert.True(t, NeedsNewRewards(nil, nowMs))
	assert.True(t, NeedsNewRewards(&models.DailyPass{}, nowMs))

	fresh := &models.DailyPass{LastGeneratedTimestamp: nowMs - DailyPassWindowMs/2}
	assert.False(t, NeedsNewRewards(fresh, nowMs))

	expired := &models.DailyPass{LastGeneratedTimestamp: nowMs - DailyPassWindowMs - 1}
	assert.True(t, NeedsNewRewards(expired, nowMs))

	// Exactly at the boundary the old rewards still stand.
	boundary := &models.DailyPass{LastGeneratedTimestamp: nowMs - DailyPassWindowMs}
	assert.False(t, NeedsNewRewards(boundary, nowMs))
}

func TestIsClaimable(t *testing.T) {
	assert.True(t, IsClaimable(nil, nowMs))
	assert.True(t, IsClaimable(&models.DailyPass{}, nowMs))

	justClaimed := &models.DailyPass{LastClaimedTimestamp: nowMs - 1000}
	assert.False(t, IsClaimable(justClaimed, nowMs))

	dayAgo := &models.DailyPass{LastClaimedTimestamp: nowMs - DailyPassWindowMs - 1}
	assert.True(t, IsClaimable(dayAgo, nowMs))
}

func TestNextClaimTimestamp(t *testing.T) {
	// Never claimed: claimable right now.
	assert.Equal(t, nowMs, NextClaimTimestamp(nil, nowMs))
	assert.Equal(t, nowMs, NextClaimTimestamp(&models.DailyPass{}, nowMs))

	claimed := &models.DailyPass{LastClaimedTimestamp: nowMs - 1000}
	assert.Equal(t, nowMs-1000+DailyPassWindowMs, NextClaimTimestamp(claimed, nowMs))
}

func TestGenerateRewardsPicksDistinctLockedImages(t *testing.T) {
	locked := []models.CatImage{
		{NumericID: 10}, {NumericID: 11}, {NumericID: 12},
	}
	upgrades := []models.Upgrade{{ID: "goldenPaw"}, {ID: "betterBait"}}
	rng := rand.New(rand.NewSource(5))

	rewards := GenerateRewards(locked, upgrades, rng)

	require.Len(t, rewards.ImageIDs, DailyRewardImageCount)
	assert.NotEqual(t, rewards.ImageIDs[0], rewards.ImageIDs[1])
	assert.Zero(t, rewards.CoinReward)
	assert.Contains(t, []string{"goldenPaw", "betterBait"}, rewards.UpgradeID)
}

func TestGenerateRewardsWithSingleLockedImage(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	rewards := GenerateRewards([]models.CatImage{{NumericID: 42}}, nil, rng)

	assert.Equal(t, []int{42}, rewards.ImageIDs)
	assert.Zero(t, rewards.CoinReward)
	assert.Empty(t, rewards.UpgradeID)
}

func TestGenerateRewardsCoinFallbackWhenCatalogComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	rewards := GenerateRewards(nil, []models.Upgrade{{ID: "xpBoost"}}, rng)

	assert.Empty(t, rewards.ImageIDs)
	assert.Equal(t, DailyCoinRewardAllUnlocked, rewards.CoinReward)
	assert.Equal(t, "xpBoost", rewards.UpgradeID)
}
