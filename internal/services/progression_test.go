package services

import (
	"testing"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendCoins(t *testing.T) {
	u := &models.User{Coins: 100}

	require.NoError(t, SpendCoins(u, 60))
	assert.Equal(t, 40, u.Coins)

	err := SpendCoins(u, 41)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientFunds))
	assert.Equal(t, 40, u.Coins)

	err = SpendCoins(u, -5)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestUnlockImagesIsAnIdempotentUnion(t *testing.T) {
	u := &models.User{UnlockedImageIDs: []int{1, 2}}

	added := UnlockImages(u, []int{2, 3, 3, 4})
	assert.Equal(t, []int{3, 4}, added)
	assert.Equal(t, []int{1, 2, 3, 4}, u.UnlockedImageIDs)

	assert.Empty(t, UnlockImages(u, []int{1, 4}))
	assert.Equal(t, []int{1, 2, 3, 4}, u.UnlockedImageIDs)
}

func TestPurchaseUpgrade(t *testing.T) {
	upgrade := &models.Upgrade{ID: "goldenPaw", Cost: 500, LevelRequired: 3}

	t.Run("level gate first", func(t *testing.T) {
		u := &models.User{Coins: 1000, PlayerStats: models.PlayerStats{Level: 2}}
		err := PurchaseUpgrade(u, upgrade)
		assert.True(t, apperr.IsCode(err, apperr.CodeLevelTooLow))
		assert.Equal(t, 1000, u.Coins)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		u := &models.User{Coins: 499, PlayerStats: models.PlayerStats{Level: 3}}
		err := PurchaseUpgrade(u, upgrade)
		assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientFunds))
	})

	t.Run("happy path then repeat purchase", func(t *testing.T) {
		u := &models.User{Coins: 1000, PlayerStats: models.PlayerStats{Level: 3}}
		require.NoError(t, PurchaseUpgrade(u, upgrade))
		assert.Equal(t, 500, u.Coins)
		assert.Equal(t, []string{"goldenPaw"}, u.PurchasedUpgrades)

		err := PurchaseUpgrade(u, upgrade)
		assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyOwned))
		assert.Equal(t, 500, u.Coins)
	})
}

func TestRecordStat(t *testing.T) {
	u := &models.User{}

	require.NoError(t, RecordStat(u, "gamesPlayed", 1))
	require.NoError(t, RecordStat(u, "envelopesOpened", 2))
	require.NoError(t, RecordStat(u, "publicPhrases", 1))
	assert.Equal(t, 1, u.Stats.GamesPlayed)
	assert.Equal(t, 2, u.Stats.EnvelopesOpened)
	assert.Equal(t, 1, u.Stats.PublicPhrases)

	// Unpublishing may decrement, but never below zero.
	require.NoError(t, RecordStat(u, "publicPhrases", -1))
	require.NoError(t, RecordStat(u, "publicPhrases", -1))
	assert.Equal(t, 0, u.Stats.PublicPhrases)

	err := RecordStat(u, "gamesPlayed", -1)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	err = RecordStat(u, "catsPetted", 1)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}
