package services

import (
	"testing"

	"github.com/pictocat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *models.User {
	return &models.User{
		ID:          "auth0|tester",
		Username:    "tester",
		Coins:       0,
		PlayerStats: models.PlayerStats{Level: 1, XP: 0, XPToNextLevel: 100},
	}
}

func TestApplyXPSingleLevelUp(t *testing.T) {
	ps := models.PlayerStats{Level: 1, XP: 90, XPToNextLevel: 100}
	ApplyXP(&ps, 30)

	assert.Equal(t, 2, ps.Level)
	assert.Equal(t, 20, ps.XP)
	assert.Equal(t, 150, ps.XPToNextLevel)
}

func TestApplyXPRollsOverMultipleLevels(t *testing.T) {
	ps := models.PlayerStats{Level: 1, XP: 0, XPToNextLevel: 100}
	// 100 to reach level 2, 150 more to reach level 3.
	ApplyXP(&ps, 260)

	assert.Equal(t, 3, ps.Level)
	assert.Equal(t, 10, ps.XP)
	assert.Equal(t, 225, ps.XPToNextLevel)
}

func TestApplyXPNoLevelUp(t *testing.T) {
	ps := models.PlayerStats{Level: 2, XP: 10, XPToNextLevel: 150}
	ApplyXP(&ps, 50)

	assert.Equal(t, 2, ps.Level)
	assert.Equal(t, 60, ps.XP)
}

func TestEvaluateAchievementsUnlocksAndRewards(t *testing.T) {
	u := newTestUser()
	u.Coins = 1000
	u.UnlockedImageIDs = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	events := EvaluateAchievements(u)

	require.Len(t, events, 2)
	ids := []string{events[0].Achievement.ID, events[1].Achievement.ID}
	assert.Contains(t, ids, "collector_1")
	assert.Contains(t, ids, "millionaire_1")

	// collector tier 1 pays 50, millionaire tier 1 pays 100.
	assert.Equal(t, 1150, u.Coins)
	assert.Equal(t, 70, u.PlayerStats.XP)
	assert.Equal(t, 1, u.UnlockedAchievements["collector_1"].UnlockedTier)
	assert.Equal(t, 1, u.UnlockedAchievements["millionaire_1"].UnlockedTier)
}

func TestEvaluateAchievementsCoinRewardsDoNotFeedSamePass(t *testing.T) {
	u := newTestUser()
	u.Coins = 970
	u.UnlockedImageIDs = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	events := EvaluateAchievements(u)

	// The collector reward pushes the balance over 1000, but millionaire_1
	// is judged on the balance as it stood when the pass started.
	require.Len(t, events, 1)
	assert.Equal(t, "collector_1", events[0].Achievement.ID)
	assert.Equal(t, 1020, u.Coins)

	events = EvaluateAchievements(u)
	require.Len(t, events, 1)
	assert.Equal(t, "millionaire_1", events[0].Achievement.ID)
}

func TestEvaluateAchievementsOneTierPerCall(t *testing.T) {
	u := newTestUser()
	u.UnlockedImageIDs = make([]int, 0, 25)
	for i := 1; i <= 25; i++ {
		u.UnlockedImageIDs = append(u.UnlockedImageIDs, i)
	}

	first := EvaluateAchievements(u)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].NewTier)

	second := EvaluateAchievements(u)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].NewTier)

	// Tier 3 needs 50 images; nothing more to unlock.
	assert.Empty(t, EvaluateAchievements(u))
}

func TestEvaluateAchievementsSkipsMaxedOut(t *testing.T) {
	u := newTestUser()
	u.Stats.GamesPlayed = 500
	u.UnlockedAchievements = map[string]models.UserAchievement{
		"gamer_1": {ID: "gamer_1", UnlockedTier: 3, Progress: 100},
	}

	assert.Empty(t, EvaluateAchievements(u))
}

func TestEvaluateAchievementsNoProgress(t *testing.T) {
	u := newTestUser()
	assert.Empty(t, EvaluateAchievements(u))
	assert.NotNil(t, u.UnlockedAchievements)
}

func TestAchievementByID(t *testing.T) {
	a := AchievementByID("social_1")
	require.NotNil(t, a)
	assert.Equal(t, "friends.length", a.Stat)

	assert.Nil(t, AchievementByID("nope"))
}
