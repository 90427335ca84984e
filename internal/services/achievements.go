package services

import (
	"github.com/pictocat/backend/internal/models"
	"github.com/rs/zerolog/log"
)

// AllAchievements is the static achievement catalog. Data, not state: it is
// served to clients verbatim and evaluated against live user snapshots, but
// never mutated at runtime.
var AllAchievements = []models.Achievement{
	{
		ID:          "collector_1",
		Name:        "Coleccionista Principiante",
		Description: "Desbloquea tus primeros gatos.",
		Category:    "Colección",
		Stat:        "unlockedImageIds.length",
		Tiers: []models.AchievementTier{
			{Value: 10, Coins: 50, XP: 20},
			{Value: 25, Coins: 100, XP: 50},
			{Value: 50, Coins: 250, XP: 100},
		},
	},
	{
		ID:          "millionaire_1",
		Name:        "Ahorrador Felino",
		Description: "Acumula una pequeña fortuna.",
		Category:    "Economía",
		Stat:        "coins",
		Tiers: []models.AchievementTier{
			{Value: 1000, Coins: 100, XP: 50},
			{Value: 5000, Coins: 250, XP: 100},
			{Value: 10000, Coins: 500, XP: 200},
		},
	},
	{
		ID:          "envelopes_1",
		Name:        "Abre-sobres",
		Description: "La emoción de descubrir qué hay dentro.",
		Category:    "Economía",
		Stat:        "envelopesOpened",
		Tiers: []models.AchievementTier{
			{Value: 5, Coins: 25, XP: 10},
			{Value: 20, Coins: 100, XP: 40},
			{Value: 50, Coins: 250, XP: 100},
		},
	},
	{
		ID:          "social_1",
		Name:        "Gato Amigable",
		Description: "Haz nuevos amigos en la comunidad.",
		Category:    "Social",
		Stat:        "friends.length",
		Tiers: []models.AchievementTier{
			{Value: 1, Coins: 50, XP: 25},
			{Value: 5, Coins: 150, XP: 75},
			{Value: 10, Coins: 300, XP: 150},
		},
	},
	{
		ID:          "creator_1",
		Name:        "Creador de Contenido",
		Description: "Comparte tus frases con la comunidad.",
		Category:    "Social",
		Stat:        "publicPhrases",
		Tiers: []models.AchievementTier{
			{Value: 1, Coins: 30, XP: 15},
			{Value: 5, Coins: 100, XP: 50},
			{Value: 15, Coins: 250, XP: 125},
		},
	},
	{
		ID:          "gamer_1",
		Name:        "Jugador Casual",
		Description: "Juega a los minijuegos para ganar premios.",
		Category:    "Juegos",
		Stat:        "gamesPlayed",
		Tiers: []models.AchievementTier{
			{Value: 5, Coins: 50, XP: 25},
			{Value: 25, Coins: 200, XP: 100},
			{Value: 100, Coins: 500, XP: 250},
		},
	},
	{
		ID:          "leveled_up_1",
		Name:        "Subiendo de Nivel",
		Description: "Gana experiencia y sube de nivel.",
		Category:    "Progresión",
		Stat:        "playerStats.level",
		Tiers: []models.AchievementTier{
			{Value: 5, Coins: 100, XP: 0},
			{Value: 10, Coins: 250, XP: 0},
			{Value: 20, Coins: 500, XP: 0},
		},
	},
}

// UnlockEvent notifies the client that one achievement advanced one tier.
type UnlockEvent struct {
	Achievement  models.Achievement     `json:"achievement"`
	UnlockedTier models.AchievementTier `json:"unlockedTier"`
	NewTier      int                    `json:"newTier"`
}

// ApplyXP credits experience and runs the leveling loop to a fixed point:
// excess XP rolls into further level-ups, and xp < xpToNextLevel always
// holds afterwards.
func ApplyXP(ps *models.PlayerStats, xp int) {
	ps.XP += xp
	for ps.XP >= ps.XPToNextLevel {
		ps.Level++
		ps.XP -= ps.XPToNextLevel
		ps.XPToNextLevel = ps.XPToNextLevel * 3 / 2
	}
}

// statValue resolves an achievement's stat selector against the snapshot.
// The second return is false for selectors this build doesn't know, so a
// malformed definition skips one achievement instead of aborting the batch.
func statValue(u *models.User, stat string) (int, bool) {
	switch stat {
	case "unlockedImageIds.length":
		return len(u.UnlockedImageIDs), true
	case "friends.length":
		return len(u.Friends), true
	case "coins":
		return u.Coins, true
	case "playerStats.level":
		return u.PlayerStats.Level, true
	case "gamesPlayed":
		return u.Stats.GamesPlayed, true
	case "envelopesOpened":
		return u.Stats.EnvelopesOpened, true
	case "publicPhrases":
		return u.Stats.PublicPhrases, true
	default:
		return 0, false
	}
}

// EvaluateAchievements checks every non-maxed achievement against the user
// snapshot and advances at most one tier per achievement per call (callers
// re-invoke after every mutation, so multi-tier jumps resolve across calls).
// Rewards are applied directly to the snapshot: coins are credited and tier
// XP runs through the leveling loop. Returns the unlock events; the caller
// persists the mutated coins/playerStats/unlockedAchievements fields only
// when events were produced.
func EvaluateAchievements(u *models.User) []UnlockEvent {
	var events []UnlockEvent

	if u.UnlockedAchievements == nil {
		u.UnlockedAchievements = make(map[string]models.UserAchievement)
	}

	// Stats are resolved against the snapshot as it stood before this call;
	// coins/XP rewarded mid-pass don't feed later checks in the same pass.
	base := *u

	for _, achievement := range AllAchievements {
		state, ok := u.UnlockedAchievements[achievement.ID]
		if !ok {
			state = models.UserAchievement{ID: achievement.ID}
		}

		if state.UnlockedTier >= len(achievement.Tiers) {
			continue // maxed out
		}

		progress, known := statValue(&base, achievement.Stat)
		if !known {
			log.Warn().Str("achievement", achievement.ID).Str("stat", achievement.Stat).
				Msg("unknown achievement stat selector, skipping")
			continue
		}

		// Tiers are claimed in order: only the next tier is considered.
		nextTier := achievement.Tiers[state.UnlockedTier]
		if progress < nextTier.Value {
			continue
		}

		state.UnlockedTier++
		state.Progress = progress
		u.UnlockedAchievements[achievement.ID] = state

		u.Coins += nextTier.Coins
		ApplyXP(&u.PlayerStats, nextTier.XP)

		events = append(events, UnlockEvent{
			Achievement:  achievement,
			UnlockedTier: nextTier,
			NewTier:      state.UnlockedTier,
		})
	}

	return events
}

// AchievementByID returns the static definition, or nil if unknown.
func AchievementByID(id string) *models.Achievement {
	for i := range AllAchievements {
		if AllAchievements[i].ID == id {
			return &AllAchievements[i]
		}
	}
	return nil
}
