package services

import (
	"time"

	"github.com/pictocat/backend/internal/models"
)

// NewUserData is the starting state for a just-in-time created user.
func NewUserData(id, username, email, role string) *models.User {
	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		Role:         role,
		IsVerified:   false,
		LastModified: time.Now().UTC(),
		Coins:        500,
		Phrases: []models.Phrase{
			{ID: "yes", Text: "Sí", Privacy: models.PrivacyPrivate},
			{ID: "no", Text: "No", Privacy: models.PrivacyPrivate},
			{ID: "happy", Text: "Me siento feliz", Privacy: models.PrivacyPrivate},
			{ID: "sad", Text: "Me siento triste", Privacy: models.PrivacyPrivate},
			{ID: "help", Text: "Necesito ayuda", Privacy: models.PrivacyPrivate},
		},
		UnlockedImageIDs:       []int{},
		PlayerStats:            models.PlayerStats{Level: 1, XP: 0, XPToNextLevel: 100},
		PurchasedUpgrades:      []string{},
		Bio:                    "¡Hola! Soy nuevo en PictoCat.",
		Friends:                []string{},
		FriendRequestsSent:     []string{},
		FriendRequestsReceived: []string{},
		UnlockedAchievements:   map[string]models.UserAchievement{},
		Stats:                  models.UserStats{},
	}
}
