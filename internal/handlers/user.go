package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/middleware"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"github.com/pictocat/backend/pkg/utils"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// profileData is the client-facing projection of the mutable game state.
type profileData struct {
	Coins                  int                               `json:"coins"`
	Phrases                []models.Phrase                   `json:"phrases"`
	UnlockedImageIDs       []int                             `json:"unlockedImageIds"`
	PlayerStats            models.PlayerStats                `json:"playerStats"`
	PurchasedUpgrades      []string                          `json:"purchasedUpgrades"`
	Bio                    string                            `json:"bio"`
	ProfilePictureID       *int                              `json:"profilePictureId"`
	Friends                []string                          `json:"friends"`
	FriendRequestsSent     []string                          `json:"friendRequestsSent"`
	FriendRequestsReceived []string                          `json:"friendRequestsReceived"`
	UnlockedAchievements   map[string]models.UserAchievement `json:"unlockedAchievements"`
	Stats                  models.UserStats                  `json:"stats"`
}

type profileResponse struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	IsVerified   bool        `json:"isVerified"`
	LastModified string      `json:"lastModified"`
	Data         profileData `json:"data"`
}

func toProfileResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		LastModified: u.LastModified.UTC().Format(time.RFC3339Nano),
		Data: profileData{
			Coins:                  u.Coins,
			Phrases:                u.Phrases,
			UnlockedImageIDs:       u.UnlockedImageIDs,
			PlayerStats:            u.PlayerStats,
			PurchasedUpgrades:      u.PurchasedUpgrades,
			Bio:                    u.Bio,
			ProfilePictureID:       u.ProfilePictureID,
			Friends:                u.Friends,
			FriendRequestsSent:     u.FriendRequestsSent,
			FriendRequestsReceived: u.FriendRequestsReceived,
			UnlockedAchievements:   u.UnlockedAchievements,
			Stats:                  u.Stats,
		},
	}
}

// resolveRole derives the effective role from the token claims, with the
// configured admin email as an escape hatch for the first operator account.
func resolveRole(id middleware.Identity) string {
	switch {
	case id.HasRole(models.RoleAdmin):
		return models.RoleAdmin
	case id.HasRole(models.RoleMod):
		return models.RoleMod
	case cfg != nil && cfg.AdminEmail != "" && id.Email == cfg.AdminEmail:
		return models.RoleAdmin
	default:
		return models.RoleUser
	}
}

// GetUserData returns the caller's profile, creating it on first login.
func GetUserData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := identity(r)

	user, err := fetchUser(ctx, id.UserID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			created, cerr := createInitialUser(ctx, id)
			if cerr != nil {
				writeError(w, cerr)
				return
			}
			writeJSON(w, http.StatusOK, toProfileResponse(created))
			return
		}
		writeError(w, err)
		return
	}

	// Keep role and email in step with the identity provider.
	patch := bson.M{}
	if role := resolveRole(id); role != user.Role && user.Role != models.RoleAdmin {
		patch["role"] = role
		user.Role = role
	}
	if id.Email != "" && user.Email != id.Email {
		patch["email"] = id.Email
		user.Email = id.Email
	}
	if len(patch) > 0 {
		patch["lastModified"] = time.Now()
		if _, err := database.DB.Collection(database.CollUsers).
			UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": patch}); err != nil {
			writeError(w, err)
			return
		}
		user.LastModified = patch["lastModified"].(time.Time)
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// createInitialUser provisions a fresh document with a unique username derived
// from the identity. A duplicate-key race with a concurrent first request is
// resolved by re-reading the winner's document.
func createInitialUser(ctx context.Context, id middleware.Identity) (*models.User, error) {
	users := database.DB.Collection(database.CollUsers)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	base := utils.DeriveBaseUsername(id.Email, id.UserID)
	username := base
	for attempt := 0; attempt < 5; attempt++ {
		count, err := users.CountDocuments(ctx, bson.M{"username": username})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		username = utils.SuffixedUsername(base, rng)
	}

	user := services.NewUserData(id.UserID, username, id.Email, resolveRole(id))
	if _, err := users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var existing models.User
			if ferr := users.FindOne(ctx, bson.M{"_id": id.UserID}).Decode(&existing); ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	log.Info().Str("userId", user.ID).Str("username", user.Username).Msg("created new user")
	return user, nil
}

type saveUserDataRequest struct {
	Data *struct {
		Coins             *int                `json:"coins" validate:"omitempty,gte=0"`
		Phrases           []models.Phrase     `json:"phrases" validate:"omitempty,dive"`
		UnlockedImageIDs  []int               `json:"unlockedImageIds"`
		PlayerStats       *models.PlayerStats `json:"playerStats"`
		PurchasedUpgrades []string            `json:"purchasedUpgrades"`
		Stats             *models.UserStats   `json:"stats"`
	} `json:"data" validate:"required"`
}

// SaveUserData persists a partial client-state snapshot. Only whitelisted
// fields are accepted; monotonic fields are merged, never shrunk.
func SaveUserData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveUserDataRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	set := bson.M{}
	in := req.Data
	if in.Coins != nil {
		user.Coins = *in.Coins
		set["coins"] = user.Coins
	}
	if in.Phrases != nil {
		for _, p := range in.Phrases {
			if p.ID == "" || p.Text == "" {
				writeError(w, apperr.New(apperr.CodeValidation, "Frase inválida."))
				return
			}
		}
		user.Phrases = in.Phrases
		set["phrases"] = user.Phrases
	}
	if in.UnlockedImageIDs != nil {
		// Union with the stored set: the unlocked collection only grows.
		services.UnlockImages(user, in.UnlockedImageIDs)
		set["unlockedImageIds"] = user.UnlockedImageIDs
	}
	if in.PlayerStats != nil {
		ps := *in.PlayerStats
		if ps.Level < 1 || ps.XP < 0 || ps.XPToNextLevel < 1 {
			writeError(w, apperr.New(apperr.CodeValidation, "Progresión inválida."))
			return
		}
		user.PlayerStats = ps
		set["playerStats"] = ps
	}
	if in.PurchasedUpgrades != nil {
		user.PurchasedUpgrades = in.PurchasedUpgrades
		set["purchasedUpgrades"] = user.PurchasedUpgrades
	}
	if in.Stats != nil {
		st := *in.Stats
		if st.GamesPlayed < 0 || st.EnvelopesOpened < 0 || st.PublicPhrases < 0 {
			writeError(w, apperr.New(apperr.CodeValidation, "Estadísticas inválidas."))
			return
		}
		// Lifetime counters never move backwards.
		if st.GamesPlayed < user.Stats.GamesPlayed {
			st.GamesPlayed = user.Stats.GamesPlayed
		}
		if st.EnvelopesOpened < user.Stats.EnvelopesOpened {
			st.EnvelopesOpened = user.Stats.EnvelopesOpened
		}
		// publicPhrases is server-owned, derived from publish operations.
		st.PublicPhrases = user.Stats.PublicPhrases
		user.Stats = st
		set["stats"] = st
	}

	events := services.EvaluateAchievements(user)
	if len(events) > 0 {
		set["coins"] = user.Coins
		set["playerStats"] = user.PlayerStats
		set["unlockedAchievements"] = user.UnlockedAchievements
	}

	now := time.Now()
	set["lastModified"] = now
	if _, err := database.DB.Collection(database.CollUsers).
		UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":                   true,
		"lastModified":              now.UTC().Format(time.RFC3339Nano),
		"newlyUnlockedAchievements": achievementEventsPayload(events),
	})
}

func achievementEventsPayload(events []services.UnlockEvent) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		out = append(out, map[string]interface{}{
			"id":          ev.Achievement.ID,
			"name":        ev.Achievement.Name,
			"description": ev.Achievement.Description,
			"tier":        ev.NewTier,
			"coins":       ev.UnlockedTier.Coins,
			"xp":          ev.UnlockedTier.XP,
		})
	}
	return out
}

// SyncUserData compares the client's last-known timestamp against the stored
// one and returns the full profile only when it is meaningfully newer.
func SyncUserData(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")
	if since == "" {
		writeError(w, apperr.New(apperr.CodeValidation, "Missing 'since' query parameter"))
		return
	}
	clientTime, err := time.Parse(time.RFC3339Nano, since)
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "Invalid 'since' timestamp"))
		return
	}

	user, err := fetchUser(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if !services.ProfileChanged(user.LastModified, clientTime) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(user))
}
