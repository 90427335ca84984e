package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
)

type dailyPassStatusResponse struct {
	IsClaimable       bool               `json:"isClaimable"`
	NextPassTimestamp int64              `json:"nextPassTimestamp"`
	Rewards           dailyRewardPayload `json:"rewards"`
}

type dailyRewardPayload struct {
	Images     []models.CatImage `json:"images"`
	Upgrade    *models.Upgrade   `json:"upgrade"`
	CoinReward int               `json:"coinReward"`
}

// GetDailyPassStatus reports claimability and the current reward window,
// generating a fresh reward set when the previous one has expired.
func GetDailyPassStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	nowMs := time.Now().UnixMilli()
	if user.DailyPass == nil {
		user.DailyPass = &models.DailyPass{}
	}

	if services.NeedsNewRewards(user.DailyPass, nowMs) {
		catalog, err := services.LoadCatalog(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		upgrades, err := loadUpgrades(r)
		if err != nil {
			writeError(w, err)
			return
		}
		locked := services.LockedImagesFor(catalog, user.UnlockedImageIDs)
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		rewards := services.GenerateRewards(locked, upgrades, rng)

		user.DailyPass.LastGeneratedTimestamp = nowMs
		user.DailyPass.Rewards = &rewards

		_, err = database.DB.Collection(database.CollUsers).UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"dailyPass.lastGeneratedTimestamp": nowMs,
				"dailyPass.rewards":                rewards,
				"lastModified":                     time.Now(),
			}})
		if err != nil {
			writeError(w, err)
			return
		}
	}

	payload := dailyRewardPayload{Images: []models.CatImage{}}
	if rw := user.DailyPass.Rewards; rw != nil {
		payload.CoinReward = rw.CoinReward
		if len(rw.ImageIDs) > 0 {
			catalog, err := services.LoadCatalog(ctx)
			if err != nil {
				writeError(w, err)
				return
			}
			byID := services.CatalogByID(catalog)
			for _, id := range rw.ImageIDs {
				if img, ok := byID[id]; ok {
					payload.Images = append(payload.Images, img)
				}
			}
		}
		if rw.UpgradeID != "" {
			var upgrade models.Upgrade
			if err := database.DB.Collection(database.CollUpgrades).
				FindOne(ctx, bson.M{"_id": rw.UpgradeID}).Decode(&upgrade); err == nil {
				payload.Upgrade = &upgrade
			}
		}
	}

	writeJSON(w, http.StatusOK, dailyPassStatusResponse{
		IsClaimable:       services.IsClaimable(user.DailyPass, nowMs),
		NextPassTimestamp: services.NextClaimTimestamp(user.DailyPass, nowMs),
		Rewards:           payload,
	})
}

// ClaimDailyPass grants the pending reward set once per window.
func ClaimDailyPass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	nowMs := time.Now().UnixMilli()
	if user.DailyPass == nil || user.DailyPass.Rewards == nil {
		writeError(w, apperr.New(apperr.CodeNotFound, "No hay recompensas disponibles."))
		return
	}
	if !services.IsClaimable(user.DailyPass, nowMs) {
		writeError(w, apperr.New(apperr.CodeAlreadyClaimed, "Ya reclamaste el pase de hoy."))
		return
	}

	rewards := user.DailyPass.Rewards
	newIDs := services.UnlockImages(user, rewards.ImageIDs)
	services.GrantCoins(user, rewards.CoinReward)

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"coins":                          user.Coins,
			"dailyPass.lastClaimedTimestamp": nowMs,
			"lastModified":                   now,
		},
	}
	if len(newIDs) > 0 {
		update["$addToSet"] = bson.M{"unlockedImageIds": bson.M{"$each": newIDs}}
	}
	if _, err := database.DB.Collection(database.CollUsers).
		UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"unlockedImages": newIDs,
		"updatedCoins":   user.Coins,
		"lastModified":   now.UTC().Format(time.RFC3339Nano),
	})
}
