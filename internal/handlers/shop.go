package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func loadEnvelopes(r *http.Request) ([]models.Envelope, error) {
	cur, err := database.DB.Collection(database.CollEnvelopes).Find(r.Context(), bson.M{})
	if err != nil {
		return nil, err
	}
	var envelopes []models.Envelope
	if err := cur.All(r.Context(), &envelopes); err != nil {
		return nil, err
	}
	return envelopes, nil
}

func loadUpgrades(r *http.Request) ([]models.Upgrade, error) {
	cur, err := database.DB.Collection(database.CollUpgrades).Find(r.Context(), bson.M{})
	if err != nil {
		return nil, err
	}
	var upgrades []models.Upgrade
	if err := cur.All(r.Context(), &upgrades); err != nil {
		return nil, err
	}
	return upgrades, nil
}

// GetShopData returns the envelope and upgrade catalog with envelope costs
// scaled to the caller's current level.
func GetShopData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := services.EnsureShopData(ctx); err != nil {
		writeError(w, err)
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	envelopes, err := loadEnvelopes(r)
	if err != nil {
		writeError(w, err)
		return
	}
	upgrades, err := loadUpgrades(r)
	if err != nil {
		writeError(w, err)
		return
	}

	envMap := make(map[string]models.Envelope, len(envelopes))
	for _, env := range envelopes {
		env.CurrentCost = env.CostAtLevel(user.PlayerStats.Level)
		envMap[env.ID] = env
	}
	upMap := make(map[string]models.Upgrade, len(upgrades))
	for _, up := range upgrades {
		upMap[up.ID] = up
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"envelopes": envMap,
		"upgrades":  upMap,
	})
}

// PurchaseEnvelope charges the level-scaled cost, draws images from the
// owned-exclusive pool and applies rewards in a single conditional write.
func PurchaseEnvelope(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	envelopeID := chi.URLParam(r, "envelopeId")

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var envelope models.Envelope
	err = database.DB.Collection(database.CollEnvelopes).
		FindOne(ctx, bson.M{"_id": envelopeID}).Decode(&envelope)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Sobre no encontrado."))
			return
		}
		writeError(w, err)
		return
	}

	catalog, err := services.LoadCatalog(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if services.OwnsEntireCatalog(user.UnlockedImageIDs, catalog) {
		writeError(w, apperr.New(apperr.CodeConflict, "¡Ya tienes todos los gatos!"))
		return
	}

	cost := envelope.CostAtLevel(user.PlayerStats.Level)
	startingCoins := user.Coins
	if err := services.SpendCoins(user, cost); err != nil {
		writeError(w, err)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	drawn := services.Draw(&envelope, user.UnlockedImageIDs, catalog, rng)
	newIDs := make([]int, 0, len(drawn))
	for _, img := range drawn {
		newIDs = append(newIDs, img.NumericID)
	}
	services.UnlockImages(user, newIDs)
	services.GrantXP(user, envelope.XP)
	_ = services.RecordStat(user, "envelopesOpened", 1)

	events := services.EvaluateAchievements(user)

	now := time.Now()
	set := bson.M{
		"stats.envelopesOpened": user.Stats.EnvelopesOpened,
		"playerStats":           user.PlayerStats,
		"lastModified":          now,
	}
	if len(events) > 0 {
		set["unlockedAchievements"] = user.UnlockedAchievements
	}
	update := bson.M{
		// $inc keeps the balance correct if another purchase landed between
		// our read and this write; the filter keeps it from going negative.
		"$inc": bson.M{"coins": user.Coins - startingCoins},
		"$set": set,
	}
	if len(newIDs) > 0 {
		update["$addToSet"] = bson.M{"unlockedImageIds": bson.M{"$each": newIDs}}
	}

	res, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{"_id": user.ID, "coins": bson.M{"$gte": cost}}, update)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, apperr.New(apperr.CodeInsufficientFunds, "No tienes suficientes monedas."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":                   true,
		"updatedCoins":              user.Coins,
		"newImages":                 drawn,
		"lastModified":              now.UTC().Format(time.RFC3339Nano),
		"newlyUnlockedAchievements": achievementEventsPayload(events),
	})
}

// BuyUpgrade validates eligibility against a snapshot, then applies the
// charge with a conditional write so double submits cannot buy twice.
func BuyUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	upgradeID := chi.URLParam(r, "upgradeId")

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var upgrade models.Upgrade
	err = database.DB.Collection(database.CollUpgrades).
		FindOne(ctx, bson.M{"_id": upgradeID}).Decode(&upgrade)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Mejora no encontrada."))
			return
		}
		writeError(w, err)
		return
	}

	if err := services.PurchaseUpgrade(user, &upgrade); err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	res, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{
			"_id":               user.ID,
			"coins":             bson.M{"$gte": upgrade.Cost},
			"purchasedUpgrades": bson.M{"$ne": upgrade.ID},
		},
		bson.M{
			"$inc":      bson.M{"coins": -upgrade.Cost},
			"$addToSet": bson.M{"purchasedUpgrades": upgrade.ID},
			"$set":      bson.M{"lastModified": now},
		})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, apperr.New(apperr.CodeConflict, "¡Mejora ya comprada!"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"updatedCoins": user.Coins,
		"upgradeId":    upgrade.ID,
		"lastModified": now.UTC().Format(time.RFC3339Nano),
	})
}
