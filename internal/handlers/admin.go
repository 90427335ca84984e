package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/middleware"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxCatalogUploadBytes = 10 << 20

// GetAllUsers returns an administrative listing of every account.
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	cur, err := database.DB.Collection(database.CollUsers).Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.M{"username": 1}).
			SetProjection(bson.M{
				"username": 1, "email": 1, "role": 1, "isVerified": 1,
				"coins": 1, "playerStats.level": 1, "stats": 1, "lastModified": 1,
			}))
	if err != nil {
		writeError(w, err)
		return
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetAllPublicPhrases returns every feed projection for moderation review.
func GetAllPublicPhrases(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	cur, err := database.DB.Collection(database.CollPublicPhrases).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": -1}))
	if err != nil {
		writeError(w, err)
		return
	}
	phrases := []models.PublicPhrase{}
	if err := cur.All(ctx, &phrases); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"phrases": phrases})
}

type setVerifiedRequest struct {
	IsVerified bool `json:"isVerified"`
}

// SetVerifiedStatus grants or removes a user's verification badge.
func SetVerifiedStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	var req setVerifiedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isVerified": req.IsVerified, "lastModified": time.Now()}})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, apperr.New(apperr.CodeNotFound, "Usuario no encontrado."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"isVerified": req.IsVerified,
	})
}

// CensorPhrase removes a published phrase from the feed and reverts the
// owner's copy to private, keeping their publicPhrases counter consistent.
func CensorPhrase(w http.ResponseWriter, r *http.Request) {
	admin, err := requireAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	phraseOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "publicPhraseId"))
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "Identificador de frase inválido."))
		return
	}

	var phrase models.PublicPhrase
	err = database.DB.Collection(database.CollPublicPhrases).
		FindOneAndDelete(ctx, bson.M{"_id": phraseOID}).Decode(&phrase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Frase no encontrada."))
			return
		}
		writeError(w, err)
		return
	}

	owner, err := fetchUser(ctx, phrase.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = services.RecordStat(owner, "publicPhrases", -1)

	if _, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{"_id": owner.ID, "phrases.id": phrase.PhraseID},
		bson.M{"$set": bson.M{
			"phrases.$.privacy":   models.PrivacyPrivate,
			"stats.publicPhrases": owner.Stats.PublicPhrases,
			"lastModified":        time.Now(),
		}}); err != nil {
		writeError(w, err)
		return
	}

	log.Info().
		Str("adminId", admin.ID).
		Str("userId", phrase.UserID).
		Str("phraseId", phrase.PhraseID).
		Msg("censored public phrase")

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type updateEnvelopeRequest struct {
	BaseCost             *int                        `json:"baseCost" validate:"omitempty,gt=0"`
	CostIncreasePerLevel *int                        `json:"costIncreasePerLevel" validate:"omitempty,gte=0"`
	ImageCount           *int                        `json:"imageCount" validate:"omitempty,gt=0"`
	XP                   *int                        `json:"xp" validate:"omitempty,gte=0"`
	RarityProbabilities  *models.RarityProbabilities `json:"rarityProbabilities"`
}

// UpdateEnvelope tunes an envelope's economy parameters.
func UpdateEnvelope(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	envelopeID := chi.URLParam(r, "envelopeId")

	var req updateEnvelopeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	set := bson.M{}
	if req.BaseCost != nil {
		set["baseCost"] = *req.BaseCost
	}
	if req.CostIncreasePerLevel != nil {
		set["costIncreasePerLevel"] = *req.CostIncreasePerLevel
	}
	if req.ImageCount != nil {
		set["imageCount"] = *req.ImageCount
	}
	if req.XP != nil {
		set["xp"] = *req.XP
	}
	if p := req.RarityProbabilities; p != nil {
		if p.Common < 0 || p.Rare < 0 || p.Epic < 0 || p.Common+p.Rare+p.Epic != 100 {
			writeError(w, apperr.New(apperr.CodeValidation, "Las probabilidades deben sumar 100."))
			return
		}
		set["rarityProbabilities"] = *p
	}
	if len(set) == 0 {
		writeError(w, apperr.New(apperr.CodeValidation, "Nada que actualizar."))
		return
	}

	res, err := database.DB.Collection(database.CollEnvelopes).
		UpdateOne(ctx, bson.M{"_id": envelopeID}, bson.M{"$set": set})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, apperr.New(apperr.CodeNotFound, "Sobre no encontrado."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type unblockIPRequest struct {
	IP string `json:"ip" validate:"required,ip"`
}

// UnblockIP lifts a rate-limit block early.
func UnblockIP(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}

	var req unblockIPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := middleware.UnblockIP(req.IP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// AddCatalogImage uploads a new cat image to Cloudinary and appends it to
// the catalog with the next numeric id.
func AddCatalogImage(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	if cloudinarySvc == nil {
		writeError(w, apperr.New(apperr.CodeInternal, "Almacenamiento de imágenes no configurado."))
		return
	}

	if err := r.ParseMultipartForm(maxCatalogUploadBytes); err != nil {
		writeError(w, apperr.Wrap(apperr.CodeValidation, err, "Invalid multipart form"))
		return
	}
	theme := r.FormValue("theme")
	rarity := r.FormValue("rarity")
	if theme == "" {
		writeError(w, apperr.New(apperr.CodeValidation, "Falta el tema."))
		return
	}
	switch rarity {
	case models.RarityCommon, models.RarityRare, models.RarityEpic:
	default:
		writeError(w, apperr.New(apperr.CodeValidation, "Rareza inválida."))
		return
	}
	_, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.Wrap(apperr.CodeValidation, err, "Falta el archivo de imagen."))
		return
	}

	url, err := cloudinarySvc.UploadCatalogImage(ctx, header, uuid.NewString())
	if err != nil {
		writeError(w, err)
		return
	}

	cats := database.DB.Collection(database.CollCats)
	var last models.CatImage
	nextID := 1
	err = cats.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.M{"numeric_id": -1})).Decode(&last)
	if err == nil {
		nextID = last.NumericID + 1
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, err)
		return
	}

	image := models.CatImage{
		NumericID: nextID,
		URL:       url,
		Theme:     theme,
		Rarity:    rarity,
	}
	if _, err := cats.InsertOne(ctx, image); err != nil {
		writeError(w, err)
		return
	}
	services.InvalidateCatalogCache(ctx)

	writeJSON(w, http.StatusCreated, image)
}
