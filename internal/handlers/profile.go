package handlers

import (
	"net/http"
	"time"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio" validate:"omitempty,max=150"`
}

// UpdateProfile changes username and bio. A username change propagates to the
// denormalized copies on the user's published phrases.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == nil && req.Bio == nil {
		writeError(w, apperr.New(apperr.CodeValidation, "Nada que actualizar."))
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	set := bson.M{}
	usernameChanged := false
	if req.Username != nil && *req.Username != user.Username {
		if err := utils.ValidateUsername(*req.Username); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeValidation, err, "Nombre de usuario inválido."))
			return
		}
		count, err := database.DB.Collection(database.CollUsers).
			CountDocuments(ctx, bson.M{"username": *req.Username, "_id": bson.M{"$ne": user.ID}})
		if err != nil {
			writeError(w, err)
			return
		}
		if count > 0 {
			writeError(w, apperr.New(apperr.CodeConflict, "Ese nombre de usuario ya está en uso."))
			return
		}
		set["username"] = *req.Username
		user.Username = *req.Username
		usernameChanged = true
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
		user.Bio = *req.Bio
	}
	if len(set) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	now := time.Now()
	set["lastModified"] = now
	if _, err := database.DB.Collection(database.CollUsers).
		UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
		writeError(w, err)
		return
	}

	if usernameChanged {
		if _, err := database.DB.Collection(database.CollPublicPhrases).UpdateMany(ctx,
			bson.M{"userId": user.ID},
			bson.M{"$set": bson.M{"username": user.Username}}); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"username":     user.Username,
		"bio":          user.Bio,
		"lastModified": now.UTC().Format(time.RFC3339Nano),
	})
}

type updateProfilePictureRequest struct {
	ImageID *int `json:"imageId"`
}

// UpdateProfilePicture sets the avatar to an owned catalog image, or clears
// it when imageId is null.
func UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProfilePictureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.ImageID != nil && !user.HasUnlockedImage(*req.ImageID) {
		writeError(w, apperr.New(apperr.CodeForbidden, "No has desbloqueado esa imagen."))
		return
	}

	now := time.Now()
	if _, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"profilePictureId": req.ImageID, "lastModified": now}}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"profilePictureId": req.ImageID,
		"lastModified":     now.UTC().Format(time.RFC3339Nano),
	})
}
