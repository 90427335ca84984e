package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/config"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/middleware"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	cfg           *config.Config
	validate      = validator.New()
	cloudinarySvc *services.CloudinaryService
)

// Init wires the loaded configuration into the handlers package.
func Init(c *config.Config) {
	cfg = c
}

// InitCloudinaryService initializes the Cloudinary client used by the admin
// catalog upload. Optional: without credentials the upload route returns an error.
func InitCloudinaryService(c *config.Config) error {
	svc, err := services.NewCloudinaryService(c.CloudinaryName, c.CloudinaryAPIKey, c.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinarySvc = svc
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps domain errors to their HTTP status and a short
// human-readable message. Anything untyped is logged and surfaced as a
// generic internal error.
func writeError(w http.ResponseWriter, err error) {
	typed := apperr.As(err)
	if typed == nil {
		log.Error().Err(err).Msg("internal error")
		typed = apperr.New(apperr.CodeInternal, "Error Interno del Servidor")
	}
	writeJSON(w, typed.HTTPStatus(), map[string]interface{}{
		"code":    string(typed.Code()),
		"message": typed.Message(),
	})
}

// decodeJSON decodes the request body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.Wrap(apperr.CodeValidation, err, "Invalid field: "+verrs[0].Field())
		}
		return apperr.Wrap(apperr.CodeValidation, err, "Invalid request body")
	}
	return nil
}

// identity returns the authenticated caller. The auth middleware guarantees
// presence on protected routes.
func identity(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id
}

// fetchUser loads a user document, translating a missing document into NotFound.
func fetchUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := database.DB.Collection(database.CollUsers).
		FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.CodeNotFound, "Usuario no encontrado.")
		}
		return nil, err
	}
	return &user, nil
}

// requireAdmin loads the caller's document and checks the stored role — the
// document, not the token, is authoritative for admin actions.
func requireAdmin(r *http.Request) (*models.User, error) {
	user, err := fetchUser(r.Context(), identity(r).UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, apperr.New(apperr.CodeForbidden, "Prohibido: Solo administradores.")
	}
	return user, nil
}
