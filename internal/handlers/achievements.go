package handlers

import (
	"net/http"

	"github.com/pictocat/backend/internal/services"
)

// GetAchievements returns the static achievement catalog.
func GetAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.AllAchievements)
}
