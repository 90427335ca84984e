package handlers

import (
	"net/http"

	"github.com/pictocat/backend/internal/services"
)

type suggestionsRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=60"`
}

// GetSuggestions asks the language model for phrase ideas on a topic. Any
// upstream failure degrades to an empty list so the composer keeps working.
func GetSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// No key configured degrades the same way an upstream failure does.
	apiKey := ""
	if cfg != nil {
		apiKey = cfg.GeminiAPIKey
	}

	suggestions := services.GenerateSuggestions(r.Context(), apiKey, req.Topic)
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}
