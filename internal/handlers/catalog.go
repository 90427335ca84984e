package handlers

import (
	"net/http"

	"github.com/pictocat/backend/internal/services"
)

// GetCatalog returns every cat image, cached in Redis on the hot path.
func GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := services.LoadCatalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}
