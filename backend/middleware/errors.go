// ABOUTME: JSON error responses written by middleware
// ABOUTME: Uses the same error body as the API handlers

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/markalston/live-lottery/backend/models"
)

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message, Code: code})
}
