package middleware

import (
	"encoding/json"
	"net/http"

	"vet-practice-api/internal/platform/apperr"
)

// writeError usa el mismo cuerpo {"error":{...}} que los handlers.
func writeError(w http.ResponseWriter, e *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(e.Kind))
	_ = json.NewEncoder(w).Encode(map[string]any{"error": e})
}
