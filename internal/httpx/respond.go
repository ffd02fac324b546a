package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mbenitez/stockroom/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Every failure is a
// user-retriable condition; nothing here is fatal.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		code = http.StatusBadRequest
	case domain.IsNotFound(err):
		code = http.StatusNotFound
	case domain.IsConflict(err):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrConfirmationMismatch):
		code = http.StatusForbidden
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
