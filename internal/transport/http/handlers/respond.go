package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeInternal logs err under op and hides it from the client.
func writeInternal(w http.ResponseWriter, r *http.Request, log logging.Logger, op string, err error) {
	log.Error(r.Context(), op, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
