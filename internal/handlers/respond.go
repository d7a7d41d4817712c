package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/metrics"
	"github.com/kardemumma/kardemumma/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the error taxonomy onto status codes. Unexpected failures
// are logged with detail server-side and surfaced as a generic message.
func writeError(w http.ResponseWriter, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Already in use"})
	case errors.Is(err, app.ErrAuthRequired):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Admin context required"})
	case errors.Is(err, app.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	default:
		logger.Error.Printf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	}
}

// pathID parses the {id} path segment; a malformed id is a validation error,
// not a lookup miss.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &app.ValidationError{Fields: map[string]string{"id": "must be an integer"}}
	}
	return id, nil
}

// authenticate resolves the admin for a request; on failure it writes 401
// and returns false.
func authenticate(service *app.Service, w http.ResponseWriter, r *http.Request) (*app.AdminContext, bool) {
	admin, err := service.Auth.Authenticate(r.Context(), r)
	if err != nil {
		if !errors.Is(err, app.ErrAuthRequired) {
			logger.Error.Printf("Auth failed: %v", err)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthenticated"})
		return nil, false
	}
	return admin, true
}

func observeRequest(r *http.Request, start time.Time) {
	metrics.APIRequestDuration.WithLabelValues(
		r.URL.Path,
		r.Method,
		"200",
	).Observe(time.Since(start).Seconds())
}
