package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"skill-swap-backend/internal/apperr"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse acknowledges a request that returns no resource
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondError maps err onto a status and a client-safe message. Unexpected
// errors are logged and reported to Sentry.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}
	respondJSON(w, status, ErrorResponse{
		Error: apperr.PublicMessage(err),
		Code:  string(apperr.KindOf(err)),
	})
}

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// decodeJSON reads at most maxBodyBytes of the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large").WithStatus(http.StatusRequestEntityTooLarge)
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
