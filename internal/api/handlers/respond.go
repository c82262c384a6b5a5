package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/buk/tasker-be/internal/auth"
	"github.com/buk/tasker-be/internal/models"
	"github.com/buk/tasker-be/internal/services"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeServiceError translates the service error taxonomy to HTTP.
// "Does not exist" and "not yours" both come through as ErrNotFound and
// map to the same 404 so existence cannot be probed.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeErrorCode(w, http.StatusBadRequest, ve.Code(), ve.Message)
	case errors.Is(err, services.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, services.ErrUsernameTaken):
		writeErrorCode(w, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeErrorCode(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

// currentUser resolves the authenticated principal to its user record.
// A principal with no matching row is a server-side invariant break and
// is reported as a 500, never a 404.
func currentUser(w http.ResponseWriter, r *http.Request, users services.UserServiceProvider) (models.User, bool) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authentication")
		return models.User{}, false
	}

	user, err := users.ResolveUser(claims.Username)
	if err != nil {
		log.Error().Err(err).Str("username", claims.Username).Msg("Authenticated principal not found in store")
		writeErrorCode(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return models.User{}, false
	}
	return user, true
}
