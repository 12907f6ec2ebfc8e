package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/middleware"
	"github.com/dcode-github/cozycorner/models"
)

type Response struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Warn("response encoding failed")
	}
}

// writeError maps err to its status code. Store failures are logged with
// their cause and reach the client as a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	message := appErr.Message
	if appErr.Code == apperrors.CodeStore {
		logger.FromContext(r.Context()).Error(appErr.Message, "error", appErr.Err, "path", r.URL.Path)
		message = "Internal server error"
	}
	writeJSON(w, appErr.HTTPCode, ErrorResponse{Message: message})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.FromContext(r.Context()).Debug("invalid request body", "error", err)
		return apperrors.Validation("Invalid request payload")
	}
	return nil
}

// session returns the caller resolved by middleware.Auth.
func session(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	s, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}
	return s, ok
}
