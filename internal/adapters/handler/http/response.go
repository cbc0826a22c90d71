package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrImportFailed):
		return http.StatusBadGateway, "import_failed"
	case errors.Is(err, domain.ErrProtectedUser):
		return http.StatusForbidden, "protected_user"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict, "session_closed"
	case errors.Is(err, domain.ErrBudgetExhausted):
		return http.StatusConflict, "budget_exhausted"
	case errors.Is(err, domain.ErrIncompleteAllocation):
		return http.StatusConflict, "incomplete_allocation"
	case errors.Is(err, domain.ErrBudgetSubmitted):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrNothingToRemove):
		return http.StatusUnprocessableEntity, "nothing_to_remove"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	log := loggerFrom(r.Context())
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		message = "internal server error"
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.String("code", code), zap.Error(err))
	}
	writeError(w, status, code, message)
}

// decodeJSON decodes the request body into v. An empty body leaves v
// untouched and reports io.EOF.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
