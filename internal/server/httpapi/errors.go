package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/jobfind/jobfind/internal/common"
)

// writeServiceError maps a service error onto a status and a fixed
// message. Internal detail only reaches the log.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, common.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "authentication_failed", "bad credentials")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, common.ErrRevokedToken):
		writeError(w, http.StatusUnauthorized, "revoked_token", "refresh token is no longer valid")
	case errors.Is(err, common.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
	case errors.Is(err, common.ErrMissingToken):
		writeError(w, http.StatusBadRequest, "missing_token", "refresh token cookie is required")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", "email already exists")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	default:
		h.log.Error(ctx, op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
