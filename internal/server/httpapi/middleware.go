package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/models"
)

// Principal is the verified caller of an authenticated request.
type Principal struct {
	Email string
	User  models.UserSnapshot
}

type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, p Principal)

// authenticated verifies the bearer access token and hands the resulting
// principal to next as an argument.
func (h *Handler) authenticated(next authedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}
		claims, err := h.tokens.Verify(token, auth.KindAccess)
		if err != nil {
			h.log.Debug(r.Context(), "access token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		next(w, r, Principal{Email: claims.Subject, User: claims.User})
	}
}

// admin is authenticated plus a role check on the token snapshot.
func (h *Handler) admin(next authedHandlerFunc) http.HandlerFunc {
	return h.authenticated(func(w http.ResponseWriter, r *http.Request, p Principal) {
		if p.User.Role != common.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next(w, r, p)
	})
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// logRequests writes one debug line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.log.Debug(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", status,
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}
