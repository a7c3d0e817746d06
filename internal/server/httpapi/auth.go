package httpapi

import (
	"net/http"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
}

type sessionResponse struct {
	AccessToken string              `json:"access_token"`
	User        models.UserSnapshot `json:"user"`
}

type accountResponse struct {
	User models.UserSnapshot `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "username and password are required")
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(r.Context(), w, "login", err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	writeJSON(w, http.StatusOK, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Refresh(r.Context(), refreshTokenFromCookie(r))
	if err != nil {
		h.writeServiceError(r.Context(), w, "refresh", err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	writeJSON(w, http.StatusOK, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request, p Principal) {
	if err := h.sessions.Logout(r.Context(), p.Email); err != nil {
		h.writeServiceError(r.Context(), w, "logout", err)
		return
	}

	h.expireRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	snapshot, err := h.sessions.Register(r.Context(), services.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     common.RoleUser,
		Profile:  models.Profile{Age: req.Age, Gender: req.Gender, Address: req.Address},
	})
	if err != nil {
		h.writeServiceError(r.Context(), w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request, p Principal) {
	snapshot, err := h.sessions.Account(r.Context(), p.Email)
	if err != nil {
		h.writeServiceError(r.Context(), w, "account", err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{User: snapshot.WithoutRole()})
}
