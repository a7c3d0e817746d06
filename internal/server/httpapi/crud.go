package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/services"
)

type createUserRequest struct {
	registerRequest
	Role      string `json:"role"`
	CompanyID *int64 `json:"companyId"`
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Password  *string `json:"password"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	Address   *string `json:"address"`
	CompanyID *int64  `json:"companyId"`
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid id")
		return 0, false
	}
	return id, true
}

func pageRequest(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return models.PageRequest{Page: page, PageSize: size}.Normalize()
}

// --- users ---

// handleListUsers accepts optional email and name query filters.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request, _ Principal) {
	q := r.URL.Query()
	filter := models.UserFilter{Email: q.Get("email"), Name: q.Get("name")}
	page, err := h.users.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		h.writeServiceError(r.Context(), w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request, _ Principal) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	user, err := h.users.Create(r.Context(), services.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		Profile:   models.Profile{Age: req.Age, Gender: req.Gender, Address: req.Address},
		CompanyID: req.CompanyID,
	})
	if err != nil {
		h.writeServiceError(r.Context(), w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request, _ Principal) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser lets users edit themselves and admins edit anyone.
func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, p Principal) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if p.User.ID != id && p.User.Role != common.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "cannot modify another user")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	user, err := h.users.Update(r.Context(), id, services.UpdateUserRequest{
		Name:      req.Name,
		Password:  req.Password,
		Age:       req.Age,
		Gender:    req.Gender,
		Address:   req.Address,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		h.writeServiceError(r.Context(), w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ Principal) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeServiceError(r.Context(), w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- companies ---

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	page, err := h.companies.List(r.Context(), pageRequest(r))
	if err != nil {
		h.writeServiceError(r.Context(), w, "list companies", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request, _ Principal) {
	var in services.CompanyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	c, err := h.companies.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(r.Context(), w, "create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.companies.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get company", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateCompany(w http.ResponseWriter, r *http.Request, _ Principal) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.CompanyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	c, err := h.companies.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(r.Context(), w, "update company", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCompany(w http.ResponseWriter, r *http.Request, _ Principal) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.companies.Delete(r.Context(), id); err != nil {
		h.writeServiceError(r.Context(), w, "delete company", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
