package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchkit/backoffice/internal/auth"
	"github.com/merchkit/backoffice/internal/domain/user"
)

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
	Avatar   string `json:"avatar"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	params := user.ListParams{
		Params: listParams(r),
		Role:   user.Role(r.URL.Query().Get("role")),
	}
	items, page, err := h.users.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if req.Role != "" && !user.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         user.RoleStaff,
		Active:       true,
		Avatar:       req.Avatar,
	}
	if req.Role != "" {
		u.Role = user.Role(req.Role)
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != "" && !user.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Role != "" {
		u.Role = user.Role(req.Role)
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Avatar != "" {
		u.Avatar = req.Avatar
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		u.PasswordHash = hash
	}
	if err := h.users.Update(r.Context(), u); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	// An admin cannot delete their own account.
	if claims, ok := claimsFrom(r.Context()); ok && claims.UserID == chi.URLParam(r, "id") {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
