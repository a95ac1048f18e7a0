package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/merchkit/backoffice/internal/auth"
	"github.com/merchkit/backoffice/internal/domain/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(w, r, err)
		return
	}
	if !u.Active || !auth.CheckPassword(u.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	// Best effort; a failed timestamp update must not block the login.
	_ = h.users.SetLastLogin(r.Context(), u.ID, timeNow())

	respond(w, http.StatusOK, tokenResponse{Token: token, User: u})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
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
		Role:         user.RoleCustomer,
		Active:       true,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		respondDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, tokenResponse{Token: token, User: u})
}

// verifyToken reports whether the presented bearer token is valid,
// without requiring it: storefronts poll this to decide whether a
// session is still live.
func (h *Handler) verifyToken(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		respond(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	_, err := h.tokens.Verify(raw)
	respond(w, http.StatusOK, map[string]bool{"valid": err == nil})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u)
}
