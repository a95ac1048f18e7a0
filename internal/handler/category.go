package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchkit/backoffice/internal/domain/catalog"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    string `json:"parentId"`
	Active      *bool  `json:"active"`
}

func (req categoryRequest) toDomain() *catalog.Category {
	slug := req.Slug
	if slug == "" {
		slug = catalog.Slugify(req.Name)
	}
	c := &catalog.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Image:       req.Image,
		ParentID:    req.ParentID,
		Active:      true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	return c
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, page, err := h.categories.List(r.Context(), listParams(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := req.toDomain()
	c.ID = uuid.New().String()
	if err := h.categories.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := req.toDomain()
	c.ID = chi.URLParam(r, "id")
	if err := h.categories.Update(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
