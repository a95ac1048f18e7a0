package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/domain/catalog"
)

type productRequest struct {
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"comparePrice"`
	Images       []string         `json:"images"`
	CategoryID   string           `json:"categoryId"`
	Inventory    int              `json:"inventory"`
	SKU          string           `json:"sku"`
	Featured     bool             `json:"featured"`
	Active       *bool            `json:"active"`
}

func (req productRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.SKU == "":
		return "sku is required"
	case req.Price.IsNegative():
		return "price must not be negative"
	case req.Inventory < 0:
		return "inventory must not be negative"
	}
	return ""
}

func (req productRequest) toDomain() *catalog.Product {
	slug := req.Slug
	if slug == "" {
		slug = catalog.Slugify(req.Name)
	}
	p := &catalog.Product{
		Name:         req.Name,
		Slug:         slug,
		Description:  req.Description,
		Price:        req.Price,
		ComparePrice: req.ComparePrice,
		Images:       req.Images,
		CategoryID:   req.CategoryID,
		Inventory:    req.Inventory,
		SKU:          req.SKU,
		Featured:     req.Featured,
		Active:       true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	return p
}

// withImageBase prefixes relative image paths with the configured CDN
// base, leaving absolute URLs alone.
func (h *Handler) withImageBase(p *catalog.Product) *catalog.Product {
	if h.imageBaseURL == "" {
		return p
	}
	for i, img := range p.Images {
		if !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
			p.Images[i] = strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(img, "/")
		}
	}
	return p
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	params := catalog.ProductListParams{
		Params:     listParams(r),
		CategoryID: r.URL.Query().Get("category"),
		Featured:   boolParam(r, "featured"),
		Active:     boolParam(r, "active"),
	}
	items, page, err := h.products.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	for i := range items {
		h.withImageBase(&items[i])
	}
	respondList(w, items, page)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.withImageBase(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	p := req.toDomain()
	p.ID = uuid.New().String()
	if err := h.products.Create(r.Context(), p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, h.withImageBase(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	p := req.toDomain()
	p.ID = chi.URLParam(r, "id")
	if err := h.products.Update(r.Context(), p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.withImageBase(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
