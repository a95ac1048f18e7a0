package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchkit/backoffice/internal/domain/review"
)

type createReviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var req createReviewRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, review.ErrInvalidRating.Error())
		return
	}

	rev := &review.Review{
		ID:         uuid.New().String(),
		ProductID:  req.ProductID,
		CustomerID: claims.UserID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
	}
	if err := h.reviews.Create(r.Context(), rev); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, rev)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	params := review.ListParams{
		Params:    listParams(r),
		ProductID: r.URL.Query().Get("product"),
		Approved:  boolParam(r, "approved"),
	}
	items, page, err := h.reviews.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	rev, err := h.reviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rev)
}

type approveRequest struct {
	Approved bool `json:"approved"`
}

func (h *Handler) approveReview(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.reviews.SetApproved(r.Context(), id, req.Approved); err != nil {
		respondDomainError(w, r, err)
		return
	}
	rev, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rev)
}

type replyRequest struct {
	Reply string `json:"reply"`
}

func (h *Handler) replyReview(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reply == "" {
		respondError(w, http.StatusBadRequest, "reply is required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.reviews.SetReply(r.Context(), id, req.Reply); err != nil {
		respondDomainError(w, r, err)
		return
	}
	rev, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, rev)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
