package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchkit/backoffice/internal/domain/contact"
)

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// createContact is the storefront contact form; it needs no token.
func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}

	c := &contact.Contact{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Status:  contact.StatusNew,
	}
	if err := h.contacts.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	params := contact.ListParams{
		Params:    listParams(r),
		Status:    contact.Status(r.URL.Query().Get("status")),
		Important: boolParam(r, "important"),
	}
	items, page, err := h.contacts.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) updateContactStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := contact.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.contacts.SetStatus(r.Context(), id, status); err != nil {
		respondDomainError(w, r, err)
		return
	}
	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

type importantRequest struct {
	Important bool `json:"important"`
}

func (h *Handler) updateContactImportant(w http.ResponseWriter, r *http.Request) {
	var req importantRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.contacts.SetImportant(r.Context(), id, req.Important); err != nil {
		respondDomainError(w, r, err)
		return
	}
	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

// replyContact records the reply text; the message flips to replied in
// the same statement.
func (h *Handler) replyContact(w http.ResponseWriter, r *http.Request) {
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
	if err := h.contacts.SetReply(r.Context(), id, req.Reply); err != nil {
		respondDomainError(w, r, err)
		return
	}
	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
