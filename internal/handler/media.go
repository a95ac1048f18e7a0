package handler

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchkit/backoffice/internal/domain/media"
)

// maxUploadBytes bounds a single upload request.
const maxUploadBytes = 32 << 20

// uploadMedia accepts multipart form files, pushes each to the media
// host and stores the resulting records.
func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	uploaded := make([]media.Media, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable file part")
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		dataURI := fmt.Sprintf("data:%s;base64,%s",
			contentType, base64.StdEncoding.EncodeToString(data))

		url, err := h.mediaHost.Upload(r.Context(), dataURI)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		m := media.Media{
			ID:          uuid.New().String(),
			URL:         url,
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
		}
		if err := h.mediaStore.Create(r.Context(), &m); err != nil {
			respondDomainError(w, r, err)
			return
		}
		uploaded = append(uploaded, m)
	}

	respond(w, http.StatusCreated, map[string]any{"media": uploaded})
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	items, page, err := h.mediaStore.List(r.Context(), listParams(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) getMedia(w http.ResponseWriter, r *http.Request) {
	m, err := h.mediaStore.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, m)
}

// deleteMedia removes the record and, best effort, the hosted asset.
// A host failure is logged but does not keep the record around.
func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.mediaStore.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if publicID := h.mediaHost.PublicIDFromURL(m.URL); publicID != "" {
		if err := h.mediaHost.Delete(r.Context(), publicID); err != nil {
			zctx.From(r.Context()).Warn("media host delete failed",
				zap.String("public_id", publicID), zap.Error(err))
		}
	}

	if err := h.mediaStore.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "media deleted"})
}
