package handlers

import (
	"net/http"

	"artshowcase-backend/internal/middleware"
	"artshowcase-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Submissions larger than this are rejected before buffering.
const maxUploadBytes = 20 << 20

// ImageHandler handles image upload, listing and deletion
type ImageHandler struct {
	uploads *services.UploadService
	views   *services.ViewService
	images  services.ImageStore
}

// NewImageHandler creates a new image handler
func NewImageHandler(uploads *services.UploadService, views *services.ViewService, images services.ImageStore) *ImageHandler {
	return &ImageHandler{
		uploads: uploads,
		views:   views,
		images:  images,
	}
}

// ListMine handles GET /api/v1/images
func (h *ImageHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	images, err := h.images.ListByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list images")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"images": images,
		"total":  len(images),
	})
}

// Upload handles POST /api/v1/images (multipart form: image, title,
// description)
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	in := services.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		in.FileName = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
		in.Size = header.Size
		in.Body = file
	}

	image, err := h.uploads.Upload(ctx, userID, in)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", in.FileName).
			Msg("Failed to upload image")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("image_id", image.ID).
		Str("filename", in.FileName).
		Msg("Image uploaded")

	respondJSON(w, http.StatusCreated, image)
}

// Delete handles DELETE /api/v1/images/{image_id}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	imageID := chi.URLParam(r, "image_id")

	if imageID == "" {
		respondError(w, "image_id is required", http.StatusBadRequest)
		return
	}

	if err := h.uploads.Delete(ctx, userID, imageID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("image_id", imageID).
			Msg("Failed to delete image")
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordView handles POST /api/v1/images/{image_id}/views. Public; always
// responds 204. A failed increment never surfaces to the viewer.
func (h *ImageHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "image_id")
	if imageID != "" {
		h.views.RecordView(r.Context(), imageID)
	}
	w.WriteHeader(http.StatusNoContent)
}
