package handlers

import (
	"net/http"
	"strconv"

	"artshowcase-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FeedHandler handles public feed and profile-page HTTP requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{
		feed: feed,
	}
}

// ListRecent handles GET /api/v1/feed
func (h *FeedHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	entries, err := h.feed.ListRecent(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load feed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"images": entries,
		"total":  len(entries),
	})
}

// ArtistGallery handles GET /api/v1/artists/{username}
func (h *FeedHandler) ArtistGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	if username == "" {
		respondError(w, "username is required", http.StatusBadRequest)
		return
	}

	gallery, err := h.feed.GetArtistGallery(ctx, username)
	if err != nil {
		log.Error().
			Err(err).
			Str("username", username).
			Msg("Failed to load artist gallery")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, gallery)
}

// PopularArtists handles GET /api/v1/artists/popular
func (h *FeedHandler) PopularArtists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	artists, err := h.feed.ListPopularArtists(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load popular artists")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"artists": artists,
		"total":   len(artists),
	})
}
