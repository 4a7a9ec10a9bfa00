package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ViewService records image views. Failures here must never reach the
// viewer: they are logged and swallowed.
type ViewService struct {
	images ImageStore
}

// NewViewService creates a new view service
func NewViewService(images ImageStore) *ViewService {
	return &ViewService{images: images}
}

// RecordView bumps the image's view counter by exactly one. The increment
// happens in the store as a single atomic UPDATE, so N concurrent viewers
// add exactly N. An unknown image ID is a no-op.
func (s *ViewService) RecordView(ctx context.Context, imageID string) {
	affected, err := s.images.IncrementViews(ctx, imageID)
	if err != nil {
		log.Error().Err(err).Str("image_id", imageID).Msg("Failed to record view")
		return
	}
	if affected == 0 {
		log.Debug().Str("image_id", imageID).Msg("View recorded for unknown image")
	}
}
