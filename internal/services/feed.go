package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artshowcase-backend/internal/models"
)

const (
	defaultFeedLimit    = 20
	maxFeedLimit        = 100
	defaultArtistsLimit = 6
	maxArtistsLimit     = 20
)

// ArtistStore is the profile surface the feed aggregator reads from.
type ArtistStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	ListRecentlyJoined(ctx context.Context, limit int) ([]*models.ArtistSummary, error)
}

// FeedService composes image and profile reads into display-ready feed and
// profile-page payloads. Pure reads: nothing here is cached, every call
// re-queries the store.
type FeedService struct {
	images   ImageStore
	profiles ArtistStore
}

// NewFeedService creates a new feed service
func NewFeedService(images ImageStore, profiles ArtistStore) *FeedService {
	return &FeedService{
		images:   images,
		profiles: profiles,
	}
}

// ListRecent returns the newest images with their owners' public fields,
// most recent first. An empty store yields an empty feed, not an error.
func (s *FeedService) ListRecent(ctx context.Context, limit int) ([]*models.FeedEntry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	entries, err := s.images.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	if entries == nil {
		entries = []*models.FeedEntry{}
	}
	return entries, nil
}

// GetArtistGallery resolves a handle to its profile and that profile's
// images. A handle with no profile fails with ErrProfileNotFound; a profile
// with zero images returns an empty gallery.
func (s *FeedService) GetArtistGallery(ctx context.Context, username string) (*models.ArtistGallery, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	profile, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	images, err := s.images.ListByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	// The profile and image reads are not transactional. An empty gallery is
	// ambiguous between "no uploads" and "profile deleted between the two
	// reads", so re-check before reporting an empty gallery as found.
	if len(images) == 0 {
		if _, err := s.profiles.GetByID(ctx, profile.ID); err != nil {
			if errors.Is(err, models.ErrProfileNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to load gallery: %w", err)
		}
		images = []*models.Image{}
	}

	return &models.ArtistGallery{
		Profile:    profile,
		Images:     images,
		ImageCount: len(images),
	}, nil
}

// ListPopularArtists returns the most recently joined profiles with their
// image counts. This is a recency placeholder, not a popularity ranking:
// no engagement signal is scored.
func (s *FeedService) ListPopularArtists(ctx context.Context, limit int) ([]*models.ArtistSummary, error) {
	if limit <= 0 {
		limit = defaultArtistsLimit
	}
	if limit > maxArtistsLimit {
		limit = maxArtistsLimit
	}

	artists, err := s.profiles.ListRecentlyJoined(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load artists: %w", err)
	}
	if artists == nil {
		artists = []*models.ArtistSummary{}
	}
	return artists, nil
}
