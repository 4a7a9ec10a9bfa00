package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"artshowcase-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sniffLen = 512

// ImageStore is the persistence surface for image records.
type ImageStore interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id string) (*models.Image, error)
	ListRecent(ctx context.Context, limit int) ([]*models.FeedEntry, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Image, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// ObjectStore is the durable binary storage surface.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(address string) string
}

// Upload pipeline stages. Each call walks them in order; any failure resets
// the pipeline to idle with a typed error.
type uploadState int

const (
	stateIdle uploadState = iota
	stateValidating
	stateStoringBinary
	statePersistingRecord
	stateDone
)

func (s uploadState) String() string {
	switch s {
	case stateValidating:
		return "validating"
	case stateStoringBinary:
		return "storing_binary"
	case statePersistingRecord:
		return "persisting_record"
	case stateDone:
		return "done"
	default:
		return "idle"
	}
}

// UploadInput carries one upload submission.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Title       string
	Description string
}

// UploadService turns an uploaded binary into a durable, publicly
// addressable image record.
type UploadService struct {
	images  ImageStore
	objects ObjectStore
}

// NewUploadService creates a new upload service
func NewUploadService(images ImageStore, objects ObjectStore) *UploadService {
	return &UploadService{
		images:  images,
		objects: objects,
	}
}

// Upload validates the payload, writes it to object storage and then
// inserts the image record. The binary is written first: an insert failure
// leaves an orphan object in storage, which is tolerated, while the reverse
// order could leave records pointing at missing binaries.
func (s *UploadService) Upload(ctx context.Context, userID string, in UploadInput) (*models.Image, error) {
	state := stateValidating

	if in.Body == nil || in.FileName == "" || in.Size == 0 {
		return nil, s.fail(state, userID, models.ErrMissingFile)
	}

	contentType := in.ContentType
	body := in.Body
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, sniffLen)
		n, err := io.ReadFull(body, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, s.fail(state, userID, fmt.Errorf("%w: %w", models.ErrStorageWrite, err))
		}
		contentType = http.DetectContentType(buf[:n])
		body = io.MultiReader(bytes.NewReader(buf[:n]), body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, s.fail(state, userID, models.ErrInvalidFileType)
	}

	state = stateStoringBinary

	// Key is namespaced by owner and suffixed with the upload instant so
	// concurrent uploads by the same user cannot overwrite each other.
	key := fmt.Sprintf("%s/%d%s", userID, time.Now().UnixMilli(), strings.ToLower(path.Ext(in.FileName)))

	address, err := s.objects.Upload(ctx, key, contentType, in.Size, body)
	if err != nil {
		if !errors.Is(err, models.ErrStorageWrite) {
			err = fmt.Errorf("%w: %w", models.ErrStorageWrite, err)
		}
		return nil, s.fail(state, userID, err)
	}

	state = statePersistingRecord

	image := &models.Image{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    address,
		Views:       0,
		CreatedAt:   time.Now(),
	}

	if err := s.images.Create(ctx, image); err != nil {
		// The stored binary is now an orphan. Cleaning it up is a storage
		// hygiene concern, not a correctness one: no record references it.
		log.Warn().
			Str("user_id", userID).
			Str("key", key).
			Msg("Image record insert failed, binary left orphaned")
		return nil, s.fail(state, userID, fmt.Errorf("%w: %w", models.ErrRecordInsert, err))
	}

	state = stateDone
	log.Info().
		Str("user_id", userID).
		Str("image_id", image.ID).
		Str("state", state.String()).
		Msg("Image uploaded")

	return image, nil
}

// Delete removes an image's binary and record. The record removal is
// authoritative: if the storage delete fails the row is removed anyway and
// the orphan binary is tolerated, keeping the visible record set correct.
func (s *UploadService) Delete(ctx context.Context, userID, imageID string) error {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}

	if image.UserID != userID {
		return models.ErrNotOwner
	}

	if key := s.objects.KeyFromURL(image.ImageURL); key != "" {
		if err := s.objects.Remove(ctx, key); err != nil {
			log.Warn().
				Err(err).
				Str("image_id", imageID).
				Str("key", key).
				Msg("Failed to remove stored binary, orphan left behind")
		}
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("image_id", imageID).
		Msg("Image deleted")

	return nil
}

func (s *UploadService) fail(state uploadState, userID string, err error) error {
	log.Debug().
		Err(err).
		Str("user_id", userID).
		Str("state", state.String()).
		Msg("Upload pipeline aborted")
	return err
}
