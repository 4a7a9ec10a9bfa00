package repository

import (
	"context"
	"fmt"

	"artshowcase-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageRepository handles database operations for images
type ImageRepository struct {
	db *pgxpool.Pool
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create creates a new image record
func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO images (id, user_id, title, description, image_url, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		image.ID, image.UserID, image.Title, image.Description,
		image.ImageURL, image.Views, image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	query := `
		SELECT id, user_id, title, description, image_url, views, created_at
		FROM images
		WHERE id = $1
	`
	var image models.Image
	err := r.db.QueryRow(ctx, query, id).Scan(
		&image.ID, &image.UserID, &image.Title, &image.Description,
		&image.ImageURL, &image.Views, &image.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("image: %w", models.ErrImageNotFound)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}

// ListRecent retrieves the newest images joined with their owners' public
// fields. The owner is nil for an image whose profile row no longer exists.
func (r *ImageRepository) ListRecent(ctx context.Context, limit int) ([]*models.FeedEntry, error) {
	query := `
		SELECT i.id, i.user_id, i.title, i.description, i.image_url, i.views, i.created_at,
		       p.id, p.username, p.full_name, p.avatar_url
		FROM images i
		LEFT JOIN profiles p ON p.id = i.user_id
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var entries []*models.FeedEntry
	for rows.Next() {
		var entry models.FeedEntry
		var ownerID, ownerUsername, ownerFullName, ownerAvatarURL *string
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Title, &entry.Description,
			&entry.ImageURL, &entry.Views, &entry.CreatedAt,
			&ownerID, &ownerUsername, &ownerFullName, &ownerAvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		if ownerID != nil {
			entry.Owner = &models.OwnerSummary{
				ID:        *ownerID,
				Username:  *ownerUsername,
				FullName:  *ownerFullName,
				AvatarURL: *ownerAvatarURL,
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return entries, nil
}

// ListByUserID retrieves all images owned by a user, newest first
func (r *ImageRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Image, error) {
	query := `
		SELECT id, user_id, title, description, image_url, views, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*models.Image
	for rows.Next() {
		var image models.Image
		err := rows.Scan(
			&image.ID, &image.UserID, &image.Title, &image.Description,
			&image.ImageURL, &image.Views, &image.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, &image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// Delete deletes an image record by ID
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM images WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("image: %w", models.ErrImageNotFound)
	}
	return nil
}

// IncrementViews bumps the view counter by one in a single UPDATE so
// concurrent viewers never lose an increment. Returns the number of rows
// touched: zero means the image does not exist.
func (r *ImageRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query := `UPDATE images SET views = views + 1 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return result.RowsAffected(), nil
}
