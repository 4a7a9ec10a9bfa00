package repository

import (
	"context"
	"fmt"

	"artshowcase-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, username, email, password_hash, full_name, bio, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Username, profile.Email, profile.PasswordHash,
		profile.FullName, profile.Bio, profile.AvatarURL, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at
		FROM profiles
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a profile by its public handle
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at
		FROM profiles
		WHERE username = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

// GetByEmail retrieves a profile by account email
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at
		FROM profiles
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *ProfileRepository) scanOne(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID, &profile.Username, &profile.Email, &profile.PasswordHash,
		&profile.FullName, &profile.Bio, &profile.AvatarURL, &profile.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("profile: %w", models.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// EmailExists checks if an account with the email already exists
func (r *ProfileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UsernameExists checks if a handle is already taken
func (r *ProfileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ListRecentlyJoined retrieves the most recently created profiles with their
// image counts, newest first.
func (r *ProfileRepository) ListRecentlyJoined(ctx context.Context, limit int) ([]*models.ArtistSummary, error) {
	query := `
		SELECT p.id, p.username, p.full_name, p.bio, p.avatar_url, p.created_at,
		       COUNT(i.id)
		FROM profiles p
		LEFT JOIN images i ON i.user_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var artists []*models.ArtistSummary
	for rows.Next() {
		var artist models.ArtistSummary
		err := rows.Scan(
			&artist.ID, &artist.Username, &artist.FullName, &artist.Bio,
			&artist.AvatarURL, &artist.CreatedAt, &artist.ImageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		artists = append(artists, &artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return artists, nil
}
