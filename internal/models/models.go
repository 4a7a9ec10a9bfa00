package models

import "time"

// Profile represents a user's public identity. Email and password hash are
// account credentials and never leave the server.
type Profile struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"-"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Image represents one uploaded artwork and its metadata.
type Image struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnerSummary is the public slice of a profile embedded in feed entries.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// FeedEntry is an image joined with its owner's public fields. Owner is nil
// when the owning profile row is gone.
type FeedEntry struct {
	Image
	Owner *OwnerSummary `json:"profile,omitempty"`
}

// ArtistSummary is a profile plus its aggregate image count.
type ArtistSummary struct {
	Profile
	ImageCount int64 `json:"image_count"`
}

// ArtistGallery is the full public profile page payload.
type ArtistGallery struct {
	Profile    *Profile `json:"profile"`
	Images     []*Image `json:"images"`
	ImageCount int      `json:"image_count"`
}

// Identity is the authenticated caller. Profile is nil while ProfilePending
// is true: the account exists but its profile row has not materialized yet.
type Identity struct {
	UserID         string   `json:"user_id"`
	Profile        *Profile `json:"profile,omitempty"`
	ProfilePending bool     `json:"profile_pending,omitempty"`
}

// Session is an established sign-in: a bearer token plus the identity it
// authenticates.
type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}
