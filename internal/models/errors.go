package models

import "errors"

// Domain errors. Services wrap these with context; handlers check them with
// errors.Is to pick a status code.
var (
	ErrInvalidHandle      = errors.New("username must be at least 3 characters of a-z, 0-9 or _")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrDuplicateHandle    = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrMissingFile     = errors.New("no file provided")
	ErrInvalidFileType = errors.New("file is not an image")
	ErrStorageWrite    = errors.New("failed to store file")
	ErrRecordInsert    = errors.New("failed to save image record")

	ErrProfileNotFound = errors.New("profile not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrNotOwner        = errors.New("image belongs to another user")
)
