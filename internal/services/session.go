package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"artshowcase-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	minHandleLength   = 3
	minPasswordLength = 6
	tokenTTLDays      = 30

	profileLoadAttempts = 3
	profileLoadDelay    = 150 * time.Millisecond
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ProfileStore is the persistence surface the session service needs.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// SessionEvent describes an auth-state change pushed to a user's open
// sessions.
type SessionEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// Session event types.
const (
	EventSignedIn       = "signed_in"
	EventSignedOut      = "signed_out"
	EventProfileUpdated = "profile_updated"
)

// SessionNotifier broadcasts auth-state changes to every session of a user.
type SessionNotifier interface {
	NotifySessionChange(userID string, event SessionEvent)
}

// SessionService owns the authenticated identity: sign-up, sign-in,
// sign-out, token validation and the reactive current-identity surface.
type SessionService struct {
	profiles  ProfileStore
	notifier  SessionNotifier
	jwtSecret string

	mu      sync.Mutex
	revoked map[string]time.Time // token -> expiry, for best-effort revocation
}

// NewSessionService creates a new session service. notifier may be nil.
func NewSessionService(profiles ProfileStore, jwtSecret string, notifier SessionNotifier) *SessionService {
	return &SessionService{
		profiles:  profiles,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		revoked:   make(map[string]time.Time),
	}
}

// SignUp registers a new account, creates its profile row and establishes a
// session. The handle is stored lowercase and is immutable afterwards.
func (s *SessionService) SignUp(ctx context.Context, email, password, username, fullName string) (*models.Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < minHandleLength || !handlePattern.MatchString(username) {
		return nil, models.ErrInvalidHandle
	}
	if len(password) < minPasswordLength {
		return nil, models.ErrWeakPassword
	}

	emailTaken, err := s.profiles.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if emailTaken {
		return nil, models.ErrDuplicateAccount
	}

	handleTaken, err := s.profiles.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if handleTaken {
		return nil, models.ErrDuplicateHandle
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		CreatedAt:    time.Now(),
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	token, err := s.issueToken(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.notify(profile.ID, EventSignedIn)

	return &models.Session{
		Token:    token,
		Identity: models.Identity{UserID: profile.ID, Profile: profile},
	}, nil
}

// SignIn establishes a session for an existing account
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.issueToken(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.notify(profile.ID, EventSignedIn)

	return &models.Session{
		Token:    token,
		Identity: models.Identity{UserID: profile.ID, Profile: profile},
	}, nil
}

// SignOut revokes the token. Revocation is best-effort: the session is
// considered closed whatever happens here, so no error is returned and the
// caller always clears its local state.
func (s *SessionService) SignOut(token string) {
	userID, exp, err := s.parseToken(token)
	if err != nil {
		log.Warn().Err(err).Msg("Sign-out with unparseable token")
		return
	}

	s.mu.Lock()
	s.revoked[token] = exp
	for t, e := range s.revoked {
		if time.Now().After(e) {
			delete(s.revoked, t)
		}
	}
	s.mu.Unlock()

	s.notify(userID, EventSignedOut)
}

// CurrentIdentity resolves a token to the caller's identity and profile.
// A profile row that has not materialized yet reports as pending, not as an
// error.
func (s *SessionService) CurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	userID, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.ResolveProfile(ctx, userID), nil
}

// ResolveProfile loads the profile for a known-valid user ID. The row may
// lag account creation when the identity provider materializes it
// asynchronously, so a missing row is retried briefly and then reported as
// pending.
func (s *SessionService) ResolveProfile(ctx context.Context, userID string) *models.Identity {
	for attempt := 0; attempt < profileLoadAttempts; attempt++ {
		profile, err := s.profiles.GetByID(ctx, userID)
		if err == nil {
			return &models.Identity{UserID: userID, Profile: profile}
		}
		if !errors.Is(err, models.ErrProfileNotFound) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
			break
		}

		select {
		case <-ctx.Done():
			return &models.Identity{UserID: userID, ProfilePending: true}
		case <-time.After(profileLoadDelay):
		}
	}

	return &models.Identity{UserID: userID, ProfilePending: true}
}

// issueToken generates a signed JWT for a user
func (s *SessionService) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, tokenTTLDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns the user ID it authenticates
func (s *SessionService) ValidateToken(tokenString string) (string, error) {
	s.mu.Lock()
	_, isRevoked := s.revoked[tokenString]
	s.mu.Unlock()
	if isRevoked {
		return "", models.ErrInvalidToken
	}

	userID, _, err := s.parseToken(tokenString)
	return userID, err
}

func (s *SessionService) parseToken(tokenString string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, models.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", time.Time{}, models.ErrInvalidToken
	}

	exp := time.Time{}
	if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
		exp = expiresAt.Time
	}

	return userID, exp, nil
}

func (s *SessionService) notify(userID string, eventType string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifySessionChange(userID, SessionEvent{Type: eventType, UserID: userID})
}
