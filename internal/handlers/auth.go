package handlers

import (
	"encoding/json"
	"net/http"

	"artshowcase-backend/internal/middleware"
	"artshowcase-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	sessions *services.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
	}
}

// SignUpRequest represents the request body for creating an account
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// SignInRequest represents the request body for signing in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		respondError(w, "email is required", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.SignUp(ctx, req.Email, req.Password, req.Username, req.FullName)
	if err != nil {
		log.Error().
			Err(err).
			Str("username", req.Username).
			Msg("Failed to sign up")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.Identity.UserID).
		Str("username", req.Username).
		Msg("Account created")

	respondJSON(w, http.StatusCreated, session)
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign in")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.Identity.UserID).
		Msg("Signed in")

	respondJSON(w, http.StatusOK, session)
}

// SignOut handles POST /api/v1/auth/signout. Always succeeds: revocation is
// best-effort and the client clears its session regardless.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	h.sessions.SignOut(token)

	log.Info().
		Str("user_id", middleware.GetUserID(r.Context())).
		Msg("Signed out")

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	identity := h.sessions.ResolveProfile(ctx, userID)

	respondJSON(w, http.StatusOK, identity)
}
