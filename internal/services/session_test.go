package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"artshowcase-backend/internal/models"
)

// MockProfileStore mocks the ProfileStore interface
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// MockNotifier records broadcast session events
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifySessionChange(userID string, event SessionEvent) {
	m.Called(userID, event)
}

func TestSessionService_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		username  string
		mockSetup func(*MockProfileStore)
		wantErr   error
	}{
		{
			name:     "handle too short",
			email:    "a@example.com",
			password: "secret1",
			username: "ab",
			wantErr:  models.ErrInvalidHandle,
		},
		{
			name:     "handle with invalid characters",
			email:    "a@example.com",
			password: "secret1",
			username: "bad handle!",
			wantErr:  models.ErrInvalidHandle,
		},
		{
			name:     "password too short",
			email:    "a@example.com",
			password: "short",
			username: "artist",
			wantErr:  models.ErrWeakPassword,
		},
		{
			name:     "duplicate email",
			email:    "taken@example.com",
			password: "secret1",
			username: "artist",
			mockSetup: func(store *MockProfileStore) {
				store.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)
			},
			wantErr: models.ErrDuplicateAccount,
		},
		{
			name:     "duplicate handle",
			email:    "new@example.com",
			password: "secret1",
			username: "artist",
			mockSetup: func(store *MockProfileStore) {
				store.On("EmailExists", mock.Anything, "new@example.com").Return(false, nil)
				store.On("UsernameExists", mock.Anything, "artist").Return(true, nil)
			},
			wantErr: models.ErrDuplicateHandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockProfileStore)
			if tt.mockSetup != nil {
				tt.mockSetup(store)
			}
			svc := NewSessionService(store, "testsecret", nil)

			session, err := svc.SignUp(context.Background(), tt.email, tt.password, tt.username, "")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, session)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSessionService_SignUp_Success(t *testing.T) {
	store := new(MockProfileStore)
	notifier := new(MockNotifier)

	store.On("EmailExists", mock.Anything, "artist@example.com").Return(false, nil)
	store.On("UsernameExists", mock.Anything, "artist_1").Return(false, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.Username == "artist_1" && p.Email == "artist@example.com" && p.ID != ""
	})).Return(nil)
	notifier.On("NotifySessionChange", mock.Anything, mock.Anything).Return()

	svc := NewSessionService(store, "testsecret", notifier)

	// Handle and email are normalized to lowercase before validation.
	session, err := svc.SignUp(context.Background(), "Artist@Example.com", "secret1", "Artist_1", "An Artist")

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "artist_1", session.Identity.Profile.Username)
	assert.Equal(t, "An Artist", session.Identity.Profile.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(session.Identity.Profile.PasswordHash), []byte("secret1")))

	userID, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Identity.UserID, userID)

	notifier.AssertCalled(t, "NotifySessionChange", session.Identity.UserID,
		SessionEvent{Type: EventSignedIn, UserID: session.Identity.UserID})
}

func TestSessionService_SignIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Profile{
		ID:           "user-1",
		Username:     "artist",
		Email:        "artist@example.com",
		PasswordHash: string(hash),
	}

	tests := []struct {
		name      string
		email     string
		password  string
		mockSetup func(*MockProfileStore)
		wantErr   error
	}{
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret1",
			mockSetup: func(store *MockProfileStore) {
				store.On("GetByEmail", mock.Anything, "nobody@example.com").
					Return(nil, models.ErrProfileNotFound)
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "artist@example.com",
			password: "wrongpass",
			mockSetup: func(store *MockProfileStore) {
				store.On("GetByEmail", mock.Anything, "artist@example.com").
					Return(account, nil)
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "success",
			email:    "artist@example.com",
			password: "secret1",
			mockSetup: func(store *MockProfileStore) {
				store.On("GetByEmail", mock.Anything, "artist@example.com").
					Return(account, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockProfileStore)
			tt.mockSetup(store)
			svc := NewSessionService(store, "testsecret", nil)

			session, err := svc.SignIn(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, "user-1", session.Identity.UserID)
			assert.NotEmpty(t, session.Token)
		})
	}
}

func TestSessionService_SignOut_RevokesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	store := new(MockProfileStore)
	store.On("GetByEmail", mock.Anything, "artist@example.com").Return(&models.Profile{
		ID:           "user-1",
		Email:        "artist@example.com",
		PasswordHash: string(hash),
	}, nil)
	notifier := new(MockNotifier)
	notifier.On("NotifySessionChange", mock.Anything, mock.Anything).Return()

	svc := NewSessionService(store, "testsecret", notifier)

	session, err := svc.SignIn(context.Background(), "artist@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.ValidateToken(session.Token)
	require.NoError(t, err)

	svc.SignOut(session.Token)

	_, err = svc.ValidateToken(session.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
	notifier.AssertCalled(t, "NotifySessionChange", "user-1",
		SessionEvent{Type: EventSignedOut, UserID: "user-1"})
}

func TestSessionService_SignOut_UnparseableToken(t *testing.T) {
	svc := NewSessionService(new(MockProfileStore), "testsecret", nil)

	// Revocation is best-effort: garbage never panics or errors.
	svc.SignOut("not-a-token")
}

func TestSessionService_CurrentIdentity(t *testing.T) {
	store := new(MockProfileStore)
	profile := &models.Profile{ID: "user-1", Username: "artist"}
	store.On("GetByID", mock.Anything, "user-1").Return(profile, nil)

	svc := NewSessionService(store, "testsecret", nil)
	token, err := svc.issueToken("user-1")
	require.NoError(t, err)

	identity, err := svc.CurrentIdentity(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, profile, identity.Profile)
	assert.False(t, identity.ProfilePending)
}

func TestSessionService_CurrentIdentity_ProfilePending(t *testing.T) {
	store := new(MockProfileStore)
	store.On("GetByID", mock.Anything, "user-1").Return(nil, models.ErrProfileNotFound)

	svc := NewSessionService(store, "testsecret", nil)
	token, err := svc.issueToken("user-1")
	require.NoError(t, err)

	identity, err := svc.CurrentIdentity(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Nil(t, identity.Profile)
	assert.True(t, identity.ProfilePending)
}

func TestSessionService_CurrentIdentity_InvalidToken(t *testing.T) {
	svc := NewSessionService(new(MockProfileStore), "testsecret", nil)

	identity, err := svc.CurrentIdentity(context.Background(), "garbage")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
	assert.Nil(t, identity)
}

func TestSessionService_ValidateToken_WrongSecret(t *testing.T) {
	issuer := NewSessionService(new(MockProfileStore), "secret-a", nil)
	verifier := NewSessionService(new(MockProfileStore), "secret-b", nil)

	token, err := issuer.issueToken("user-1")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
