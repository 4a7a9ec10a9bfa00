package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"artshowcase-backend/internal/models"
)

// MockImageStore mocks the ImageStore interface
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Create(ctx context.Context, image *models.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageStore) GetByID(ctx context.Context, id string) (*models.Image, error) {
	args := m.Called(ctx, id)
	if img := args.Get(0); img != nil {
		return img.(*models.Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockImageStore) ListRecent(ctx context.Context, limit int) ([]*models.FeedEntry, error) {
	args := m.Called(ctx, limit)
	if entries := args.Get(0); entries != nil {
		return entries.([]*models.FeedEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockImageStore) ListByUserID(ctx context.Context, userID string) ([]*models.Image, error) {
	args := m.Called(ctx, userID)
	if images := args.Get(0); images != nil {
		return images.([]*models.Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockImageStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockObjectStore mocks the ObjectStore interface
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, size, body)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) KeyFromURL(address string) string {
	args := m.Called(address)
	return args.String(0)
}

func pngPayload() []byte {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	return payload
}

func TestUploadService_Upload_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   UploadInput
		wantErr error
	}{
		{
			name:    "missing file",
			input:   UploadInput{Title: "T"},
			wantErr: models.ErrMissingFile,
		},
		{
			name: "missing filename",
			input: UploadInput{
				ContentType: "image/png",
				Size:        8,
				Body:        bytes.NewReader(pngPayload()),
			},
			wantErr: models.ErrMissingFile,
		},
		{
			name: "declared non-image type",
			input: UploadInput{
				FileName:    "notes.txt",
				ContentType: "text/plain",
				Size:        11,
				Body:        strings.NewReader("hello world"),
			},
			wantErr: models.ErrInvalidFileType,
		},
		{
			name: "sniffed non-image payload",
			input: UploadInput{
				FileName: "sneaky.png",
				Size:     22,
				Body:     strings.NewReader("<html>not an image</html>"),
			},
			wantErr: models.ErrInvalidFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := new(MockImageStore)
			objects := new(MockObjectStore)
			svc := NewUploadService(images, objects)

			image, err := svc.Upload(context.Background(), "user-1", tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, image)
			// Validation failures abort before any network call.
			objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_Upload_StorageFailure(t *testing.T) {
	images := new(MockImageStore)
	objects := new(MockObjectStore)
	objects.On("Upload", mock.Anything, mock.Anything, "image/png", int64(72), mock.Anything).
		Return("", models.ErrStorageWrite)

	svc := NewUploadService(images, objects)

	image, err := svc.Upload(context.Background(), "user-1", UploadInput{
		FileName:    "art.png",
		ContentType: "image/png",
		Size:        72,
		Body:        bytes.NewReader(pngPayload()),
	})

	assert.ErrorIs(t, err, models.ErrStorageWrite)
	assert.Nil(t, image)
	// The pipeline aborts before the record insert: no orphan rows.
	images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadService_Upload_InsertFailure(t *testing.T) {
	images := new(MockImageStore)
	objects := new(MockObjectStore)
	objects.On("Upload", mock.Anything, mock.Anything, "image/png", int64(72), mock.Anything).
		Return("https://cdn.example.com/user-1/1.png", nil)
	images.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := NewUploadService(images, objects)

	image, err := svc.Upload(context.Background(), "user-1", UploadInput{
		FileName:    "art.png",
		ContentType: "image/png",
		Size:        72,
		Body:        bytes.NewReader(pngPayload()),
	})

	// The stored binary becomes an orphan; the error still surfaces.
	assert.ErrorIs(t, err, models.ErrRecordInsert)
	assert.Nil(t, image)
	objects.AssertExpectations(t)
}

func TestUploadService_Upload_Success(t *testing.T) {
	images := new(MockImageStore)
	objects := new(MockObjectStore)

	keyForOwner := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "user-1/") && strings.HasSuffix(key, ".png")
	})
	objects.On("Upload", mock.Anything, keyForOwner, "image/png", int64(72), mock.Anything).
		Return("https://cdn.example.com/user-1/1.png", nil)
	images.On("Create", mock.Anything, mock.MatchedBy(func(img *models.Image) bool {
		return img.UserID == "user-1" &&
			img.ImageURL == "https://cdn.example.com/user-1/1.png" &&
			img.Title == "Sunset" &&
			img.Views == 0
	})).Return(nil)

	svc := NewUploadService(images, objects)

	image, err := svc.Upload(context.Background(), "user-1", UploadInput{
		FileName:    "Sunset.PNG",
		ContentType: "image/png",
		Size:        72,
		Body:        bytes.NewReader(pngPayload()),
		Title:       "Sunset",
	})

	require.NoError(t, err)
	require.NotNil(t, image)
	assert.NotEmpty(t, image.ID)
	assert.Equal(t, "user-1", image.UserID)
	objects.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestUploadService_Upload_SniffsContentType(t *testing.T) {
	images := new(MockImageStore)
	objects := new(MockObjectStore)
	objects.On("Upload", mock.Anything, mock.Anything, "image/png", int64(72), mock.Anything).
		Return("https://cdn.example.com/user-1/1.png", nil)
	images.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewUploadService(images, objects)

	// No declared content type: the payload itself is inspected.
	image, err := svc.Upload(context.Background(), "user-1", UploadInput{
		FileName: "art.png",
		Size:     72,
		Body:     bytes.NewReader(pngPayload()),
	})

	require.NoError(t, err)
	require.NotNil(t, image)
	objects.AssertExpectations(t)
}

func TestUploadService_Delete(t *testing.T) {
	owned := &models.Image{
		ID:       "img-1",
		UserID:   "user-1",
		ImageURL: "https://cdn.example.com/user-1/1.png",
	}

	tests := []struct {
		name      string
		userID    string
		mockSetup func(*MockImageStore, *MockObjectStore)
		wantErr   error
	}{
		{
			name:   "image not found",
			userID: "user-1",
			mockSetup: func(images *MockImageStore, objects *MockObjectStore) {
				images.On("GetByID", mock.Anything, "img-1").Return(nil, models.ErrImageNotFound)
			},
			wantErr: models.ErrImageNotFound,
		},
		{
			name:   "not the owner",
			userID: "user-2",
			mockSetup: func(images *MockImageStore, objects *MockObjectStore) {
				images.On("GetByID", mock.Anything, "img-1").Return(owned, nil)
			},
			wantErr: models.ErrNotOwner,
		},
		{
			name:   "storage removal failure is tolerated",
			userID: "user-1",
			mockSetup: func(images *MockImageStore, objects *MockObjectStore) {
				images.On("GetByID", mock.Anything, "img-1").Return(owned, nil)
				objects.On("KeyFromURL", owned.ImageURL).Return("user-1/1.png")
				objects.On("Remove", mock.Anything, "user-1/1.png").Return(errors.New("s3 down"))
				images.On("Delete", mock.Anything, "img-1").Return(nil)
			},
		},
		{
			name:   "success",
			userID: "user-1",
			mockSetup: func(images *MockImageStore, objects *MockObjectStore) {
				images.On("GetByID", mock.Anything, "img-1").Return(owned, nil)
				objects.On("KeyFromURL", owned.ImageURL).Return("user-1/1.png")
				objects.On("Remove", mock.Anything, "user-1/1.png").Return(nil)
				images.On("Delete", mock.Anything, "img-1").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := new(MockImageStore)
			objects := new(MockObjectStore)
			tt.mockSetup(images, objects)
			svc := NewUploadService(images, objects)

			err := svc.Delete(context.Background(), tt.userID, "img-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				objects.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			images.AssertExpectations(t)
			objects.AssertExpectations(t)
		})
	}
}
