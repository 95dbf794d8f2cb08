package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// imageStoreStub hands out predictable URLs and can fail the nth upload
type imageStoreStub struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failAt   int
	count    int
}

func (s *imageStoreStub) Upload(_ context.Context, folder, filename, _ string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.failAt > 0 && s.count == s.failAt {
		return "", errors.New("bucket unavailable")
	}
	url := fmt.Sprintf("https://img.example/%s/%d-%s", folder, s.count, filename)
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *imageStoreStub) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

func seedUser(users *memUsers) *models.User {
	return users.add(&models.User{Email: "a@b.c", FullName: "Ann", Bio: models.DefaultBio, Options: models.DefaultUserOptions()})
}

func TestUserService_UpdateProfile(t *testing.T) {
	users := newMemUsers()
	u := seedUser(users)
	svc := NewUserService(users, nil)
	ctx := context.Background()

	bio := "I recycle"
	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "I recycle", updated.Bio)
	assert.Equal(t, "Ann", updated.FullName)

	blank := "  "
	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{FullName: &blank})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestUserService_UploadProfileImage(t *testing.T) {
	users := newMemUsers()
	u := seedUser(users)
	images := &imageStoreStub{}
	svc := NewUserService(users, images)
	ctx := context.Background()

	updated, err := svc.UploadProfileImage(ctx, u.ID, ImageFile{Filename: "me.png", ContentType: "image/png", Data: []byte("x")})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImage)
	assert.Equal(t, images.uploaded[0], *updated.ProfileImage)

	t.Run("upload failure writes nothing", func(t *testing.T) {
		images := &imageStoreStub{failAt: 1}
		svc := NewUserService(users, images)
		_, err := svc.UploadProfileImage(ctx, u.ID, ImageFile{Filename: "b.png"})
		assert.ErrorIs(t, err, apperror.ErrUpstream)

		current, _ := users.GetByID(ctx, u.ID)
		assert.Equal(t, *updated.ProfileImage, *current.ProfileImage)
	})

	t.Run("db failure removes the upload", func(t *testing.T) {
		images := &imageStoreStub{}
		users.err = errors.New("db down")
		defer func() { users.err = nil }()

		svc := NewUserService(users, images)
		_, err := svc.UploadProfileImage(ctx, u.ID, ImageFile{Filename: "c.png"})
		require.Error(t, err)
		assert.Equal(t, images.uploaded, images.deleted)
	})
}

func TestUserService_AddPhotos(t *testing.T) {
	users := newMemUsers()
	u := seedUser(users)
	ctx := context.Background()

	t.Run("partial upload failure rolls back", func(t *testing.T) {
		images := &imageStoreStub{failAt: 3}
		svc := NewUserService(users, images)

		_, err := svc.AddPhotos(ctx, u.ID, []ImageFile{{Filename: "1"}, {Filename: "2"}, {Filename: "3"}})
		assert.ErrorIs(t, err, apperror.ErrUpstream)
		assert.ElementsMatch(t, images.uploaded, images.deleted)

		photos, _ := svc.ListPhotos(ctx, u.ID)
		assert.Empty(t, photos)
	})

	t.Run("success", func(t *testing.T) {
		svc := NewUserService(users, &imageStoreStub{})
		photos, err := svc.AddPhotos(ctx, u.ID, []ImageFile{{Filename: "1"}, {Filename: "2"}})
		require.NoError(t, err)
		assert.Len(t, photos, 2)

		listed, err := svc.ListPhotos(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("no files", func(t *testing.T) {
		svc := NewUserService(users, &imageStoreStub{})
		_, err := svc.AddPhotos(ctx, u.ID, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})
}

func TestUserService_Options(t *testing.T) {
	users := newMemUsers()
	u := seedUser(users)
	svc := NewUserService(users, nil)
	ctx := context.Background()

	opts, err := svc.UpdateOptions(ctx, u.ID, map[string]any{
		"receive_newsletter": false,
		"opt_out_newspaper":  true,
	})
	require.NoError(t, err)
	assert.False(t, opts.ReceiveNewsletter)
	assert.True(t, opts.OptOutNewspaper)
	assert.True(t, opts.ReceiveNotifications)

	got, err := svc.GetOptions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, opts, got)

	_, err = svc.UpdateOptions(ctx, u.ID, map[string]any{"dark_mode": true})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.UpdateOptions(ctx, u.ID, map[string]any{"receive_newsletter": "yes", "opt_out_newspaper": false})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	got, _ = svc.GetOptions(ctx, u.ID)
	assert.True(t, got.OptOutNewspaper)
}

func TestUserService_RegisterPushToken(t *testing.T) {
	users := newMemUsers()
	u := seedUser(users)
	svc := NewUserService(users, nil)
	ctx := context.Background()

	require.NoError(t, svc.RegisterPushToken(ctx, u.ID, " device-1 "))
	got, _ := users.GetByID(ctx, u.ID)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "device-1", *got.PushToken)

	require.NoError(t, svc.RegisterPushToken(ctx, u.ID, ""))
	got, _ = users.GetByID(ctx, u.ID)
	assert.Nil(t, got.PushToken)
}
