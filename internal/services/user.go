package services

import (
	"context"
	"sort"
	"strings"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	profileFolder = "profile_images"
	galleryFolder = "user_photos"
)

// UserStore is the part of the user repository used for profiles
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName, bio *string) (*models.User, error)
	UpdateProfileImage(ctx context.Context, id int64, url string) error
	UpdateOptions(ctx context.Context, id int64, o models.UserOptions) error
	UpdatePushToken(ctx context.Context, id int64, pushToken *string) error
	ListPhotos(ctx context.Context, userID int64) ([]*models.UserPhoto, error)
	AddPhoto(ctx context.Context, userID int64, url string) (*models.UserPhoto, error)
}

// ProfileUpdate holds the optional profile fields
type ProfileUpdate struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
}

// UserService handles profiles, galleries and preferences
type UserService struct {
	users  UserStore
	images ImageStore
}

// NewUserService creates a new user service
func NewUserService(users UserStore, images ImageStore) *UserService {
	return &UserService{users: users, images: images}
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes name and bio; nil fields stay as they are
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*models.User, error) {
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, apperror.Invalid("full_name must not be empty")
		}
		upd.FullName = &name
	}
	return s.users.UpdateProfile(ctx, userID, upd.FullName, upd.Bio)
}

// UploadProfileImage hosts the image and makes it the profile image
func (s *UserService) UploadProfileImage(ctx context.Context, userID int64, file ImageFile) (*models.User, error) {
	if s.images == nil {
		return nil, apperror.Upstream("upload image", errImageStoreMissing)
	}

	urls, err := uploadAll(ctx, s.images, profileFolder, []ImageFile{file})
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfileImage(ctx, userID, urls[0]); err != nil {
		deleteAll(ctx, s.images, urls)
		return nil, err
	}

	log.Info().Int64("user_id", userID).Str("url", urls[0]).Msg("Profile image updated")
	return s.users.GetByID(ctx, userID)
}

// ListPhotos returns the gallery of a user
func (s *UserService) ListPhotos(ctx context.Context, userID int64) ([]*models.UserPhoto, error) {
	return s.users.ListPhotos(ctx, userID)
}

// AddPhotos hosts the images and appends them to the gallery
func (s *UserService) AddPhotos(ctx context.Context, userID int64, files []ImageFile) ([]*models.UserPhoto, error) {
	if len(files) == 0 {
		return nil, apperror.Invalid("at least one file is required")
	}
	if s.images == nil {
		return nil, apperror.Upstream("upload image", errImageStoreMissing)
	}

	urls, err := uploadAll(ctx, s.images, galleryFolder, files)
	if err != nil {
		return nil, err
	}

	photos := make([]*models.UserPhoto, 0, len(urls))
	for i, url := range urls {
		photo, err := s.users.AddPhoto(ctx, userID, url)
		if err != nil {
			deleteAll(ctx, s.images, urls[i:])
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// optionFields maps each option key to its flag
func optionFields(o *models.UserOptions) map[string]*bool {
	return map[string]*bool{
		"receive_notifications":     &o.ReceiveNotifications,
		"receive_newsletter":        &o.ReceiveNewsletter,
		"receive_product_updates":   &o.ReceiveProductUpdates,
		"receive_feedback_requests": &o.ReceiveFeedbackRequests,
		"appear_in_search_results":  &o.AppearInSearchResults,
		"allow_data_collection":     &o.AllowDataCollection,
		"opt_out_newspaper":         &o.OptOutNewspaper,
	}
}

// GetOptions returns the preferences of a user
func (s *UserService) GetOptions(ctx context.Context, userID int64) (*models.UserOptions, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Options, nil
}

// UpdateOptions sets the given preference flags. Unknown keys and
// non-boolean values are rejected before anything is written.
func (s *UserService) UpdateOptions(ctx context.Context, userID int64, values map[string]any) (*models.UserOptions, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := user.Options
	fields := optionFields(&opts)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field, ok := fields[k]
		if !ok {
			return nil, apperror.Invalid("unknown option %q", k)
		}
		b, ok := values[k].(bool)
		if !ok {
			return nil, apperror.Invalid("option %q must be a boolean", k)
		}
		*field = b
	}

	if err := s.users.UpdateOptions(ctx, userID, opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// RegisterPushToken stores the device token; an empty token unregisters the device
func (s *UserService) RegisterPushToken(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	var value *string
	if token != "" {
		value = &token
	}
	return s.users.UpdatePushToken(ctx, userID, value)
}
