package repository

import (
	"context"
	"fmt"

	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, hashed_password, full_name, bio, is_active, balance, profile_image, push_token, created_at,
	receive_notifications, receive_newsletter, receive_product_updates, receive_feedback_requests,
	appear_in_search_results, allow_data_collection, opt_out_newspaper`

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Bio, &u.IsActive, &u.Balance,
		&u.ProfileImage, &u.PushToken, &u.CreatedAt,
		&u.Options.ReceiveNotifications, &u.Options.ReceiveNewsletter, &u.Options.ReceiveProductUpdates,
		&u.Options.ReceiveFeedbackRequests, &u.Options.AppearInSearchResults, &u.Options.AllowDataCollection,
		&u.Options.OptOutNewspaper,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and fills its id and creation time
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, hashed_password, full_name, bio, is_active,
			receive_notifications, receive_newsletter, receive_product_updates, receive_feedback_requests,
			appear_in_search_results, allow_data_collection, opt_out_newspaper)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, balance, created_at
	`
	o := user.Options
	err := r.db.QueryRow(ctx, query,
		user.Email, user.HashedPassword, user.FullName, user.Bio, user.IsActive,
		o.ReceiveNotifications, o.ReceiveNewsletter, o.ReceiveProductUpdates, o.ReceiveFeedbackRequests,
		o.AppearInSearchResults, o.AllowDataCollection, o.OptOutNewspaper,
	).Scan(&user.ID, &user.Balance, &user.CreatedAt)
	if err != nil {
		return wrapError(err, "create user", "user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapError(err, "get user", fmt.Sprintf("user %d", id))
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, wrapError(err, "get user by email", "user")
	}
	return user, nil
}

// UpdateProfile changes the name and bio, leaving nil fields untouched
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, fullName, bio *string) (*models.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name), bio = COALESCE($3, bio)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id, fullName, bio))
	if err != nil {
		return nil, wrapError(err, "update profile", fmt.Sprintf("user %d", id))
	}
	return user, nil
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, hashedPassword)
	if err != nil {
		return wrapError(err, "update password", "user")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "update password", fmt.Sprintf("user %d", id))
	}
	return nil
}

// UpdateProfileImage sets the profile image URL
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id int64, url string) error {
	query := `UPDATE users SET profile_image = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return wrapError(err, "update profile image", "user")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "update profile image", fmt.Sprintf("user %d", id))
	}
	return nil
}

// UpdateOptions replaces all preference flags of a user
func (r *UserRepository) UpdateOptions(ctx context.Context, id int64, o models.UserOptions) error {
	query := `
		UPDATE users
		SET receive_notifications = $2, receive_newsletter = $3, receive_product_updates = $4,
			receive_feedback_requests = $5, appear_in_search_results = $6, allow_data_collection = $7,
			opt_out_newspaper = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id,
		o.ReceiveNotifications, o.ReceiveNewsletter, o.ReceiveProductUpdates,
		o.ReceiveFeedbackRequests, o.AppearInSearchResults, o.AllowDataCollection, o.OptOutNewspaper,
	)
	if err != nil {
		return wrapError(err, "update options", "user")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "update options", fmt.Sprintf("user %d", id))
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, id int64, pushToken *string) error {
	query := `UPDATE users SET push_token = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, pushToken)
	if err != nil {
		return wrapError(err, "update push token", "user")
	}
	return nil
}

// ListPhotos returns the gallery of a user
func (r *UserRepository) ListPhotos(ctx context.Context, userID int64) ([]*models.UserPhoto, error) {
	query := `SELECT id, user_id, url FROM user_photos WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapError(err, "list photos", "photo")
	}
	defer rows.Close()

	photos := make([]*models.UserPhoto, 0)
	for rows.Next() {
		var p models.UserPhoto
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photos: %w", err)
	}
	return photos, nil
}

// AddPhoto appends a picture to the gallery of a user
func (r *UserRepository) AddPhoto(ctx context.Context, userID int64, url string) (*models.UserPhoto, error) {
	query := `INSERT INTO user_photos (user_id, url) VALUES ($1, $2) RETURNING id`
	photo := &models.UserPhoto{UserID: userID, URL: url}
	if err := r.db.QueryRow(ctx, query, userID, url).Scan(&photo.ID); err != nil {
		return nil, wrapError(err, "add photo", "photo")
	}
	return photo, nil
}
