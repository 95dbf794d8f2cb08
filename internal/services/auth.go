package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	tokenPurposeReset = "password_reset"

	// PasswordResetMessage is returned whether or not the account exists
	PasswordResetMessage = "If an account with that email exists, we have sent a password reset link"
)

// AuthUserStore is the part of the user repository used for authentication
type AuthUserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// Mailer sends an HTML email
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// AuthSettings holds the token settings of the auth service
type AuthSettings struct {
	Secret       string
	AccessTTL    time.Duration
	ResetTTL     time.Duration
	ResetURLBase string
}

// SignupRequest is the payload of a new account
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Token is a bearer token handed to clients
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService handles accounts, credentials and tokens
type AuthService struct {
	users    AuthUserStore
	mailer   Mailer
	settings AuthSettings
	now      func() time.Time
}

// NewAuthService creates a new auth service. mailer may be nil.
func NewAuthService(users AuthUserStore, mailer Mailer, settings AuthSettings) *AuthService {
	return &AuthService{users: users, mailer: mailer, settings: settings, now: time.Now}
}

// Signup creates an account and returns an access token for it
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, *Token, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, apperror.Invalid("a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, nil, apperror.Invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       strings.TrimSpace(req.FullName),
		Bio:            models.DefaultBio,
		IsActive:       true,
		Options:        models.DefaultUserOptions(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Int64("user_id", user.ID).Msg("User signed up")
	return user, token, nil
}

// Login checks credentials and returns an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("incorrect email or password: %w", apperror.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, fmt.Errorf("incorrect email or password: %w", apperror.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", apperror.ErrUnauthorized)
	}

	return s.GenerateJWT(user.ID)
}

// GenerateJWT generates an access token for a user
func (s *AuthService) GenerateJWT(userID int64) (*Token, error) {
	signed, err := s.sign(userID, "", s.settings.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// ValidateJWT validates an access token and returns the user ID
func (s *AuthService) ValidateJWT(tokenString string) (int64, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "" {
		return 0, fmt.Errorf("token is not an access token: %w", apperror.ErrUnauthorized)
	}
	return subject(claims)
}

func (s *AuthService) sign(userID int64, purpose string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	if purpose != "" {
		claims["purpose"] = purpose
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.settings.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.settings.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w: %w", apperror.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: %w", apperror.ErrUnauthorized)
	}
	return claims, nil
}

func subject(claims jwt.MapClaims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("sub not found in token: %w", apperror.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sub is not a user id: %w", apperror.ErrUnauthorized)
	}
	return id, nil
}

// RequestPasswordReset emails a reset link when the account exists.
// The returned message never reveals whether it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) string {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			log.Error().Err(err).Msg("Failed to look up user for password reset")
		}
		return PasswordResetMessage
	}

	token, err := s.sign(user.ID, tokenPurposeReset, s.settings.ResetTTL)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to sign reset token")
		return PasswordResetMessage
	}

	if s.mailer == nil {
		log.Warn().Int64("user_id", user.ID).Msg("No mailer configured, reset email not sent")
		return PasswordResetMessage
	}
	body := resetEmailBody(s.settings.ResetURLBase, token)
	if err := s.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to send reset email")
	}
	return PasswordResetMessage
}

func resetEmailBody(base, token string) string {
	link := base + "?token=" + url.QueryEscape(token)
	return fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`, link)
}

// ResetPassword sets a new password using a reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperror.Invalid("password must be at least %d characters", minPasswordLength)
	}

	claims, err := s.parse(token)
	if err != nil {
		return apperror.Invalid("invalid or expired token")
	}
	if purpose, _ := claims["purpose"].(string); purpose != tokenPurposeReset {
		return apperror.Invalid("invalid or expired token")
	}
	userID, err := subject(claims)
	if err != nil {
		return apperror.Invalid("invalid or expired token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	log.Info().Int64("user_id", userID).Msg("Password reset")
	return nil
}
