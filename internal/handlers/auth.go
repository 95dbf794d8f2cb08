package handlers

import (
	"mime"
	"net/http"

	"recycle-backend/internal/models"
	"recycle-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and password resets
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupResponse is the new account with its access token
type SignupResponse struct {
	User  *models.User    `json:"user"`
	Token *services.Token `json:"token"`
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign up")
		return
	}

	respondJSON(w, http.StatusCreated, SignupResponse{User: user, Token: token})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login with a JSON body or a form
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}

	email := req.Username
	if email == "" {
		email = req.Email
	}
	if email == "" || req.Password == "" {
		respondError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(r.Context(), email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, token)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /api/v1/auth/request-password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message := h.authService.RequestPasswordReset(r.Context(), req.Email)
	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		respondServiceError(w, r, err, "Failed to reset password")
		return
	}

	log.Info().Msg("Password reset completed")
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
