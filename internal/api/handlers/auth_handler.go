package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/videoflow/videoflow-be/internal/auth"
	"github.com/videoflow/videoflow-be/internal/services"
)

const minPasswordLength = 6

// AuthHandler handles registration and login.
type AuthHandler struct {
	users services.UserServiceProvider
	auth  *auth.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, authManager *auth.Manager) *AuthHandler {
	return &AuthHandler{users: users, auth: authManager}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var fields []services.FieldError
	if strings.TrimSpace(payload.Username) == "" {
		fields = append(fields, services.FieldError{Field: "username", Message: "Username is required"})
	}
	if !validEmail(payload.Email) {
		fields = append(fields, services.FieldError{Field: "email", Message: "Invalid email format"})
	}
	if len(payload.Password) < minPasswordLength {
		fields = append(fields, services.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	user, err := h.users.Register(strings.TrimSpace(payload.Username), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeMessage(w, http.StatusConflict, "Email already exists")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		writeMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var fields []services.FieldError
	if !validEmail(payload.Email) {
		fields = append(fields, services.FieldError{Field: "email", Message: "Invalid email format"})
	}
	if payload.Password == "" {
		fields = append(fields, services.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		writeMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}
