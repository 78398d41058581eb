package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"spendmate/internal/auth"
	"spendmate/internal/middleware"
	"spendmate/internal/models"
	"spendmate/internal/services"
)

var validate = validator.New()

// AuthHandler bundles the authentication HTTP handlers.
type AuthHandler struct {
	AuthService    services.AuthService
	TokenBlacklist auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService services.AuthService, tokenBlacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		AuthService:    authService,
		TokenBlacklist: tokenBlacklist,
	}
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=64"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for login; username may be a username or email.
type LoginRequest struct {
	UsernameOrEmail string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ErrorResponse is the generic error body for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.DisplayName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			writeJSONError(w, err.Error(), http.StatusConflict)
		} else {
			writeJSONError(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, user, err := h.AuthService.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidCredentials) {
			writeJSONError(w, "invalid username or password", http.StatusUnauthorized)
		} else {
			writeJSONError(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/v1/auth/logout by blacklisting the token's JTI.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing authenticated claims", http.StatusUnauthorized)
		return
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		writeJSONError(w, "token cannot be revoked", http.StatusInternalServerError)
		return
	}

	if err := h.TokenBlacklist.Add(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		writeJSONError(w, "logout failed", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// writeJSONResponse sends data as a JSON response with the given status.
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeJSONError sends an error message as a JSON response.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}
