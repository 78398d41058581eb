package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"spendmate/internal/middleware"
	"spendmate/internal/services"
)

// UserHandler bundles the user profile HTTP handlers.
type UserHandler struct {
	UserService services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// UpdateProfilePayload carries the editable profile fields.
type UpdateProfilePayload struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=64"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
}

// GetMyProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUserProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "failed to load profile", http.StatusInternalServerError)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload UpdateProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateUserProfile(r.Context(), userID, payload.DisplayName, payload.AvatarURL)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusOK, user)
}

// GetUserProfile handles GET /api/v1/users/{userID}.
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userIDStr := mux.Vars(r)["userID"]
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil || userID == 0 {
		writeJSONError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	info, err := h.UserService.GetBasicInfo(r.Context(), uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "failed to load user", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, info)
}

// SearchUsers handles GET /api/v1/users/search?term=...&limit=...
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	term := r.URL.Query().Get("term")
	if term == "" {
		writeJSONError(w, "missing search term", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := h.UserService.Search(r.Context(), term, userID, limit)
	if err != nil {
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, results)
}
