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

// FriendshipHandler bundles the friendship HTTP handlers.
type FriendshipHandler struct {
	FriendshipService services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler instance.
func NewFriendshipHandler(friendshipService services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{FriendshipService: friendshipService}
}

// SendFriendRequestPayload is the body for creating a friend request.
type SendFriendRequestPayload struct {
	AddresseeID uint `json:"addresseeId" validate:"required,gt=0"`
}

// RespondPayload is the body for answering a pending friend request.
type RespondPayload struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

// SendFriendRequest handles POST /api/v1/friend-requests.
func (h *FriendshipHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload SendFriendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	friendship, err := h.FriendshipService.SendRequest(r.Context(), requesterID, payload.AddresseeID)
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, friendship)
}

// Respond handles POST /api/v1/friend-requests/{friendshipID}/respond.
func (h *FriendshipHandler) Respond(w http.ResponseWriter, r *http.Request) {
	responderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	friendshipID := mux.Vars(r)["friendshipID"]
	if friendshipID == "" {
		writeJSONError(w, "missing friendship ID", http.StatusBadRequest)
		return
	}

	var payload RespondPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.FriendshipService.Respond(r.Context(), friendshipID, responderID, payload.Action)
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"friendshipId": friendshipID,
		"status":       status,
	})
}

// ListFriends handles GET /api/v1/friends.
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.FriendshipService.ListFriends(r.Context(), userID)
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, friends)
}

// ListPendingIncoming handles GET /api/v1/friend-requests/incoming.
func (h *FriendshipHandler) ListPendingIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.FriendshipService.ListPendingIncoming(r.Context(), userID)
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, requests)
}

// ListPendingOutgoing handles GET /api/v1/friend-requests/outgoing.
func (h *FriendshipHandler) ListPendingOutgoing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.FriendshipService.ListPendingOutgoing(r.Context(), userID)
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, requests)
}

// FriendStats handles GET /api/v1/friends/{friendID}/stats.
func (h *FriendshipHandler) FriendStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	friendIDStr := mux.Vars(r)["friendID"]
	friendID, err := strconv.ParseUint(friendIDStr, 10, 32)
	if err != nil || friendID == 0 {
		writeJSONError(w, "invalid friend ID", http.StatusBadRequest)
		return
	}

	stats, err := h.FriendshipService.FriendStats(r.Context(), userID, uint(friendID))
	if err != nil {
		writeFriendshipError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// writeFriendshipError maps friendship service errors onto HTTP statuses.
func writeFriendshipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrFriendshipNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrSelfFriendRequest),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrRequestNotPending),
		errors.Is(err, services.ErrRelationshipExists):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFriends):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	default:
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
