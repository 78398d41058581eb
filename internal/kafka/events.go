package kafka

import "time"

// Friendship event types carried on the friendship event topic.
const (
	EventFriendRequested = "friend.requested"
	EventFriendAccepted  = "friend.accepted"
	EventFriendRejected  = "friend.rejected"
)

// FriendshipEvent is the payload published after a friendship state change.
// ActorID is the user who caused the change; RecipientID is the user to be
// notified.
type FriendshipEvent struct {
	Type         string    `json:"type"`
	FriendshipID string    `json:"friendshipId"`
	ActorID      uint      `json:"actorId"`
	RecipientID  uint      `json:"recipientId"`
	Timestamp    time.Time `json:"timestamp"`
}
