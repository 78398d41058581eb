package models

import "time"

// NotificationType names the friendship lifecycle events a user can be
// notified about.
type NotificationType string

const (
	NotificationFriendRequested NotificationType = "friend.requested"
	NotificationFriendAccepted  NotificationType = "friend.accepted"
	NotificationFriendRejected  NotificationType = "friend.rejected"
)

// Notification is a persisted event addressed to one user. The notifier
// writes these from the Kafka stream; the API serves them back.
type Notification struct {
	BaseModel
	UserID       uint             `gorm:"not null;index" json:"userId"`
	Type         NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	ActorID      uint             `gorm:"not null" json:"actorId"`
	Actor        User             `gorm:"foreignKey:ActorID" json:"-"`
	FriendshipID string           `gorm:"type:uuid;not null" json:"friendshipId"`
	ReadAt       *time.Time       `json:"readAt,omitempty"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
