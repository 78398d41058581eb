package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipStatus is the lifecycle state of a friendship record.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusRejected FriendshipStatus = "rejected"
)

// Terminal reports whether no further transition is defined from the status.
func (s FriendshipStatus) Terminal() bool {
	return s == FriendshipStatusAccepted || s == FriendshipStatusRejected
}

// Friendship is a directed friend request that becomes a symmetric
// relationship once accepted. Requester/addressee order records who
// initiated; UserLowID/UserHighID hold the same pair in canonical order so
// the unique index rejects a duplicate regardless of direction.
type Friendship struct {
	ID          string           `gorm:"type:uuid;primarykey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requesterId"`
	Requester   User             `gorm:"foreignKey:RequesterID" json:"-"`
	AddresseeID uint             `gorm:"not null;index" json:"addresseeId"`
	Addressee   User             `gorm:"foreignKey:AddresseeID" json:"-"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// BeforeCreate assigns the record id and derives the canonical pair key.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.UserLowID, f.UserHighID = CanonicalPair(f.RequesterID, f.AddresseeID)
	return nil
}

// CanonicalPair returns the two user ids in (low, high) order.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// FriendEntry is a row of a user's friends listing: the accepted record plus
// the other party's public profile.
type FriendEntry struct {
	FriendshipID string           `json:"friendshipId"`
	Status       FriendshipStatus `json:"status"`
	CreatedAt    time.Time        `json:"friendshipCreatedAt"`
	Peer         *UserBasicInfo   `json:"peerUser"`
}

// PendingRequest is a row of a user's incoming or outgoing pending requests.
// Incoming rows carry the requester's profile, outgoing rows the addressee's.
type PendingRequest struct {
	FriendshipID string           `json:"friendshipId"`
	Status       FriendshipStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	Requester    *UserBasicInfo   `json:"requesterUser,omitempty"`
	Addressee    *UserBasicInfo   `json:"addresseeUser,omitempty"`
}
