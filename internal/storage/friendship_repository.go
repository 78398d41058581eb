package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"spendmate/internal/models"
)

// FriendshipRepository defines the interface for friendship data operations.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id string) (*models.Friendship, error)
	// FindByPair returns the record relating the unordered pair in any
	// status, or nil when none exists.
	FindByPair(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	// UpdateStatus transitions a pending record to the given status. It
	// returns gorm.ErrRecordNotFound when the record is missing or no
	// longer pending.
	UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error
	ListAcceptedForUser(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListPendingIncoming(ctx context.Context, addresseeID uint) ([]models.Friendship, error)
	ListPendingOutgoing(ctx context.Context, requesterID uint) ([]models.Friendship, error)
	IsAccepted(ctx context.Context, userID1, userID2 uint) (bool, error)
	// InTx runs fn against a repository bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(FriendshipRepository) error) error
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GORM-based FriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

func (r *gormFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

func (r *gormFriendshipRepository) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (r *gormFriendshipRepository) FindByPair(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	low, high := models.CanonicalPair(userID1, userID2)
	var friendship models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &friendship, nil
}

// UpdateStatus transitions the record out of pending. The status predicate
// makes the transition atomic: of two concurrent responders only one update
// matches a row, the other gets gorm.ErrRecordNotFound.
func (r *gormFriendshipRepository) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ? AND status = ?", id, models.FriendshipStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormFriendshipRepository) ListAcceptedForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, models.FriendshipStatusAccepted).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

func (r *gormFriendshipRepository) ListPendingIncoming(ctx context.Context, addresseeID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", addresseeID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

func (r *gormFriendshipRepository) ListPendingOutgoing(ctx context.Context, requesterID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", requesterID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

func (r *gormFriendshipRepository) InTx(ctx context.Context, fn func(FriendshipRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormFriendshipRepository{db: tx})
	})
}

func (r *gormFriendshipRepository) IsAccepted(ctx context.Context, userID1, userID2 uint) (bool, error) {
	low, high := models.CanonicalPair(userID1, userID2)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ? AND status = ?", low, high, models.FriendshipStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
