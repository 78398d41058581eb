package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spendmate/internal/models"
)

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-based NotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *gormNotificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkRead stamps the notification as read. The userID guard keeps one user
// from acknowledging another's notifications.
func (r *gormNotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
