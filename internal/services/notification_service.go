package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"spendmate/internal/kafka"
	"spendmate/internal/models"
	"spendmate/internal/storage"
	"spendmate/pkg/logging"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists friendship events as per-user notifications
// and serves them back to the API.
type NotificationService interface {
	// ProcessFriendshipEvent handles one consumed Kafka message. A nil return
	// commits the offset; malformed payloads are dropped, store faults are
	// returned for redelivery.
	ProcessFriendshipEvent(ctx context.Context, msg *confluentKafka.Message) (*models.Notification, error)
	List(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
}

type notificationService struct {
	notificationRepo storage.NotificationRepository
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(notificationRepo storage.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ProcessFriendshipEvent(ctx context.Context, msg *confluentKafka.Message) (*models.Notification, error) {
	var event kafka.FriendshipEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logging.Error("dropping malformed friendship event",
			zap.ByteString("payload", msg.Value),
			zap.Error(err))
		return nil, nil
	}

	var notifType models.NotificationType
	switch event.Type {
	case kafka.EventFriendRequested:
		notifType = models.NotificationFriendRequested
	case kafka.EventFriendAccepted:
		notifType = models.NotificationFriendAccepted
	case kafka.EventFriendRejected:
		notifType = models.NotificationFriendRejected
	default:
		logging.Warn("dropping friendship event of unknown type", zap.String("type", event.Type))
		return nil, nil
	}

	notification := &models.Notification{
		UserID:       event.RecipientID,
		Type:         notifType,
		ActorID:      event.ActorID,
		FriendshipID: event.FriendshipID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("persisting notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("marking notification %d read: %w", notificationID, err)
	}
	return nil
}
