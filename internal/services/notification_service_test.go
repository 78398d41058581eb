package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spendmate/internal/kafka"
	"spendmate/internal/models"
)

type fakeNotificationRepo struct {
	notifications []models.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = uint(len(r.notifications) + 1)
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uint) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			now := time.Now()
			r.notifications[i].ReadAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func kafkaMessage(t *testing.T, event kafka.FriendshipEvent) *confluentKafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	topic := "friendship-events"
	return &confluentKafka.Message{
		TopicPartition: confluentKafka.TopicPartition{Topic: &topic},
		Value:          payload,
	}
}

func TestProcessFriendshipEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a notification for the recipient", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo)

		friendshipID := uuid.NewString()
		notification, err := svc.ProcessFriendshipEvent(ctx, kafkaMessage(t, kafka.FriendshipEvent{
			Type:         kafka.EventFriendAccepted,
			FriendshipID: friendshipID,
			ActorID:      2,
			RecipientID:  1,
			Timestamp:    time.Now(),
		}))
		require.NoError(t, err)
		require.NotNil(t, notification)
		assert.Equal(t, uint(1), notification.UserID)
		assert.Equal(t, uint(2), notification.ActorID)
		assert.Equal(t, models.NotificationFriendAccepted, notification.Type)
		assert.Equal(t, friendshipID, notification.FriendshipID)
		assert.Len(t, repo.notifications, 1)
	})

	t.Run("drops malformed payloads without error", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo)

		topic := "friendship-events"
		notification, err := svc.ProcessFriendshipEvent(ctx, &confluentKafka.Message{
			TopicPartition: confluentKafka.TopicPartition{Topic: &topic},
			Value:          []byte("{not json"),
		})
		require.NoError(t, err)
		assert.Nil(t, notification)
		assert.Empty(t, repo.notifications)
	})

	t.Run("drops events of unknown type", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo)

		notification, err := svc.ProcessFriendshipEvent(ctx, kafkaMessage(t, kafka.FriendshipEvent{
			Type:        "friend.poked",
			ActorID:     2,
			RecipientID: 1,
		}))
		require.NoError(t, err)
		assert.Nil(t, notification)
		assert.Empty(t, repo.notifications)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)

	notification, err := svc.ProcessFriendshipEvent(ctx, kafkaMessage(t, kafka.FriendshipEvent{
		Type:        kafka.EventFriendRequested,
		ActorID:     2,
		RecipientID: 1,
	}))
	require.NoError(t, err)

	t.Run("owner marks read", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, 1, notification.ID))
		assert.NotNil(t, repo.notifications[0].ReadAt)
	})

	t.Run("another user's notification reads as absent", func(t *testing.T) {
		err := svc.MarkRead(ctx, 2, notification.ID)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := svc.MarkRead(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})
}
