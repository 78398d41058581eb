package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"spendmate/internal/config"
	"spendmate/pkg/logging"
)

// MessageHandler is a function type for processing consumed Kafka messages.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer defines the interface for a Kafka message consumer.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

// confluentKafkaConsumer is an implementation of MessageConsumer using confluent-kafka-go.
type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
}

// NewConfluentKafkaConsumer creates a new Kafka consumer instance. The group
// is fixed when Consume is called.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig) (MessageConsumer, error) {
	return &confluentKafkaConsumer{cfg: cfg}, nil
}

// Consume starts consuming messages from the specified topics and group.
// It blocks until the context is canceled or a fatal error occurs. Offsets
// are committed only after the handler returns nil.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	err = c.consumer.SubscribeTopics(topics, nil)
	if err != nil {
		_ = c.consumer.Close()
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	logging.Info("kafka consumer started",
		zap.String("group_id", groupID),
		zap.Strings("topics", topics))

	run := true
	for run {
		select {
		case <-ctx.Done():
			logging.Info("context canceled, shutting down consumer", zap.String("group_id", groupID))
			run = false
		default:
			ev := c.consumer.Poll(1000)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				if err := handler(ctx, e); err != nil {
					logging.Error("error processing kafka message",
						zap.String("group_id", groupID),
						zap.String("topic", *e.TopicPartition.Topic),
						zap.Int64("offset", int64(e.TopicPartition.Offset)),
						zap.Error(err))
				} else {
					if _, err := c.consumer.CommitMessage(e); err != nil {
						logging.Error("failed to commit offset",
							zap.String("group_id", groupID),
							zap.String("topic", *e.TopicPartition.Topic),
							zap.Int64("offset", int64(e.TopicPartition.Offset)),
							zap.Error(err))
					}
				}
			case kafka.Error:
				logging.Error("kafka consumer error",
					zap.String("group_id", groupID),
					zap.Bool("fatal", e.IsFatal()),
					zap.Error(e))
				if e.IsFatal() {
					run = false
					return e
				}
			case kafka.AssignedPartitions:
				c.consumer.Assign(e.Partitions)
			case kafka.RevokedPartitions:
				c.consumer.Unassign()
			default:
			}
		}
	}
	return nil
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			logging.Error("error closing kafka consumer", zap.String("group_id", c.groupID), zap.Error(err))
		}
		c.consumer = nil
	}
}
