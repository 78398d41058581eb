package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"spendmate/internal/auth"
	"spendmate/internal/config"
	"spendmate/internal/kafka"
	spendmateRedis "spendmate/internal/redis"
	"spendmate/internal/services"
	"spendmate/internal/storage"
	"spendmate/internal/websocket"
	"spendmate/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Fatal("failed to load configuration", zap.Error(err))
	}
	logging.Configure(cfg.LogLevel)
	defer logging.Sync()

	logging.Info("starting notifier",
		zap.String("app", cfg.AppName),
		zap.String("version", cfg.AppVersion))

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		logging.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	tokenBlacklist := spendmateRedis.NewRedisTokenBlacklist(redisClient)

	notificationRepo := storage.NewGormNotificationRepository(db)
	notificationService := services.NewNotificationService(notificationRepo)

	consumer, err := kafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		logging.Fatal("failed to create kafka consumer", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		handler := func(ctx context.Context, msg *confluentKafka.Message) error {
			notification, err := notificationService.ProcessFriendshipEvent(ctx, msg)
			if err != nil {
				return err
			}
			if notification == nil {
				return nil
			}
			payload, err := json.Marshal(notification)
			if err != nil {
				logging.Error("failed to encode notification", zap.Uint("notificationID", notification.ID), zap.Error(err))
				return nil
			}
			hub.Deliver(notification.UserID, payload)
			return nil
		}
		topics := []string{cfg.Kafka.FriendshipEventTopic}
		if err := consumer.Consume(ctx, topics, cfg.Kafka.ConsumerGroup, handler); err != nil {
			logging.Error("kafka consumer stopped with error", zap.Error(err))
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	wsPath := cfg.Notifier.WebSocketPath
	if wsPath == "" {
		wsPath = "/ws"
	}
	router.HandleFunc(wsPath, func(w http.ResponseWriter, r *http.Request) {
		// Browsers cannot set headers on websocket dials, the token rides
		// in the query string instead.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := auth.ValidateToken(r.Context(), tokenString, cfg.Auth.JWTSecretKey, tokenBlacklist)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		websocket.ServeWs(hub, cfg.WebSocket, claims.UserID, w, r)
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:    cfg.Notifier.Host + ":" + cfg.Notifier.Port,
		Handler: router,
	}

	go func() {
		logging.Info("notifier listening", zap.String("addr", srv.Addr), zap.String("path", wsPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("notifier server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("shutting down notifier")

	cancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		logging.Warn("timed out waiting for kafka consumer to stop")
	}
	consumer.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("forced shutdown", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logging.Error("error closing redis client", zap.Error(err))
	}
	logging.Info("notifier stopped")
}
