package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"spendmate/internal/config"
	apiserverHandlers "spendmate/internal/handlers/apiserver"
	"spendmate/internal/kafka"
	"spendmate/internal/middleware"
	spendmateRedis "spendmate/internal/redis"
	"spendmate/internal/services"
	"spendmate/internal/storage"
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

	logging.Info("starting api server",
		zap.String("app", cfg.AppName),
		zap.String("version", cfg.AppVersion))

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		logging.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		logging.Fatal("failed to migrate database schema", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		logging.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	cancelPing()
	tokenBlacklist := spendmateRedis.NewRedisTokenBlacklist(redisClient)

	producer, err := kafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		logging.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	userRepo := storage.NewGormUserRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	expenseRepo := storage.NewGormExpenseRepository(db)
	categoryRepo := storage.NewGormCategoryRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, cfg.Stats)
	friendshipService := services.NewFriendshipService(userRepo, friendshipRepo, expenseRepo, producer, cfg.Kafka, cfg.Stats)
	expenseService := services.NewExpenseService(expenseRepo, categoryRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	authHandler := apiserverHandlers.NewAuthHandler(authService, tokenBlacklist)
	userHandler := apiserverHandlers.NewUserHandler(userService)
	friendshipHandler := apiserverHandlers.NewFriendshipHandler(friendshipService)
	expenseHandler := apiserverHandlers.NewExpenseHandler(expenseService)
	notificationHandler := apiserverHandlers.NewNotificationHandler(notificationService)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist))

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	api.HandleFunc("/users/me", userHandler.GetMyProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/me", userHandler.UpdateMyProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/search", userHandler.SearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUserProfile).Methods(http.MethodGet)

	api.HandleFunc("/friend-requests", friendshipHandler.SendFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/friend-requests/incoming", friendshipHandler.ListPendingIncoming).Methods(http.MethodGet)
	api.HandleFunc("/friend-requests/outgoing", friendshipHandler.ListPendingOutgoing).Methods(http.MethodGet)
	api.HandleFunc("/friend-requests/{friendshipID}/respond", friendshipHandler.Respond).Methods(http.MethodPost)
	api.HandleFunc("/friends", friendshipHandler.ListFriends).Methods(http.MethodGet)
	api.HandleFunc("/friends/{friendID:[0-9]+}/stats", friendshipHandler.FriendStats).Methods(http.MethodGet)

	api.HandleFunc("/expenses", expenseHandler.CreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses", expenseHandler.ListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{expenseID:[0-9]+}", expenseHandler.UpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{expenseID:[0-9]+}", expenseHandler.DeleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/categories", expenseHandler.ListCategories).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID:[0-9]+}/read", notificationHandler.MarkNotificationRead).Methods(http.MethodPost)

	corsOptions := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		gorillaHandlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		gorillaHandlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		gorillaHandlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, gorillaHandlers.AllowCredentials())
	}

	srv := &http.Server{
		Addr:           cfg.APIServer.Host + ":" + cfg.APIServer.Port,
		Handler:        gorillaHandlers.CORS(corsOptions...)(router),
		ReadTimeout:    cfg.APIServer.ReadTimeout,
		WriteTimeout:   cfg.APIServer.WriteTimeout,
		MaxHeaderBytes: cfg.APIServer.MaxHeaderBytes,
	}

	go func() {
		logging.Info("api server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("api server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("forced shutdown", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logging.Error("error closing redis client", zap.Error(err))
	}
	logging.Info("api server stopped")
}
