package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName    string          `mapstructure:"APP_NAME"`
	AppVersion string          `mapstructure:"APP_VERSION"`
	LogLevel   string          `mapstructure:"LOG_LEVEL"`
	APIServer  APIServerConfig `mapstructure:"API_SERVER"`
	Notifier   NotifierConfig  `mapstructure:"NOTIFIER"`
	Database   DatabaseConfig  `mapstructure:"DATABASE"`
	Auth       AuthConfig      `mapstructure:"AUTH"`
	Redis      RedisConfig     `mapstructure:"REDIS"`
	Kafka      KafkaConfig     `mapstructure:"KAFKA"`
	Stats      StatsConfig     `mapstructure:"STATS"`
	WebSocket  WebSocketConfig `mapstructure:"WEBSOCKET"`
}

// APIServerConfig holds configuration specific to the REST API server.
type APIServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           string        `mapstructure:"PORT"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"MAX_HEADER_BYTES"`
	CORS           CORSConfig    `mapstructure:"CORS"`
}

// NotifierConfig holds configuration for the notification push server.
type NotifierConfig struct {
	Host          string `mapstructure:"HOST"`
	Port          string `mapstructure:"PORT"`
	WebSocketPath string `mapstructure:"WEBSOCKET_PATH"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `mapstructure:"EXPOSED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// DatabaseConfig holds configuration for the database.
type DatabaseConfig struct {
	Type     string `mapstructure:"TYPE"`
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"SSL_MODE"`
}

// AuthConfig holds configuration for authentication (e.g., JWT).
type AuthConfig struct {
	JWTSecretKey string        `mapstructure:"JWT_SECRET_KEY"`
	JWTExpiry    time.Duration `mapstructure:"JWT_EXPIRY"`
}

// RedisConfig holds configuration for Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// KafkaConfig holds configuration for Kafka.
type KafkaConfig struct {
	Brokers              []string `mapstructure:"BROKERS"`
	ClientID             string   `mapstructure:"CLIENT_ID"`
	FriendshipEventTopic string   `mapstructure:"FRIENDSHIP_EVENT_TOPIC"`
	ConsumerGroup        string   `mapstructure:"CONSUMER_GROUP"`
	Protocol             string   `mapstructure:"PROTOCOL"`
}

// StatsConfig holds tuning knobs for spending statistics and user search.
type StatsConfig struct {
	// WindowMonths bounds how far back friend stats aggregation reaches.
	WindowMonths   int `mapstructure:"WINDOW_MONTHS"`
	SearchMaxLimit int `mapstructure:"SEARCH_MAX_LIMIT"`
}

// WebSocketConfig holds configuration for WebSocket connections.
type WebSocketConfig struct {
	WriteWaitSeconds    int `mapstructure:"WRITE_WAIT_SECONDS"`
	PongWaitSeconds     int `mapstructure:"PONG_WAIT_SECONDS"`
	PingPeriodSeconds   int `mapstructure:"PING_PERIOD_SECONDS"`
	MaxMessageSizeBytes int `mapstructure:"MAX_MESSAGE_SIZE_BYTES"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "spendmate")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("API_SERVER.HOST", "0.0.0.0")
	v.SetDefault("API_SERVER.PORT", "8080")
	v.SetDefault("API_SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("API_SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("API_SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB
	v.SetDefault("API_SERVER.CORS.ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	v.SetDefault("API_SERVER.CORS.EXPOSED_HEADERS", []string{"Content-Length"})
	v.SetDefault("API_SERVER.CORS.ALLOW_CREDENTIALS", true)
	v.SetDefault("API_SERVER.CORS.MAX_AGE", 300)

	v.SetDefault("NOTIFIER.HOST", "0.0.0.0")
	v.SetDefault("NOTIFIER.PORT", "8081")
	v.SetDefault("NOTIFIER.WEBSOCKET_PATH", "/ws")

	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "spendmate_db")
	v.SetDefault("DATABASE.SSL_MODE", "disable")

	v.SetDefault("AUTH.JWT_SECRET_KEY", "a_very_secret_key_that_should_be_changed")
	v.SetDefault("AUTH.JWT_EXPIRY", 24*time.Hour)

	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	v.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA.CLIENT_ID", "spendmate")
	v.SetDefault("KAFKA.FRIENDSHIP_EVENT_TOPIC", "spendmate-friendship-events")
	v.SetDefault("KAFKA.CONSUMER_GROUP", "spendmate-notifier")
	v.SetDefault("KAFKA.PROTOCOL", "plaintext")

	v.SetDefault("STATS.WINDOW_MONTHS", 6)
	v.SetDefault("STATS.SEARCH_MAX_LIMIT", 10)

	v.SetDefault("WEBSOCKET.WRITE_WAIT_SECONDS", 10)
	v.SetDefault("WEBSOCKET.PONG_WAIT_SECONDS", 60)
	v.SetDefault("WEBSOCKET.PING_PERIOD_SECONDS", 54) // (60 * 9) / 10
	v.SetDefault("WEBSOCKET.MAX_MESSAGE_SIZE_BYTES", 1024)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Config file not found; defaults and environment still apply.
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
