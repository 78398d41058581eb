package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spendmate/internal/config"
	"spendmate/internal/models"
)

// InitDB initializes the database connection using the provided configuration.
// The returned handle is injected into repositories; there is no package-level
// connection.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		var dsnParts []string
		dsnParts = append(dsnParts, fmt.Sprintf("host=%s", cfg.Host))
		dsnParts = append(dsnParts, fmt.Sprintf("port=%d", cfg.Port))
		dsnParts = append(dsnParts, fmt.Sprintf("user=%s", cfg.User))
		dsnParts = append(dsnParts, fmt.Sprintf("dbname=%s", cfg.DBName))
		if cfg.Password != "" {
			dsnParts = append(dsnParts, fmt.Sprintf("password=%s", cfg.Password))
		}
		dsnParts = append(dsnParts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))

		dialector = postgres.Open(strings.Join(dsnParts, " "))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// friendship pair constraint can be classified as a conflict.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrateTables runs GORM's auto-migration for all defined models and
// seeds the default categories when the table is empty.
func AutoMigrateTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Expense{},
		&models.Friendship{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count == 0 {
		for _, name := range models.DefaultCategories {
			if err := db.Create(&models.Category{Name: name}).Error; err != nil {
				return fmt.Errorf("seeding category %q: %w", name, err)
			}
		}
	}
	return nil
}
