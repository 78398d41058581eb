package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"spendmate/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, term string, excludeUserID uint, limit int) ([]models.UserBasicInfo, error)
	GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user record in the database.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// Search performs a case-insensitive substring match on username and
// display name, excluding the caller. Only public fields are selected.
func (r *gormUserRepository) Search(ctx context.Context, term string, excludeUserID uint, limit int) ([]models.UserBasicInfo, error) {
	var users []models.UserBasicInfo
	pattern := "%" + strings.ToLower(term) + "%"

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("(LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?) AND id != ?", pattern, pattern, excludeUserID).
		Select("id", "username", "display_name", "avatar_url").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetBasicInfoByID retrieves minimal public user info by ID.
func (r *gormUserRepository) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	var basicInfo models.UserBasicInfo
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "display_name", "avatar_url").
		Where("id = ?", id).
		First(&basicInfo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &basicInfo, nil
}

// GetMultipleBasicInfoByIDs retrieves minimal public user info for a list of user IDs.
func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	var basicInfos []*models.UserBasicInfo
	if len(userIDs) == 0 {
		return basicInfos, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "display_name", "avatar_url").
		Where("id IN ?", userIDs).
		Find(&basicInfos).Error
	if err != nil {
		return nil, err
	}
	return basicInfos, nil
}
