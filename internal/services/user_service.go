package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"spendmate/internal/config"
	"spendmate/internal/models"
	"spendmate/internal/storage"
)

// UserService defines the interface for user profile operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, displayName, avatarURL string) (*models.User, error)
	GetBasicInfo(ctx context.Context, userID uint) (*models.UserBasicInfo, error)
	Search(ctx context.Context, term string, excludeUserID uint, limit int) ([]models.UserBasicInfo, error)
}

type userService struct {
	userRepo storage.UserRepository
	statsCfg config.StatsConfig
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository, statsCfg config.StatsConfig) UserService {
	return &userService{userRepo: userRepo, statsCfg: statsCfg}
}

// GetUserProfile fetches a user's profile.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserProfile updates the mutable display fields of a profile.
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, displayName, avatarURL string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user %d: %w", userID, err)
	}

	updated := false
	if displayName != "" && user.DisplayName != displayName {
		user.DisplayName = displayName
		updated = true
	}
	if avatarURL != "" && user.AvatarURL != avatarURL {
		user.AvatarURL = avatarURL
		updated = true
	}

	if updated {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("updating user %d: %w", userID, err)
		}
	}
	user.PasswordHash = ""
	return user, nil
}

// GetBasicInfo fetches the public fields of a user's profile.
func (s *userService) GetBasicInfo(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	info, err := s.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user %d: %w", userID, err)
	}
	return info, nil
}

// Search matches users by username or display name, excluding the caller.
// The result size is capped by the configured search limit.
func (s *userService) Search(ctx context.Context, term string, excludeUserID uint, limit int) ([]models.UserBasicInfo, error) {
	maxLimit := s.statsCfg.SearchMaxLimit
	if maxLimit <= 0 {
		maxLimit = 10
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return s.userRepo.Search(ctx, term, excludeUserID, limit)
}
