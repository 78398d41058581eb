package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"spendmate/internal/auth"
	"spendmate/internal/config"
	"spendmate/internal/models"
	"spendmate/internal/storage"
)

var (
	ErrUserAlreadyExists  = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService defines the interface for account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, displayName, email, password string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (token string, user *models.User, err error)
}

type authService struct {
	userRepo storage.UserRepository
	cfg      config.Config
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo storage.UserRepository, cfg config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, username, displayName, email, password string) (*models.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	if email != "" {
		_, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking email: %w", err)
		}
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	newUser := &models.User{
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return newUser, nil
}

// Login verifies credentials and issues a JWT.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, usernameOrEmail)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		} else if err != nil {
			return "", nil, fmt.Errorf("looking up user by email: %w", err)
		}
	} else if err != nil {
		return "", nil, fmt.Errorf("looking up user by username: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.cfg.Auth)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	return token, user, nil
}
