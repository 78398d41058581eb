package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"spendmate/internal/models"
	"spendmate/internal/storage"
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// ExpenseService defines the interface for a user's own expense records.
// Every operation is scoped to the owning user.
type ExpenseService interface {
	Create(ctx context.Context, userID uint, amount float64, description string, categoryID uint, spentAt time.Time) (*models.Expense, error)
	Update(ctx context.Context, userID, expenseID uint, amount float64, description string, categoryID uint, spentAt time.Time) (*models.Expense, error)
	Delete(ctx context.Context, userID, expenseID uint) error
	List(ctx context.Context, userID uint) ([]models.Expense, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type expenseService struct {
	expenseRepo  storage.ExpenseRepository
	categoryRepo storage.CategoryRepository
}

// NewExpenseService creates a new ExpenseService instance.
func NewExpenseService(expenseRepo storage.ExpenseRepository, categoryRepo storage.CategoryRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, categoryRepo: categoryRepo}
}

func (s *expenseService) Create(ctx context.Context, userID uint, amount float64, description string, categoryID uint, spentAt time.Time) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("checking category %d: %w", categoryID, err)
	}
	if spentAt.IsZero() {
		spentAt = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		CategoryID:  categoryID,
		SpentAt:     spentAt,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}
	return s.expenseRepo.GetByID(ctx, expense.ID)
}

func (s *expenseService) Update(ctx context.Context, userID, expenseID uint, amount float64, description string, categoryID uint, spentAt time.Time) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("fetching expense %d: %w", expenseID, err)
	}
	// Another user's expense is invisible to the caller.
	if expense.UserID != userID {
		return nil, ErrExpenseNotFound
	}

	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("checking category %d: %w", categoryID, err)
	}

	expense.Amount = amount
	expense.Description = description
	expense.CategoryID = categoryID
	if !spentAt.IsZero() {
		expense.SpentAt = spentAt
	}
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("updating expense %d: %w", expenseID, err)
	}
	return s.expenseRepo.GetByID(ctx, expenseID)
}

func (s *expenseService) Delete(ctx context.Context, userID, expenseID uint) error {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("fetching expense %d: %w", expenseID, err)
	}
	if expense.UserID != userID {
		return ErrExpenseNotFound
	}
	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("deleting expense %d: %w", expenseID, err)
	}
	return nil
}

func (s *expenseService) List(ctx context.Context, userID uint) ([]models.Expense, error) {
	expenses, err := s.expenseRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for user %d: %w", userID, err)
	}
	return expenses, nil
}

func (s *expenseService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}
