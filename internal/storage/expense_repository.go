package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spendmate/internal/models"
)

// ExpenseRepository defines the interface for expense data operations.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uint) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID uint) ([]models.Expense, error)
	// ListForUserSince returns the user's expenses spent at or after the
	// cutoff, category preloaded, newest first.
	ListForUserSince(ctx context.Context, userID uint, since time.Time) ([]models.Expense, error)
}

type gormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GORM-based ExpenseRepository.
func NewGormExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &gormExpenseRepository{db: db}
}

func (r *gormExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *gormExpenseRepository) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).Preload("Category").First(&expense, id).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *gormExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	if expense.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *gormExpenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

func (r *gormExpenseRepository) ListForUser(ctx context.Context, userID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Category").
		Order("spent_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *gormExpenseRepository) ListForUserSince(ctx context.Context, userID uint, since time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND spent_at >= ?", userID, since).
		Preload("Category").
		Order("spent_at DESC").
		Find(&expenses).Error
	return expenses, err
}
