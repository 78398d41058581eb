package models

import "time"

// Expense is a single spending record owned by one user.
type Expense struct {
	BaseModel
	UserID      uint      `gorm:"not null;index" json:"userId"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Amount      float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	Category    Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SpentAt     time.Time `gorm:"not null;index" json:"spentAt"`
}

// FriendStats is the aggregated view of a friend's spending, restricted to
// the configured recent window. Monetary figures are rounded to 2 decimals.
type FriendStats struct {
	TotalExpenses     int             `json:"totalExpenses"`
	TotalAmount       float64         `json:"totalAmount"`
	AverageAmount     float64         `json:"averageAmount"`
	MonthlyBreakdown  []MonthlyStat   `json:"monthlyBreakdown"`
	CategoryBreakdown []CategoryStat  `json:"categoryBreakdown"`
}

// MonthlyStat is one month's bucket, keyed YYYY-MM.
type MonthlyStat struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// CategoryStat is one category's bucket.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// TableName specifies the table name for the Expense model.
func (Expense) TableName() string {
	return "expenses"
}
