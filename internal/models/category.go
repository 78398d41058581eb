package models

// Category is a spending category. A small default taxonomy is seeded at
// migration time; users may add their own.
type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
}

// DefaultCategories are seeded once when the table is empty.
var DefaultCategories = []string{
	"food",
	"transport",
	"housing",
	"entertainment",
	"health",
	"shopping",
	"other",
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}
