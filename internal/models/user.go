package models

// User represents a registered account.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Email        string `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	DisplayName  string `gorm:"type:varchar(100)" json:"displayName,omitempty"`
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`

	Expenses []Expense `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}

// UserBasicInfo holds minimal public information about a user.
// Used wherever another user's profile is exposed, e.g. friend listings.
type UserBasicInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
