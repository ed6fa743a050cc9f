package models

// User owns at most one active Budget. Deleting the row hard-deletes the
// user's budgets through the foreign key cascade declared on Budget.
type User struct {
	Record
	Email          string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	HashedPassword []byte `gorm:"column:password;not null" json:"-"`
}

func (User) ResourceName() string { return "User" }
