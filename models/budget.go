package models

// Budget is the single spending plan of a user.
type Budget struct {
	Record
	Amount int64 `gorm:"not null" json:"amount"`
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Budget) ResourceName() string { return "Budget" }

// OwnerID returns the budget's direct owner.
func (b *Budget) OwnerID(OwnerLookup) (uint, error) {
	return b.UserID, nil
}
