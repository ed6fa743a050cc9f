package models

// Category partitions a Budget.
type Category struct {
	Record
	ReferenceNumber *int64  `json:"reference_number,omitempty"`
	Name            string  `gorm:"size:255;not null" json:"name"`
	Amount          int64   `gorm:"not null" json:"amount"`
	BudgetID        uint    `gorm:"index;not null" json:"budget_id"`
	Budget          *Budget `gorm:"foreignKey:BudgetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Category) ResourceName() string { return "Category" }

// OwnerID walks category -> budget -> user.
func (c *Category) OwnerID(l OwnerLookup) (uint, error) {
	return l.BudgetOwner(c.BudgetID)
}
