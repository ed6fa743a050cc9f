package models

import "github.com/shopspring/decimal"

// Transaction is a single spending entry logged against a Category.
type Transaction struct {
	Record
	// text keeps sqlite from coercing the value to REAL; the postgres
	// migrations declare the column NUMERIC.
	Amount     decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Note       string          `gorm:"type:text;not null" json:"note"`
	CategoryID uint            `gorm:"index;not null" json:"category_id"`
	Category   *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Transaction) ResourceName() string { return "Transaction" }

// OwnerID walks transaction -> category -> budget -> user.
func (t *Transaction) OwnerID(l OwnerLookup) (uint, error) {
	budgetID, err := l.CategoryBudget(t.CategoryID)
	if err != nil {
		return 0, err
	}
	return l.BudgetOwner(budgetID)
}
