package models

import "errors"

// ErrBrokenOwnerChain is returned when a link of the owner chain
// (transaction -> category -> budget -> user) is missing.
var ErrBrokenOwnerChain = errors.New("owner chain is broken")

// OwnerLookup resolves single hops of the owner chain. Implementations must
// see soft-deleted rows: ownership does not depend on lifecycle state.
type OwnerLookup interface {
	BudgetOwner(budgetID uint) (uint, error)
	CategoryBudget(categoryID uint) (uint, error)
}

// Owned is implemented by every resource whose owning user can be derived.
type Owned interface {
	Resource
	OwnerID(l OwnerLookup) (uint, error)
}
