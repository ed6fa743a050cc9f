package ledger

import (
	"context"

	"budgeter/models"
	"budgeter/pkg/database"
	"budgeter/pkg/events"
)

// BudgetInput carries the creatable and updatable fields of a budget.
type BudgetInput struct {
	Amount int64
}

// BudgetService manages the single budget of a user. A budget is always
// looked up by its owner, so there is no separate ownership check.
type BudgetService struct {
	service
}

func NewBudgetService(store *Store, opts ...Option) *BudgetService {
	return &BudgetService{service: newService(store, opts)}
}

func validateBudget(in BudgetInput) error {
	if in.Amount < 0 {
		return Unprocessable("Budget amount cannot be negative")
	}
	return nil
}

// All returns every budget, deleted ones included.
func (s *BudgetService) All(ctx context.Context) ([]models.Budget, error) {
	var out []models.Budget
	err := s.store.Tx(ctx, func(tx *Store) error {
		var err error
		out, err = tx.AllBudgets()
		return err
	})
	return out, err
}

func (s *BudgetService) Get(ctx context.Context, userID uint) (*models.Budget, error) {
	var out *models.Budget
	err := s.store.Tx(ctx, func(tx *Store) error {
		b, err := tx.UserBudget(userID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFound("Budget not set")
		}
		if err := ensureActive(b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Create inserts a budget for userID, or brings back the user's most recently
// deleted budget with the new values. Either way the caller sees a creation.
func (s *BudgetService) Create(ctx context.Context, userID uint, in BudgetInput) (*models.Budget, error) {
	var (
		out *models.Budget
		typ = events.BudgetCreated
	)
	err := s.store.Tx(ctx, func(tx *Store) error {
		active, err := tx.ActiveBudget(userID)
		if err != nil {
			return err
		}
		if active != nil {
			return Conflict("User with id: %d already has a budget", userID)
		}
		if err := validateBudget(in); err != nil {
			return err
		}

		now := tx.Now()
		deleted, err := tx.LatestDeletedBudget(userID)
		if err != nil {
			return err
		}
		if deleted != nil {
			reactivate(deleted, now)
			deleted.Amount = in.Amount
			if err := tx.Update(deleted); err != nil {
				return budgetWriteError(err, userID)
			}
			out, typ = deleted, events.BudgetReactivated
			return nil
		}

		b := &models.Budget{
			Record: models.Record{CreatedAt: now},
			Amount: in.Amount,
			UserID: userID,
		}
		if err := tx.Insert(b); err != nil {
			return budgetWriteError(err, userID)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, typ, out.ResourceName(), out.ID, userID)
	return out, nil
}

// budgetWriteError turns a hit on the one-active-budget index into Conflict.
func budgetWriteError(err error, userID uint) error {
	if database.IsUniqueViolation(err) {
		return Conflict("User with id: %d already has a budget", userID)
	}
	return err
}

func (s *BudgetService) Update(ctx context.Context, userID uint, in BudgetInput) (*models.Budget, error) {
	var out *models.Budget
	err := s.store.Tx(ctx, func(tx *Store) error {
		b, err := tx.UserBudget(userID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFound("Budget not set")
		}
		if err := ensureActive(b); err != nil {
			return err
		}
		if err := validateBudget(in); err != nil {
			return err
		}
		b.Amount = in.Amount
		touch(b, tx.Now())
		if err := tx.Update(b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BudgetUpdated, out.ResourceName(), out.ID, userID)
	return out, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID uint) error {
	var id uint
	err := s.store.Tx(ctx, func(tx *Store) error {
		b, err := tx.UserBudget(userID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFound("Budget for user %d not found", userID)
		}
		if err := softDelete(b, tx.Now()); err != nil {
			return err
		}
		id = b.ID
		return tx.Update(b)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.BudgetDeleted, "Budget", id, userID)
	return nil
}
