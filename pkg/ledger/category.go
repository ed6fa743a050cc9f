package ledger

import (
	"context"

	"budgeter/models"
	"budgeter/pkg/events"
)

type CategoryInput struct {
	Name   string
	Amount int64
}

// CategoryService manages the categories under a user's budget.
type CategoryService struct {
	service
}

func NewCategoryService(store *Store, opts ...Option) *CategoryService {
	return &CategoryService{service: newService(store, opts)}
}

func validateCategory(in CategoryInput) error {
	if in.Amount < 0 {
		return Unprocessable("Category amount cannot be negative")
	}
	return nil
}

// All returns every category, deleted ones included.
func (s *CategoryService) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.store.Tx(ctx, func(tx *Store) error {
		var err error
		out, err = tx.AllCategories()
		return err
	})
	return out, err
}

// List returns the active categories of the caller's active budget.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]models.Category, error) {
	var out []models.Category
	err := s.store.Tx(ctx, func(tx *Store) error {
		b, err := tx.ActiveBudget(userID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFound("User with id %d does not have a budget", userID)
		}
		cats, err := tx.ActiveCategories(b.ID)
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			return NotFound("No set categories")
		}
		out = cats
		return nil
	})
	return out, err
}

func (s *CategoryService) Create(ctx context.Context, userID uint, in CategoryInput) (*models.Category, error) {
	var out *models.Category
	err := s.store.Tx(ctx, func(tx *Store) error {
		b, err := tx.UserBudget(userID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFound("Budget not found")
		}
		if err := ensureActive(b); err != nil {
			return err
		}
		if err := validateCategory(in); err != nil {
			return err
		}
		c := &models.Category{
			Record:   models.Record{CreatedAt: tx.Now()},
			Name:     in.Name,
			Amount:   in.Amount,
			BudgetID: b.ID,
		}
		if err := tx.Insert(c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.CategoryCreated, out.ResourceName(), out.ID, userID)
	return out, nil
}

// owned loads a category regardless of its state, then checks the caller
// owns it and that it is still active, in that order.
func (s *CategoryService) owned(tx *Store, userID, id uint) (*models.Category, error) {
	c, err := tx.CategoryByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFound("Category id %d not found", id)
	}
	if err := Authorize(tx, c, userID); err != nil {
		return nil, err
	}
	if err := ensureActive(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id uint, in CategoryInput) (*models.Category, error) {
	var out *models.Category
	err := s.store.Tx(ctx, func(tx *Store) error {
		c, err := s.owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := validateCategory(in); err != nil {
			return err
		}
		c.Name = in.Name
		c.Amount = in.Amount
		touch(c, tx.Now())
		if err := tx.Update(c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.CategoryUpdated, out.ResourceName(), out.ID, userID)
	return out, nil
}

// Delete soft-deletes the category. Its transactions stay visible.
func (s *CategoryService) Delete(ctx context.Context, userID, id uint) error {
	err := s.store.Tx(ctx, func(tx *Store) error {
		c, err := s.owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := softDelete(c, tx.Now()); err != nil {
			return err
		}
		return tx.Update(c)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.CategoryDeleted, "Category", id, userID)
	return nil
}
