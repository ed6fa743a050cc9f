package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgeter/models"

	"gorm.io/gorm"
)

// Store is the persistence layer for users, budgets, categories and
// transactions. It never filters on deleted_at unless a method says so;
// lifecycle decisions belong to the services.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

type StoreOption func(*Store)

// WithClock replaces the timestamp source used for created/updated/deleted stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the current instant, truncated to microseconds so values
// survive a round trip through postgres unchanged.
func (s *Store) Now() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// DB exposes the underlying handle for tooling that works below the services.
func (s *Store) DB() *gorm.DB { return s.db }

// Tx runs fn inside one database transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&Store{db: gtx, now: s.now})
	})
}

func (s *Store) Insert(value any) error {
	return s.db.Create(value).Error
}

// Update writes every column of value, including nil lifecycle stamps.
func (s *Store) Update(value any) error {
	return s.db.Save(value).Error
}

// take returns nil, nil when the query matches no row.
func take[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) UserByID(id uint) (*models.User, error) {
	return take[models.User](s.db.Where("id = ?", id))
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	return take[models.User](s.db.Where("email = ?", email))
}

// DeleteUser hard-deletes a user. The budgets of the user go with it through
// the foreign key cascade; this is the only hard delete in the system.
func (s *Store) DeleteUser(id uint) error {
	return s.db.Delete(&models.User{}, id).Error
}

// UserBudget returns the user's active budget, or the most recently deleted
// one when no active budget exists.
func (s *Store) UserBudget(userID uint) (*models.Budget, error) {
	return take[models.Budget](s.db.
		Where("user_id = ?", userID).
		Order("deleted_at IS NULL DESC").
		Order("deleted_at DESC").
		Order("id DESC"))
}

func (s *Store) ActiveBudget(userID uint) (*models.Budget, error) {
	return take[models.Budget](s.db.
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("id"))
}

func (s *Store) LatestDeletedBudget(userID uint) (*models.Budget, error) {
	return take[models.Budget](s.db.
		Where("user_id = ? AND deleted_at IS NOT NULL", userID).
		Order("deleted_at DESC").
		Order("id DESC"))
}

func (s *Store) CategoryByID(id uint) (*models.Category, error) {
	return take[models.Category](s.db.Where("id = ?", id))
}

func (s *Store) TransactionByID(id uint) (*models.Transaction, error) {
	return take[models.Transaction](s.db.Where("id = ?", id))
}

func (s *Store) ActiveCategories(budgetID uint) ([]models.Category, error) {
	var out []models.Category
	err := s.db.Where("budget_id = ? AND deleted_at IS NULL", budgetID).Order("id").Find(&out).Error
	return out, err
}

// ActiveTransactionsOwnedBy joins transactions to their budget owner. Deleted
// categories and budgets do not hide their transactions.
func (s *Store) ActiveTransactionsOwnedBy(userID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.db.
		Select("transactions.*").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Joins("JOIN budgets ON budgets.id = categories.budget_id").
		Where("budgets.user_id = ? AND transactions.deleted_at IS NULL", userID).
		Order("transactions.id").
		Find(&out).Error
	return out, err
}

func (s *Store) AllBudgets() ([]models.Budget, error) {
	var out []models.Budget
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *Store) AllCategories() ([]models.Category, error) {
	var out []models.Category
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *Store) AllTransactions() ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

// BudgetOwner implements models.OwnerLookup.
func (s *Store) BudgetOwner(budgetID uint) (uint, error) {
	var b models.Budget
	err := s.db.Select("id", "user_id").Where("id = ?", budgetID).Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("budget %d: %w", budgetID, models.ErrBrokenOwnerChain)
	}
	if err != nil {
		return 0, err
	}
	return b.UserID, nil
}

// CategoryBudget implements models.OwnerLookup.
func (s *Store) CategoryBudget(categoryID uint) (uint, error) {
	var c models.Category
	err := s.db.Select("id", "budget_id").Where("id = ?", categoryID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("category %d: %w", categoryID, models.ErrBrokenOwnerChain)
	}
	if err != nil {
		return 0, err
	}
	return c.BudgetID, nil
}
