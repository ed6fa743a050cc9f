package ledger

import (
	"context"

	"budgeter/models"
	"budgeter/pkg/events"

	"github.com/shopspring/decimal"
)

type TransactionInput struct {
	Amount     decimal.Decimal
	Note       string
	CategoryID uint
}

// TransactionUpdate holds the fields that can change after creation. The
// category of a transaction is fixed.
type TransactionUpdate struct {
	Amount decimal.Decimal
	Note   string
}

type TransactionService struct {
	service
}

func NewTransactionService(store *Store, opts ...Option) *TransactionService {
	return &TransactionService{service: newService(store, opts)}
}

// Bounds on a transaction amount: at most maxAmountIntDigits digits before
// the decimal point and maxAmountScale after it.
const (
	maxAmountIntDigits = 15
	maxAmountScale     = 10
)

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return Unprocessable("Transaction amount cannot be negative")
	}
	// Exponent and NumDigits read the coefficient only; formatting an
	// unchecked amount expands it to 10^exp digits.
	exp := int64(amount.Exponent())
	if exp < -maxAmountScale || int64(amount.NumDigits())+exp > maxAmountIntDigits {
		return Unprocessable("Transaction amount is out of range")
	}
	return nil
}

// All returns every transaction, deleted ones included.
func (s *TransactionService) All(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.store.Tx(ctx, func(tx *Store) error {
		var err error
		out, err = tx.AllTransactions()
		return err
	})
	return out, err
}

// List returns the caller's active transactions, including those whose
// category or budget has since been deleted.
func (s *TransactionService) List(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.store.Tx(ctx, func(tx *Store) error {
		txns, err := tx.ActiveTransactionsOwnedBy(userID)
		if err != nil {
			return err
		}
		if len(txns) == 0 {
			return NotFound("No set transactions")
		}
		out = txns
		return nil
	})
	return out, err
}

// owned resolves a transaction by id and checks existence, deletion and
// ownership in that order.
func (s *TransactionService) owned(tx *Store, userID, id uint) (*models.Transaction, error) {
	t, err := tx.TransactionByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFound("Transaction id %d not found", id)
	}
	if err := ensureActive(t); err != nil {
		return nil, err
	}
	if err := Authorize(tx, t, userID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.store.Tx(ctx, func(tx *Store) error {
		t, err := s.owned(tx, userID, id)
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TransactionService) Create(ctx context.Context, userID uint, in TransactionInput) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.store.Tx(ctx, func(tx *Store) error {
		c, err := tx.CategoryByID(in.CategoryID)
		if err != nil {
			return err
		}
		b, err := tx.UserBudget(userID)
		if err != nil {
			return err
		}
		if c == nil {
			return NotFound("Category does not exist")
		}
		if b == nil {
			return NotFound("Budget does not exist")
		}
		if err := ensureActive(c); err != nil {
			return err
		}
		if err := ensureActive(b); err != nil {
			return err
		}
		if s.strictCategory {
			if err := Authorize(tx, c, userID); err != nil {
				return err
			}
		}
		if err := validateAmount(in.Amount); err != nil {
			return err
		}
		t := &models.Transaction{
			Record:     models.Record{CreatedAt: tx.Now()},
			Amount:     in.Amount,
			Note:       in.Note,
			CategoryID: c.ID,
		}
		if err := tx.Insert(t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TransactionCreated, out.ResourceName(), out.ID, userID)
	return out, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id uint, in TransactionUpdate) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.store.Tx(ctx, func(tx *Store) error {
		t, err := s.owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := validateAmount(in.Amount); err != nil {
			return err
		}
		t.Amount = in.Amount
		t.Note = in.Note
		touch(t, tx.Now())
		if err := tx.Update(t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TransactionUpdated, out.ResourceName(), out.ID, userID)
	return out, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id uint) error {
	err := s.store.Tx(ctx, func(tx *Store) error {
		t, err := s.owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := softDelete(t, tx.Now()); err != nil {
			return err
		}
		return tx.Update(t)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TransactionDeleted, "Transaction", id, userID)
	return nil
}
