package ledger

import (
	"context"
	"testing"

	"budgeter/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed creates a user with a budget and one category.
func seed(t *testing.T, f *fixture, email string) (uint, *models.Category) {
	t.Helper()
	ctx := context.Background()
	uid := mkUser(t, f.store, email)
	_, err := f.bud.Create(ctx, uid, BudgetInput{Amount: 1000})
	require.NoError(t, err)
	c, err := f.cat.Create(ctx, uid, CategoryInput{Name: "Food", Amount: 300})
	require.NoError(t, err)
	return uid, c
}

func TestTransaction_CreateGetList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")

	_, err := f.txn.List(ctx, uid)
	assert.EqualError(t, err, "No set transactions")

	created, err := f.txn.Create(ctx, uid, TransactionInput{
		Amount: decimal.RequireFromString("12.50"), Note: "lunch", CategoryID: c.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, created.CategoryID)

	got, err := f.txn.Get(ctx, uid, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Amount))
	assert.Equal(t, "lunch", got.Note)

	list, err := f.txn.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestTransaction_CreatePreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")
	nobudget := mkUser(t, f.store, "nobudget@example.com")

	_, err := f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: 9999})
	assert.EqualError(t, err, "Category does not exist")

	_, err = f.txn.Create(ctx, nobudget, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: c.ID})
	assert.EqualError(t, err, "Budget does not exist")

	_, err = f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(-5), Note: "x", CategoryID: c.ID})
	assert.ErrorIs(t, err, ErrUnprocessable)
	assert.EqualError(t, err, "Transaction amount cannot be negative")

	require.NoError(t, f.cat.Delete(ctx, uid, c.ID))
	_, err = f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: c.ID})
	assert.EqualError(t, err, "Category is deleted")

	all, err := f.txn.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransaction_AmountKeepsPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")

	want := decimal.RequireFromString("123456789012345.6789012345")
	created, err := f.txn.Create(ctx, uid, TransactionInput{Amount: want, Note: "exact", CategoryID: c.ID})
	require.NoError(t, err)

	got, err := f.txn.Get(ctx, uid, created.ID)
	require.NoError(t, err)
	assert.True(t, want.Equal(got.Amount), "got %s", got.Amount)
}

func TestTransaction_AmountRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")

	for _, raw := range []string{"1e50000000", "1e2000000000", "1e-50000000", "1000000000000000", "0.00000000001"} {
		amt, err := decimal.NewFromString(raw)
		require.NoError(t, err, raw)
		_, err = f.txn.Create(ctx, uid, TransactionInput{Amount: amt, Note: "x", CategoryID: c.ID})
		assert.ErrorIs(t, err, ErrUnprocessable, raw)
		assert.EqualError(t, err, "Transaction amount is out of range", raw)
	}

	created, err := f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.RequireFromString("999999999999999.99"), Note: "max", CategoryID: c.ID})
	require.NoError(t, err)

	_, err = f.txn.Update(ctx, uid, created.ID, TransactionUpdate{Amount: decimal.RequireFromString("1e50000000"), Note: "x"})
	assert.EqualError(t, err, "Transaction amount is out of range")

	got, err := f.txn.Get(ctx, uid, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "max", got.Note)
}

func TestTransaction_CreateWithDeletedBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")
	require.NoError(t, f.bud.Delete(ctx, uid))

	_, err := f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: c.ID})
	assert.EqualError(t, err, "Budget is deleted")
}

func TestTransaction_ForeignCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("strict", func(t *testing.T) {
		f := newFixture(t)
		_, theirs := seed(t, f, "owner@example.com")
		me, _ := seed(t, f, "me@example.com")

		_, err := f.txn.Create(ctx, me, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: theirs.ID})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("lenient", func(t *testing.T) {
		f := newFixture(t, WithStrictCategoryOwnership(false))
		owner, theirs := seed(t, f, "owner@example.com")
		me, _ := seed(t, f, "me@example.com")

		created, err := f.txn.Create(ctx, me, TransactionInput{Amount: decimal.NewFromInt(1), Note: "x", CategoryID: theirs.ID})
		require.NoError(t, err)

		// the row belongs to the category owner, not the creator
		_, err = f.txn.Get(ctx, me, created.ID)
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = f.txn.Get(ctx, owner, created.ID)
		assert.NoError(t, err)
	})
}

func TestTransaction_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")
	tr, err := f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(10), Note: "a", CategoryID: c.ID})
	require.NoError(t, err)

	_, err = f.txn.Update(ctx, uid, tr.ID, TransactionUpdate{Amount: decimal.NewFromInt(-1), Note: "b"})
	assert.ErrorIs(t, err, ErrUnprocessable)

	up, err := f.txn.Update(ctx, uid, tr.ID, TransactionUpdate{Amount: decimal.NewFromInt(0), Note: "b"})
	require.NoError(t, err)
	assert.True(t, up.Amount.IsZero())
	assert.Equal(t, "b", up.Note)
	assert.Equal(t, c.ID, up.CategoryID)
	assert.NotNil(t, up.UpdatedAt)

	require.NoError(t, f.txn.Delete(ctx, uid, tr.ID))

	_, err = f.txn.Get(ctx, uid, tr.ID)
	assert.EqualError(t, err, "Transaction is deleted")
	_, err = f.txn.Update(ctx, uid, tr.ID, TransactionUpdate{Amount: decimal.NewFromInt(1)})
	assert.EqualError(t, err, "Transaction is deleted")
	err = f.txn.Delete(ctx, uid, tr.ID)
	assert.EqualError(t, err, "Transaction is deleted")

	_, err = f.txn.List(ctx, uid)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.txn.Delete(ctx, uid, 4242)
	assert.EqualError(t, err, "Transaction id 4242 not found")
}

func TestTransaction_Isolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, c := seed(t, f, "owner@example.com")
	other, _ := seed(t, f, "other@example.com")
	tr, err := f.txn.Create(ctx, owner, TransactionInput{Amount: decimal.NewFromInt(3), Note: "a", CategoryID: c.ID})
	require.NoError(t, err)

	_, err = f.txn.Get(ctx, other, tr.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.txn.Update(ctx, other, tr.ID, TransactionUpdate{Amount: decimal.NewFromInt(1), Note: "mine"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	err = f.txn.Delete(ctx, other, tr.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.txn.List(ctx, other)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.txn.Get(ctx, owner, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Note)
}

func TestTransaction_SurvivesCategoryAndBudgetDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, c := seed(t, f, "a@example.com")
	tr, err := f.txn.Create(ctx, uid, TransactionInput{Amount: decimal.NewFromInt(3), Note: "a", CategoryID: c.ID})
	require.NoError(t, err)

	require.NoError(t, f.cat.Delete(ctx, uid, c.ID))

	got, err := f.txn.Get(ctx, uid, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
	list, err := f.txn.List(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.bud.Delete(ctx, uid))
	list, err = f.txn.List(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.txn.Update(ctx, uid, tr.ID, TransactionUpdate{Amount: decimal.NewFromInt(4), Note: "b"})
	assert.NoError(t, err)
}
