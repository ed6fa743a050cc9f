package ledger

import (
	"testing"
	"time"

	"budgeter/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDelete_TwiceFails(t *testing.T) {
	c := &models.Category{}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, softDelete(c, at))
	require.NotNil(t, c.DeletedAt)
	assert.Equal(t, at, *c.DeletedAt)

	err := softDelete(c, at.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Category is deleted")
	assert.Equal(t, at, *c.DeletedAt)
}

func TestReactivate_ClearsDeletedAndStampsUpdated(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &models.Budget{Record: models.Record{DeletedAt: &at}}
	later := at.Add(time.Minute)

	reactivate(b, later)

	assert.True(t, b.Active())
	require.NotNil(t, b.UpdatedAt)
	assert.Equal(t, later, *b.UpdatedAt)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{NotFound("x"), KindNotFound},
		{Unauthorized("x"), KindUnauthorized},
		{Conflict("x"), KindConflict},
		{Unprocessable("x"), KindUnprocessable},
		{assert.AnError, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err))
	}
	assert.ErrorIs(t, NotFound("Budget not set"), ErrNotFound)
	assert.NotErrorIs(t, NotFound("Budget not set"), ErrConflict)
	assert.Equal(t, "unprocessable", KindUnprocessable.String())
}
