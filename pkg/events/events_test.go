package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		prefix string
		typ    Type
		want   string
	}{
		{"", BudgetCreated, "budget.created"},
		{"budgeter", TransactionDeleted, "budgeter.transaction.deleted"},
		{"budgeter.", CategoryUpdated, "budgeter.category.updated"},
		{".app.", BudgetReactivated, "app.budget.reactivated"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RoutingKey(tt.prefix, tt.typ))
		})
	}
}

func TestEventJSON(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Event{Type: BudgetReactivated, Resource: "Budget", ID: 7, UserID: 3, At: at}

	body, err := e.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"budget.reactivated","resource":"Budget","id":7,"user_id":3,"at":"2024-03-01T12:00:00Z"}`, string(body))

	back, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, e, back)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: BudgetCreated}))
}
