package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type names a lifecycle transition of a resource.
type Type string

const (
	BudgetCreated      Type = "budget.created"
	BudgetReactivated  Type = "budget.reactivated"
	BudgetUpdated      Type = "budget.updated"
	BudgetDeleted      Type = "budget.deleted"
	CategoryCreated    Type = "category.created"
	CategoryUpdated    Type = "category.updated"
	CategoryDeleted    Type = "category.deleted"
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
)

// Event is published after a mutation has been committed. It carries ids
// only; consumers read the current state from the API.
type Event struct {
	Type     Type      `json:"type"`
	Resource string    `json:"resource"`
	ID       uint      `json:"id"`
	UserID   uint      `json:"user_id"`
	At       time.Time `json:"at"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event body.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
