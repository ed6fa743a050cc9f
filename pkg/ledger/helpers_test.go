package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"budgeter/models"
	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/pkg/events"

	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

// newTestStore returns a store over a private in-memory sqlite database and a
// clock that advances one second per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Open(config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	clock := func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	}
	return NewStore(db, WithClock(clock))
}

func mkUser(t *testing.T, s *Store, email string) uint {
	t.Helper()
	u := &models.User{
		Record:         models.Record{CreatedAt: s.Now()},
		Email:          email,
		HashedPassword: []byte("hash"),
	}
	require.NoError(t, s.Insert(u))
	return u.ID
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture wires the three services over one store.
type fixture struct {
	store *Store
	pub   *recorder
	bud   *BudgetService
	cat   *CategoryService
	txn   *TransactionService
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := newTestStore(t)
	pub := &recorder{}
	opts = append([]Option{WithPublisher(pub)}, opts...)
	return &fixture{
		store: s,
		pub:   pub,
		bud:   NewBudgetService(s, opts...),
		cat:   NewCategoryService(s, opts...),
		txn:   NewTransactionService(s, opts...),
	}
}
