package ledger

import (
	"context"
	"log/slog"

	"budgeter/pkg/events"
)

// Option configures a resource service.
type Option func(*service)

// WithPublisher sets the sink for lifecycle events. Defaults to events.Nop.
func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.pub = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *service) { s.log = l }
}

// WithStrictCategoryOwnership controls whether creating a transaction checks
// that the target category belongs to the caller. Enabled by default.
func WithStrictCategoryOwnership(strict bool) Option {
	return func(s *service) { s.strictCategory = strict }
}

type service struct {
	store          *Store
	pub            events.Publisher
	log            *slog.Logger
	strictCategory bool
}

func newService(store *Store, opts []Option) service {
	s := service{
		store:          store,
		pub:            events.Nop{},
		log:            slog.Default(),
		strictCategory: true,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// publish runs after commit. A broker failure is logged and swallowed: the
// mutation has already happened.
func (s *service) publish(ctx context.Context, t events.Type, resource string, id, userID uint) {
	e := events.Event{Type: t, Resource: resource, ID: id, UserID: userID, At: s.store.Now()}
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", "type", t, "id", id, "error", err)
	}
}
