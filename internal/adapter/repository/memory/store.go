// Package memory is an in-process store with optimistic concurrency. A
// commit fails with ports.ErrConflict when any key the transaction read has
// changed since.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

const defaultMaxAttempts = 10

type state struct {
	events   map[string]domain.Event
	tickets  map[string]domain.Ticket
	pending  map[string]domain.PendingPayment
	failed   map[string]domain.FailedPurchase
	users    map[string]domain.UserProfile
	scanLogs []domain.ScanLog
	rev      map[string]uint64
}

func newState() *state {
	return &state{
		events:  make(map[string]domain.Event),
		tickets: make(map[string]domain.Ticket),
		pending: make(map[string]domain.PendingPayment),
		failed:  make(map[string]domain.FailedPurchase),
		users:   make(map[string]domain.UserProfile),
		rev:     make(map[string]uint64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.pending {
		c.pending[k] = v
	}
	for k, v := range s.failed {
		c.failed[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.rev {
		c.rev[k] = v
	}

	return c
}

func (s *state) apply(from *state, key string) {
	kind, id, _ := strings.Cut(key, ":")

	switch kind {
	case "event":
		if v, ok := from.events[id]; ok {
			s.events[id] = v
		} else {
			delete(s.events, id)
		}
	case "ticket":
		if v, ok := from.tickets[id]; ok {
			s.tickets[id] = v
		} else {
			delete(s.tickets, id)
		}
	case "pending":
		if v, ok := from.pending[id]; ok {
			s.pending[id] = v
		} else {
			delete(s.pending, id)
		}
	case "failed":
		if v, ok := from.failed[id]; ok {
			s.failed[id] = v
		} else {
			delete(s.failed, id)
		}
	}

	s.rev[key]++
}

type Store struct {
	mu          sync.Mutex
	st          *state
	maxAttempts int
}

type Option func(*Store)

func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{st: newState(), maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, q ports.Queries) error) error {
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		err = s.runTx(ctx, fn)
		if !errors.Is(err, ports.ErrConflict) {
			return err
		}

		metrics.TrackTxRetry("memory")
		log.Debug().Int("attempt", attempt).Msg("memory transaction conflict, retrying")
	}

	return fmt.Errorf("transaction aborted after %d attempts: %w", s.maxAttempts, err)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, q ports.Queries) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	tx := &view{
		st:     snapshot,
		reads:  make(map[string]uint64),
		writes: make(map[string]struct{}),
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range tx.reads {
		if s.st.rev[key] != seen {
			return ports.ErrConflict
		}
	}

	keys := make([]string, 0, len(tx.writes))
	for key := range tx.writes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s.st.apply(snapshot, key)
	}

	return nil
}

func (s *Store) direct(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&view{st: s.st})
}

func (s *Store) SeedEvent(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.events[e.ID] = e
	s.st.rev["event:"+e.ID]++
}

func (s *Store) SeedUser(u domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.users[u.UID] = u
}

func (s *Store) SeedTicket(t domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.tickets[t.ID] = t
	s.st.rev["ticket:"+t.ID]++
	s.st.rev[activeKey(t.UserID, t.EventID)]++
}

func (s *Store) Tickets(eventID string) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Ticket
	for _, t := range s.st.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}

	return out
}

func (s *Store) FailedPurchases(paymentIntentID string) []domain.FailedPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.FailedPurchase
	for _, fp := range s.st.failed {
		if fp.PaymentIntentID == paymentIntentID {
			out = append(out, fp)
		}
	}

	return out
}
