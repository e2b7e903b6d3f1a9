package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// Listener is notified after an action has been applied. It receives a copy
// of the resulting state.
type Listener func(ctx context.Context, action Action, state domain.CartState)

// Store owns the cart state. The three transitions are its only write path;
// dispatches are serialized so each action runs to completion before the
// next one is applied.
type Store struct {
	mu        sync.Mutex
	state     domain.CartState
	seq       uint64
	listeners []Listener
	logger    *slog.Logger

	// delivered is the sequence number of the last action whose listeners
	// have returned. Guarded by deliverMu.
	deliverMu sync.Mutex
	delivered uint64
	turn      *sync.Cond
}

// NewStore creates a store holding an empty cart.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{
		state:  domain.CartState{Items: []domain.CartLine{}},
		logger: logger,
	}
	s.turn = sync.NewCond(&s.deliverMu)
	return s
}

// Subscribe registers a listener for applied actions. Listeners run in
// registration order on the dispatching goroutine, outside the store lock,
// and see actions in the order they were applied. A listener must not
// dispatch to the store it listens on.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch applies action and returns the resulting state.
func (s *Store) Dispatch(ctx context.Context, action Action) domain.CartState {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	s.seq++
	seq := s.seq
	snapshot := s.state.Clone()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	actionsTotal.WithLabelValues(action.Type()).Inc()
	cartLines.Set(float64(len(snapshot.Items)))

	s.logger.DebugContext(ctx, "cart action applied",
		slog.String("action", action.Type()),
		slog.Int("lines", len(snapshot.Items)),
		slog.Int("item_count", snapshot.ItemCount()),
	)

	s.notify(ctx, seq, listeners, action, snapshot)
	return snapshot
}

// notify waits until every earlier action has been delivered, then runs the
// listeners for the action applied as seq.
func (s *Store) notify(ctx context.Context, seq uint64, listeners []Listener, action Action, state domain.CartState) {
	s.deliverMu.Lock()
	for s.delivered != seq-1 {
		s.turn.Wait()
	}
	s.deliverMu.Unlock()

	defer func() {
		s.deliverMu.Lock()
		s.delivered = seq
		s.deliverMu.Unlock()
		s.turn.Broadcast()
	}()

	for _, l := range listeners {
		l(ctx, action, state.Clone())
	}
}

// AddToCart adds one unit of p to the cart.
func (s *Store) AddToCart(ctx context.Context, p domain.Product) domain.CartState {
	return s.Dispatch(ctx, AddToCart{Product: p})
}

// IncrementQuantity adds one unit to the line for id, if present.
func (s *Store) IncrementQuantity(ctx context.Context, id int) domain.CartState {
	return s.Dispatch(ctx, IncrementQuantity{ID: id})
}

// DecrementQuantity removes one unit from the line for id, deleting the line
// when its quantity reaches zero.
func (s *Store) DecrementQuantity(ctx context.Context, id int) domain.CartState {
	return s.Dispatch(ctx, DecrementQuantity{ID: id})
}

// State returns a copy of the current cart state.
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Items returns a copy of the current cart lines in insertion order.
func (s *Store) Items() []domain.CartLine {
	return s.State().Items
}
