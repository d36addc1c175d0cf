package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Persister mirrors a store's items to durable storage. Implementations must
// not fail: Load returns an empty collection when nothing usable is stored and
// Save swallows write errors.
type Persister[T Item] interface {
	Load(ctx context.Context) []T
	Save(ctx context.Context, items []T)
}

// Store is a reducer-driven item collection mirrored to a Persister.
// Dispatches are serialized: the reducer and the persistence write complete
// before Dispatch returns. A closed store keeps serving snapshots but drops
// dispatches, so it never writes its slot again.
type Store[T Item] struct {
	mu        sync.Mutex
	state     State[T]
	closed    bool
	strategy  Strategy[T]
	persister Persister[T]
	logger    *slog.Logger
}

// New creates a store and hydrates it from the persister. The panel always
// starts closed.
func New[T Item](ctx context.Context, strategy Strategy[T], persister Persister[T], logger *slog.Logger) *Store[T] {
	s := &Store[T]{
		state:     State[T]{Items: []T{}},
		strategy:  strategy,
		persister: persister,
		logger:    logger.With(slog.String("store", strategy.Name())),
	}

	s.state = Reduce(strategy, s.state, Load(persister.Load(ctx)))
	s.logger.DebugContext(ctx, "store hydrated", slog.Int("items", len(s.state.Items)))

	return s
}

// Name returns the strategy name of the store.
func (s *Store[T]) Name() string {
	return s.strategy.Name()
}

// Dispatch runs action through the reducer and persists the items when they
// changed. It returns a copy of the resulting state.
func (s *Store[T]) Dispatch(ctx context.Context, action Action[T]) State[T] {
	state, _ := s.Apply(ctx, action)
	return state
}

// Apply is Dispatch that also reports whether the items changed.
func (s *Store[T]) Apply(ctx context.Context, action Action[T]) (State[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.WarnContext(ctx, "dispatch on closed store dropped", slog.String("action", string(action.Kind)))
		return cloneState(s.state), false
	}

	prev := s.state
	next := Reduce(s.strategy, prev, action)
	s.state = next

	actionsTotal.WithLabelValues(s.strategy.Name(), string(action.Kind)).Inc()

	changed := next.Version != prev.Version
	if changed {
		s.persister.Save(ctx, next.Items)
	}

	return cloneState(next), changed
}

// Close waits for an in-flight dispatch to finish its write and stops further
// dispatches. It is idempotent.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Contains reports whether an item with id is present.
func (s *Store[T]) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.state.Items, id) >= 0
}

func cloneState[T Item](state State[T]) State[T] {
	state.Items = slices.Clone(state.Items)
	if state.Items == nil {
		state.Items = []T{}
	}
	return state
}
