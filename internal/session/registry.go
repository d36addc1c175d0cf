package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/persistence"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/store"
)

// minSweepInterval bounds how often the janitor wakes up.
const minSweepInterval = time.Second

// Session is the pair of stores owned by one storefront session.
type Session struct {
	ID       string
	UserID   string
	Cart     *service.Cart
	Wishlist *service.Wishlist

	cartStore     *store.Store[domain.LineItem]
	wishlistStore *store.Store[domain.WishlistItem]
	lastSeen      time.Time
}

// Config holds registry settings.
type Config struct {
	Namespace   string
	IdleTimeout time.Duration
}

// Registry owns the live sessions. Stores are built on first use and dropped
// on Close or after IdleTimeout without activity; their slots stay in storage.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	storage persistence.Storage
	catalog service.Catalog
	events  event.Publisher
	cfg     Config
	logger  *slog.Logger
	nowFunc func() time.Time // injectable clock for testing
}

// NewRegistry creates an empty registry. catalog may be nil.
func NewRegistry(storage persistence.Storage, catalog service.Catalog, events event.Publisher, cfg Config, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		storage:  storage,
		catalog:  catalog,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Open returns the live session for sessionID, hydrating its stores from
// storage when the session is not live yet. A changed userID rebinds the
// session identity without reloading the stores.
func (r *Registry) Open(ctx context.Context, sessionID, userID string) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[sessionID]; ok {
		if userID != "" && userID != s.UserID {
			s = r.bind(s.cartStore, s.wishlistStore, sessionID, userID)
			r.sessions[sessionID] = s
		}
		s.lastSeen = r.nowFunc()
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	// Hydration reads storage, so it runs outside the lock.
	fresh := r.build(ctx, sessionID, userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.lastSeen = r.nowFunc()
		return s
	}
	fresh.lastSeen = r.nowFunc()
	r.sessions[sessionID] = fresh
	activeSessions.Set(float64(len(r.sessions)))

	r.logger.InfoContext(ctx, "session opened",
		slog.String("session_id", sessionID),
		slog.Int("cart_items", len(fresh.Cart.Snapshot().Items)),
		slog.Int("wishlist_items", len(fresh.Wishlist.Snapshot().Items)),
	)
	return fresh
}

// close stops both stores once their in-flight writes land. Callers hold
// r.mu, so a concurrent Open for the same id cannot hydrate a replacement
// before the last write of this one.
func (s *Session) close() {
	s.cartStore.Close()
	s.wishlistStore.Close()
}

func (r *Registry) build(ctx context.Context, sessionID, userID string) *Session {
	cartKey := persistence.SlotKey(r.cfg.Namespace, sessionID, persistence.SlotCart)
	wishlistKey := persistence.SlotKey(r.cfg.Namespace, sessionID, persistence.SlotWishlist)

	logger := r.logger.With(slog.String("session_id", sessionID))
	cart := store.New[domain.LineItem](ctx, store.CartStrategy{},
		persistence.NewBridge[domain.LineItem](r.storage, cartKey, persistence.SlotCart, logger), logger)
	wishlist := store.New[domain.WishlistItem](ctx, store.WishlistStrategy{},
		persistence.NewBridge[domain.WishlistItem](r.storage, wishlistKey, persistence.SlotWishlist, logger), logger)

	return r.bind(cart, wishlist, sessionID, userID)
}

func (r *Registry) bind(cart *store.Store[domain.LineItem], wishlist *store.Store[domain.WishlistItem], sessionID, userID string) *Session {
	identity := event.Identity{SessionID: sessionID, UserID: userID}
	logger := r.logger.With(slog.String("session_id", sessionID))
	if userID != "" {
		logger = logger.With(slog.String("user_id", userID))
	}

	return &Session{
		ID:            sessionID,
		UserID:        userID,
		Cart:          service.NewCart(cart, r.catalog, r.events, identity, logger),
		Wishlist:      service.NewWishlist(wishlist, r.catalog, r.events, identity, logger),
		cartStore:     cart,
		wishlistStore: wishlist,
	}
}

// Close tears down the session's stores. It reports whether the session was live.
func (r *Registry) Close(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	s.close()
	delete(r.sessions, sessionID)
	activeSessions.Set(float64(len(r.sessions)))
	r.logger.Info("session closed", slog.String("session_id", sessionID))
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run evicts idle sessions until ctx is cancelled. It returns immediately
// when no idle timeout is configured.
func (r *Registry) Run(ctx context.Context) {
	if r.cfg.IdleTimeout <= 0 {
		return
	}

	interval := r.cfg.IdleTimeout / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.logger.Info("evicted idle sessions",
					slog.Int("evicted", n),
					slog.Int("active", r.Len()),
				)
			}
		}
	}
}

// evictIdle drops sessions not seen within the idle timeout.
func (r *Registry) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	var evicted int
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.cfg.IdleTimeout {
			s.close()
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		evictedSessionsTotal.Add(float64(evicted))
		activeSessions.Set(float64(len(r.sessions)))
	}
	return evicted
}

// Shutdown drops every live session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.sessions)
	for _, s := range r.sessions {
		s.close()
	}
	clear(r.sessions)
	activeSessions.Set(0)
	r.logger.Info("session registry stopped", slog.Int("dropped", n))
}
