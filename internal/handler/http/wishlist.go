package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	logger *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{logger: logger}
}

// ItemStatus reports whether a product is saved.
type ItemStatus struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, s.Wishlist.Snapshot())
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := httputil.DecodeJSON(w, r, &product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	snap, err := sessionFromContext(r.Context()).Wishlist.Add(r.Context(), product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, snap)
}

// ToggleItem handles POST /api/v1/wishlist/items/toggle
func (h *WishlistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := httputil.DecodeJSON(w, r, &product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	snap, err := sessionFromContext(r.Context()).Wishlist.Toggle(r.Context(), product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, snap)
}

// ToggleProduct handles POST /api/v1/wishlist/products/{productId}/toggle
func (h *WishlistHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	snap, err := sessionFromContext(r.Context()).Wishlist.ToggleByID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, snap)
}

// GetItem handles GET /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemId")
	saved := sessionFromContext(r.Context()).Wishlist.Contains(id)
	httputil.WriteData(w, http.StatusOK, ItemStatus{ID: id, Saved: saved})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Wishlist.Remove(r.Context(), chi.URLParam(r, "itemId"))
	httputil.WriteData(w, http.StatusOK, snap)
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Wishlist.Clear(r.Context())
	httputil.WriteData(w, http.StatusOK, snap)
}

// TogglePanel handles POST /api/v1/wishlist/panel/toggle
func (h *WishlistHandler) TogglePanel(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Wishlist.TogglePanel(r.Context())
	httputil.WriteData(w, http.StatusOK, snap)
}
