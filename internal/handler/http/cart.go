package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(logger *slog.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

// UpdateQuantityRequest is the JSON request body for updating a line quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=999"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, s.Cart.Snapshot())
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := httputil.DecodeJSON(w, r, &product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	snap, err := sessionFromContext(r.Context()).Cart.Add(r.Context(), product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, snap)
}

// AddProduct handles POST /api/v1/cart/products/{productId}
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	snap, err := sessionFromContext(r.Context()).Cart.AddByID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, snap)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	snap := sessionFromContext(r.Context()).Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "itemId"), *req.Quantity)
	httputil.WriteData(w, http.StatusOK, snap)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Cart.Remove(r.Context(), chi.URLParam(r, "itemId"))
	httputil.WriteData(w, http.StatusOK, snap)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Cart.Clear(r.Context())
	httputil.WriteData(w, http.StatusOK, snap)
}

// TogglePanel handles POST /api/v1/cart/panel/toggle
func (h *CartHandler) TogglePanel(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Cart.TogglePanel(r.Context())
	httputil.WriteData(w, http.StatusOK, snap)
}
