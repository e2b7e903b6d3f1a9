package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxActionBytes = 64 << 10

// CartStore is the cart surface the handlers drive. *cart.Store satisfies it.
type CartStore interface {
	Dispatch(ctx context.Context, action cart.Action) domain.CartState
	State() domain.CartState
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	store   CartStore
	catalog ProductReader
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(store CartStore, catalog ProductReader, logger *slog.Logger) *CartHandler {
	return &CartHandler{store: store, catalog: catalog, logger: logger}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// CartResponse is the cart as rendered to clients.
type CartResponse struct {
	Items     []domain.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
}

func newCartResponse(state domain.CartState) CartResponse {
	items := state.Items
	if items == nil {
		items = []domain.CartLine{}
	}
	return CartResponse{Items: items, ItemCount: state.ItemCount()}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, newCartResponse(h.store.State()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Find(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state := h.store.Dispatch(r.Context(), cart.AddToCart{Product: product})
	httputil.WriteData(w, http.StatusOK, newCartResponse(state))
}

// IncrementItem handles POST /api/v1/cart/items/{id}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	state := h.store.Dispatch(r.Context(), cart.IncrementQuantity{ID: id})
	httputil.WriteData(w, http.StatusOK, newCartResponse(state))
}

// DecrementItem handles POST /api/v1/cart/items/{id}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	state := h.store.Dispatch(r.Context(), cart.DecrementQuantity{ID: id})
	httputil.WriteData(w, http.StatusOK, newCartResponse(state))
}

// DispatchAction handles POST /api/v1/cart/actions. The body is an action
// envelope such as {"type":"cart/incrementQuantity","payload":3}.
func (h *CartHandler) DispatchAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBytes))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("read request body: "+err.Error()), h.logger)
		return
	}

	action, err := cart.DecodeAction(body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state := h.store.Dispatch(r.Context(), action)
	httputil.WriteData(w, http.StatusOK, newCartResponse(state))
}
