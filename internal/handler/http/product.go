package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductReader is the read side of the catalog. *catalog.Catalog
// satisfies it.
type ProductReader interface {
	List() []domain.Product
	Find(ctx context.Context, id int) (domain.Product, error)
}

// ProductHandler serves the product catalog.
type ProductHandler struct {
	catalog ProductReader
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(catalog ProductReader, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, perPage := 1, pagination.DefaultParams().PerPage

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeInvalidParameter(w, "page must be a valid positive integer")
			return
		}
		page = n
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pagination.MaxPerPage {
			writeInvalidParameter(w, "per_page must be a valid integer between 1 and 100")
			return
		}
		perPage = n
	}
	if page > math.MaxInt/perPage {
		writeInvalidParameter(w, "page is out of range")
		return
	}

	products := h.catalog.List()
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := products[:0]
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.Paginate(products, pagination.New(page, perPage)))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.catalog.Find(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

func writeInvalidParameter(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}
