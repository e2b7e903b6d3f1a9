package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	upstreamName = "catalog"
	tracerName   = "github.com/utafrali/storefront/internal/catalog"
)

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client reads products from a fakestoreapi-compatible REST endpoint.
type Client struct {
	http    HTTPDoer
	baseURL string
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(doer HTTPDoer, baseURL string) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchProducts returns the full product list in upstream order.
func (c *Client) FetchProducts(ctx context.Context) (products []domain.Product, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog.FetchProducts")
	defer func() { tracing.EndSpan(span, err) }()

	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	if err := validateProducts(products); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("catalog.products", len(products)))
	return products, nil
}

// FetchProduct returns a single product. A missing product yields an
// apperrors.ErrNotFound error.
func (c *Client) FetchProduct(ctx context.Context, id int) (product *domain.Product, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog.FetchProduct",
		attribute.Int("catalog.product_id", id))
	defer func() { tracing.EndSpan(span, err) }()

	// The upstream answers unknown ids with 200 and an empty or null body.
	var p domain.Product
	err = c.getJSON(ctx, "/products/"+strconv.Itoa(id), &p)
	if errors.Is(err, io.EOF) || (err == nil && p.ID == 0) {
		return nil, apperrors.NotFound("product", strconv.Itoa(id))
	}
	if err != nil {
		return nil, err
	}
	if p.ID != id {
		return nil, fmt.Errorf("catalog returned product %d for id %d", p.ID, id)
	}
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog %s: %w", path, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return nil
}

// validateProducts rejects payloads that cannot serve as a catalog: ids must
// be positive and unique.
func validateProducts(products []domain.Product) error {
	seen := make(map[int]struct{}, len(products))
	for i, p := range products {
		if p.ID <= 0 {
			return fmt.Errorf("malformed catalog: product at index %d has id %d", i, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("malformed catalog: duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
