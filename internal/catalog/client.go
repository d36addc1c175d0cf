package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const serviceName = "catalog"

// Client resolves product records from the catalog service.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(baseURL string, cfg httpclient.Config, logger *slog.Logger) *Client {
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		logger,
	)
	return &Client{
		http:    cb,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type productEnvelope struct {
	Data *domain.Product `json:"data"`
}

// GetProduct fetches a product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperrors.InvalidInput("product id is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, url.PathEscape(id))
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, context.Canceled) {
			return domain.Product{}, err
		}
		return domain.Product{}, apperrors.ServiceUnavailable("catalog is unavailable")
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Product{}, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var env productEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return domain.Product{}, fmt.Errorf("decode catalog product %s: %w", id, err)
	}
	if env.Data == nil {
		return domain.Product{}, apperrors.NotFound("product", id)
	}

	return *env.Data, nil
}

// Ping checks that the catalog answers its liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.Get(ctx, c.baseURL+"/health/live")
	if err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping catalog: unexpected status %d", resp.StatusCode)
	}
	return nil
}
