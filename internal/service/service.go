package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// Catalog resolves product records by id.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

// summarize normalizes a raw product and validates the result.
func summarize(p domain.Product) (domain.ProductSummary, error) {
	s := domain.Summarize(p)
	if err := validator.Validate(s); err != nil {
		return domain.ProductSummary{}, apperrors.InvalidInput("invalid product: " + err.Error())
	}
	return s, nil
}

// resolve fetches a product from the catalog and normalizes it.
func resolve(ctx context.Context, catalog Catalog, id string) (domain.ProductSummary, error) {
	if catalog == nil {
		return domain.ProductSummary{}, apperrors.ServiceUnavailable("catalog is not configured")
	}
	p, err := catalog.GetProduct(ctx, id)
	if err != nil {
		return domain.ProductSummary{}, err
	}
	return summarize(p)
}
