package adapter

import (
	"context"

	"content-paywall/internal/domain/model"
)

// CatalogLookup is the read-only boundary to the catalog store. Returns
// domain.ErrContentNotFound for unknown IDs and
// domain.ErrDependencyUnavailable when the catalog cannot be reached.
type CatalogLookup interface {
	FindContent(ctx context.Context, contentID string) (*model.ContentRef, error)
}
