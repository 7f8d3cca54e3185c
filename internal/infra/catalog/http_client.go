// File: internal/infra/catalog/http_client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"content-paywall/internal/config"
	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/adapter"
)

var _ adapter.CatalogLookup = (*httpClient)(nil)

// httpClient talks to the external catalog service. The engine only ever
// reads (id, price, currency, is_free) from it.
type httpClient struct {
	baseURL string
	cli     *http.Client
}

func NewHTTPClient(cfg *config.CatalogConfig) *httpClient {
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		cli:     &http.Client{Timeout: timeout},
	}
}

type contentDTO struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	IsFree   bool   `json:"is_free"`
}

func (c *httpClient) FindContent(ctx context.Context, contentID string) (*model.ContentRef, error) {
	if contentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	u := fmt.Sprintf("%s/api/v1/content/%s", c.baseURL, url.PathEscape(contentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrContentNotFound
	default:
		return nil, fmt.Errorf("%w: catalog returned %d", domain.ErrDependencyUnavailable, resp.StatusCode)
	}

	var dto contentDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrDependencyUnavailable, err)
	}
	return &model.ContentRef{
		ContentID: dto.ID,
		Price:     dto.Price,
		Currency:  dto.Currency,
		IsFree:    dto.IsFree,
	}, nil
}
