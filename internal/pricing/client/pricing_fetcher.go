// Package client implements the remote pricing reference-data client.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/pricing/domain"
)

// ListPayload is a price list as carried on the wire.
type ListPayload struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Priority  int        `json:"priority"`
	Scope     string     `json:"scope"`
	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
	Active    bool       `json:"active"`
}

// ItemPayload is a price item as carried on the wire.
type ItemPayload struct {
	ID       string  `json:"id"`
	ListID   string  `json:"listId"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// Envelope is the remote pricing response shape, shared by the full and
// delta endpoints.
type Envelope struct {
	Metadata struct {
		SyncedAt string `json:"syncedAt"`
		IsDelta  bool   `json:"isDelta"`
	} `json:"metadata"`
	Data struct {
		Lists               []ListPayload       `json:"lists"`
		Items               []ItemPayload       `json:"items"`
		CustomerAllocations map[string][]string `json:"customerAllocations"`
		DeletedItemIDs      []string            `json:"deletedItemIds"`
	} `json:"data"`
}

// Lists converts the wire lists to domain price lists.
func (e *Envelope) Lists() []domain.PriceList {
	lists := make([]domain.PriceList, 0, len(e.Data.Lists))
	for _, l := range e.Data.Lists {
		lists = append(lists, domain.PriceList{
			ID:        l.ID,
			Name:      l.Name,
			Priority:  l.Priority,
			Scope:     domain.ListScope(l.Scope),
			ValidFrom: l.ValidFrom,
			ValidTo:   l.ValidTo,
			Active:    l.Active,
		})
	}
	return lists
}

// Items converts the wire items to domain price items.
func (e *Envelope) Items() []domain.PriceItem {
	items := make([]domain.PriceItem, 0, len(e.Data.Items))
	for _, i := range e.Data.Items {
		items = append(items, domain.PriceItem{
			ID:       i.ID,
			ListID:   i.ListID,
			SKU:      i.SKU,
			Price:    i.Price,
			Currency: i.Currency,
		})
	}
	return items
}

// PricingFetcher retrieves pricing reference data from the remote system.
type PricingFetcher interface {
	FetchFull(ctx context.Context) (*Envelope, error)
	FetchDelta(ctx context.Context, cursor string) (*Envelope, error)
}

// HTTPPricingFetcher fetches pricing data over HTTP.
type HTTPPricingFetcher struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

// NewHTTPPricingFetcher creates a new HTTPPricingFetcher
func NewHTTPPricingFetcher(baseURL, apiToken string, timeout time.Duration) *HTTPPricingFetcher {
	return &HTTPPricingFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		apiToken: apiToken,
	}
}

// FetchFull requests the complete pricing snapshot.
func (c *HTTPPricingFetcher) FetchFull(ctx context.Context) (*Envelope, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/api/v1/pos/pricing", c.baseURL))
}

// FetchDelta requests changes since the given cursor.
func (c *HTTPPricingFetcher) FetchDelta(ctx context.Context, cursor string) (*Envelope, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/api/v1/pos/pricing/sync?lastSync=%s",
		c.baseURL, url.QueryEscape(cursor)))
}

func (c *HTTPPricingFetcher) fetch(ctx context.Context, requestURL string) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRetryable, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRetryable, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrRetryable,
			fmt.Sprintf("remote pricing service returned status %d", resp.StatusCode))
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRetryable, fmt.Sprintf("malformed pricing response: %s", err))
	}

	return &envelope, nil
}
