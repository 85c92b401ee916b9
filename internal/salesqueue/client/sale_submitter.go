// Package client implements the remote sale submission client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// SubmitResult holds the remote system's acknowledgement of a sale.
type SubmitResult struct {
	RemoteID   string `json:"id"`
	SaleNumber string `json:"saleNumber"`
}

// SaleSubmitter submits a captured sale to the remote sales system.
type SaleSubmitter interface {
	Submit(ctx context.Context, id uuid.UUID, payload domain.SalePayload) (*SubmitResult, error)
}

// HTTPSaleSubmitter submits sales over HTTP. The queue item id travels as the
// Idempotency-Key header so resubmissions of the same item are deduplicated
// server-side.
type HTTPSaleSubmitter struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

// NewHTTPSaleSubmitter creates a new HTTPSaleSubmitter
func NewHTTPSaleSubmitter(baseURL, apiToken string, timeout time.Duration) *HTTPSaleSubmitter {
	return &HTTPSaleSubmitter{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		apiToken: apiToken,
	}
}

// errorResponse is the remote error body shape.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Submit posts the sale payload to the remote sales endpoint.
//
// Error classification drives the queue's retry decision: connection errors,
// timeouts and 5xx responses are retryable; 4xx responses mean the remote
// system examined the sale and refused it, so retrying the same payload can
// never succeed.
func (c *HTTPSaleSubmitter) Submit(
	ctx context.Context,
	id uuid.UUID,
	payload domain.SalePayload,
) (*SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/sales", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", id.String())
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRetryable, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRetryable, err.Error())
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result SubmitResult
		if err := json.Unmarshal(respBody, &result); err != nil {
			// Acknowledged but unreadable body. Treat as synced: the remote
			// side has the sale and a retry would only duplicate work for
			// its idempotency layer.
			return &SubmitResult{}, nil
		}
		return &result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, apperrors.Wrap(apperrors.ErrRejected, rejectionMessage(resp.StatusCode, respBody))
	default:
		return nil, apperrors.Wrap(apperrors.ErrRetryable,
			fmt.Sprintf("remote sales service returned status %d", resp.StatusCode))
	}
}

// rejectionMessage extracts a human-readable reason from a 4xx body.
func rejectionMessage(statusCode int, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	return fmt.Sprintf("remote sales service returned status %d", statusCode)
}
