// Package service implements artifact rendering and print dispatch.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/tillware/posd/internal/errors"
)

// Dispatcher sends a rendered artifact to a physical device. A call covers
// exactly one copy; there are no partial-copy semantics.
type Dispatcher interface {
	Print(ctx context.Context, deviceID, artifact string) error
}

// HTTPDispatcher dispatches print calls to the local print bridge, the
// process that owns the actual device drivers.
type HTTPDispatcher struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPDispatcher creates a new HTTPDispatcher
func NewHTTPDispatcher(baseURL string, timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// printRequest is the bridge request body. The artifact is either raw thermal
// markup or a spooled document path; the bridge decides by inspecting it.
type printRequest struct {
	DeviceID string `json:"deviceId"`
	Artifact string `json:"artifact"`
}

// bridgeError is the bridge error body shape.
type bridgeError struct {
	Message string `json:"message"`
}

// Print posts one copy to the bridge. Every failure mode is retryable from
// the job's point of view: a refused connection, a timeout and a bridge-side
// device error all resolve the same way, by trying again or escalating to
// the operator once the retry budget runs out.
func (d *HTTPDispatcher) Print(ctx context.Context, deviceID, artifact string) error {
	body, err := json.Marshal(printRequest{DeviceID: deviceID, Artifact: artifact})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/print", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRetryable, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	return apperrors.Wrap(apperrors.ErrRetryable, dispatchFailureMessage(resp.StatusCode, respBody))
}

// dispatchFailureMessage extracts a human-readable reason from an error body.
func dispatchFailureMessage(statusCode int, body []byte) string {
	var errResp bridgeError
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	return fmt.Sprintf("print bridge returned status %d", statusCode)
}
