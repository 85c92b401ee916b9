package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

func testPayload() domain.SalePayload {
	return domain.SalePayload{
		CartItems: []domain.CartLine{
			{ProductID: "prod-1", VariantID: "var-1", SellingUnitID: "unit-1", Quantity: 1, UnitPrice: 250},
		},
		LocationID:    "loc-1",
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusPending,
	}
}

func TestHTTPSaleSubmitter_Submit_Success(t *testing.T) {
	id, err := uuid.NewV7()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sales", r.URL.Path)
		assert.Equal(t, id.String(), r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload domain.SalePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "loc-1", payload.LocationID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "remote-123", "saleNumber": "S-0042"}`))
	}))
	defer server.Close()

	submitter := NewHTTPSaleSubmitter(server.URL, "test-token", 5*time.Second)

	result, err := submitter.Submit(context.Background(), id, testPayload())
	require.NoError(t, err)
	assert.Equal(t, "remote-123", result.RemoteID)
	assert.Equal(t, "S-0042", result.SaleNumber)
}

func TestHTTPSaleSubmitter_Submit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code": "insufficient_stock", "message": "variant var-1 is out of stock"}`))
	}))
	defer server.Close()

	submitter := NewHTTPSaleSubmitter(server.URL, "", 5*time.Second)

	id, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = submitter.Submit(context.Background(), id, testPayload())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRejected))
	assert.Contains(t, err.Error(), "out of stock")
}

func TestHTTPSaleSubmitter_Submit_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	submitter := NewHTTPSaleSubmitter(server.URL, "", 5*time.Second)

	id, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = submitter.Submit(context.Background(), id, testPayload())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRetryable))
}

func TestHTTPSaleSubmitter_Submit_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	submitter := NewHTTPSaleSubmitter(server.URL, "", time.Second)

	id, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = submitter.Submit(context.Background(), id, testPayload())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRetryable))
}

func TestHTTPSaleSubmitter_Submit_UnreadableSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	submitter := NewHTTPSaleSubmitter(server.URL, "", 5*time.Second)

	id, err := uuid.NewV7()
	require.NoError(t, err)

	result, err := submitter.Submit(context.Background(), id, testPayload())
	require.NoError(t, err)
	assert.NotNil(t, result)
}
