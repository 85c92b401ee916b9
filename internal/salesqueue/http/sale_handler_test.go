package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/domain"
	"github.com/tillware/posd/internal/salesqueue/http/dto"
)

// MockQueueUseCase is a mock implementation of usecase.QueueUseCase
type MockQueueUseCase struct {
	mock.Mock
}

func (m *MockQueueUseCase) Enqueue(ctx context.Context, payload domain.SalePayload) (*domain.QueuedSale, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueuedSale), args.Error(1)
}

func (m *MockQueueUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueuedSale), args.Error(1)
}

func (m *MockQueueUseCase) List(
	ctx context.Context,
	status *domain.SaleStatus,
	offset, limit int,
) ([]*domain.QueuedSale, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QueuedSale), args.Error(1)
}

func (m *MockQueueUseCase) GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QueuedSale), args.Error(1)
}

func (m *MockQueueUseCase) Counts(ctx context.Context) (map[domain.SaleStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.SaleStatus]int), args.Error(1)
}

func (m *MockQueueUseCase) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQueueSyncer is a mock implementation of QueueSyncer
type MockQueueSyncer struct {
	mock.Mock
}

func (m *MockQueueSyncer) ProcessQueue(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockQueueSyncer) Retry(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueuedSale), args.Error(1)
}

func setupRouter(uc *MockQueueUseCase, syncer *MockQueueSyncer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewSaleHandler(uc, syncer, nil)
	handler.RegisterRoutes(router.Group("/v1"))

	return router
}

func enqueueBody(t *testing.T) *bytes.Reader {
	t.Helper()

	req := dto.EnqueueSaleRequest{
		CartItems: []dto.CartLineRequest{
			{ProductID: "prod-1", VariantID: "var-1", SellingUnitID: "unit-1", Quantity: 1, UnitPrice: 100},
		},
		LocationID:    "loc-1",
		PaymentMethod: "CASH",
		PaymentStatus: "PENDING",
	}

	body, err := json.Marshal(req)
	require.NoError(t, err)

	return bytes.NewReader(body)
}

func TestSaleHandler_Enqueue(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	sale := &domain.QueuedSale{
		ID:     uuid.Must(uuid.NewV7()),
		Status: domain.SaleStatusQueued,
	}
	uc.On("Enqueue", mock.Anything, mock.MatchedBy(func(p domain.SalePayload) bool {
		return p.LocationID == "loc-1" && len(p.CartItems) == 1
	})).Return(sale, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales", enqueueBody(t))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.SaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sale.ID, resp.ID)
	assert.Equal(t, "queued", resp.Status)
}

func TestSaleHandler_Enqueue_MalformedJSON(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewReader([]byte("{not json")))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSaleHandler_Enqueue_InvalidPayload(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	uc.On("Enqueue", mock.Anything, mock.Anything).
		Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "cartItems: cannot be blank"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewReader([]byte(`{"locationId": "loc-1"}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSaleHandler_Pending(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	sales := []*domain.QueuedSale{
		{ID: uuid.Must(uuid.NewV7()), Status: domain.SaleStatusQueued},
		{ID: uuid.Must(uuid.NewV7()), Status: domain.SaleStatusFailed},
	}
	uc.On("GetPending", mock.Anything, 50).Return(sales, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sales/pending", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SaleListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sales, 2)
}

func TestSaleHandler_Counts(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	uc.On("Counts", mock.Anything).Return(map[domain.SaleStatus]int{
		domain.SaleStatusQueued: 3,
		domain.SaleStatusSynced: 7,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sales/counts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.CountsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Queued)
	assert.Equal(t, 7, resp.Synced)
	assert.Equal(t, 0, resp.Failed)
}

func TestSaleHandler_Sync(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	syncer.On("ProcessQueue", mock.Anything).Return(nil)
	uc.On("Counts", mock.Anything).Return(map[domain.SaleStatus]int{
		domain.SaleStatusSynced: 5,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SyncResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 5, resp.Counts.Synced)
}

func TestSaleHandler_Sync_Stopped(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	syncer.On("ProcessQueue", mock.Anything).
		Return(apperrors.Wrap(apperrors.ErrRetryable, "connection refused"))
	uc.On("Counts", mock.Anything).Return(map[domain.SaleStatus]int{
		domain.SaleStatusFailed: 1,
		domain.SaleStatusQueued: 4,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SyncResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "stopped", resp.Status)
	assert.Contains(t, resp.Error, "connection refused")
	assert.Equal(t, 4, resp.Counts.Queued)
}

func TestSaleHandler_Sync_DetachedFromRequestContext(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	// Even with the request context already cancelled, the drain must receive
	// a live context: a client disconnect cannot abort an in-flight submission.
	syncer.On("ProcessQueue", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(nil)
	uc.On("Counts", mock.Anything).Return(map[domain.SaleStatus]int{}, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/sync", nil).WithContext(reqCtx)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SyncResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
}

func TestSaleHandler_Retry(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	id := uuid.Must(uuid.NewV7())
	sale := &domain.QueuedSale{ID: id, Status: domain.SaleStatusSynced}
	syncer.On("Retry", mock.Anything, id).Return(sale, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/"+id.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "synced", resp.Status)
}

func TestSaleHandler_Retry_FailsAgain(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	id := uuid.Must(uuid.NewV7())
	errMsg := "timeout"
	sale := &domain.QueuedSale{ID: id, Status: domain.SaleStatusFailed, RetryCount: 2, LastError: &errMsg}
	syncer.On("Retry", mock.Anything, id).
		Return(sale, apperrors.Wrap(apperrors.ErrRetryable, errMsg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/"+id.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	// The retry attempt itself ran; the outcome lives in the sale status.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, 2, resp.RetryCount)
}

func TestSaleHandler_Retry_NotFound(t *testing.T) {
	uc := &MockQueueUseCase{}
	syncer := &MockQueueSyncer{}
	router := setupRouter(uc, syncer)

	id := uuid.Must(uuid.NewV7())
	syncer.On("Retry", mock.Anything, id).
		Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "queued sale not found"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/"+id.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaleHandler_Delete(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	id := uuid.Must(uuid.NewV7())
	uc.On("Remove", mock.Anything, id).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/sales/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSaleHandler_Get_BadID(t *testing.T) {
	uc := &MockQueueUseCase{}
	router := setupRouter(uc, &MockQueueSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sales/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
