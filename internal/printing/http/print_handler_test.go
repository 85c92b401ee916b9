package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/printing/domain"
	"github.com/tillware/posd/internal/printing/http/dto"
	"github.com/tillware/posd/internal/printing/usecase"
)

// MockPrintUseCase is a mock implementation of usecase.PrintUseCase
type MockPrintUseCase struct {
	mock.Mock
}

func (m *MockPrintUseCase) Submit(
	ctx context.Context,
	order *domain.Order,
	jobType domain.JobType,
	format domain.JobFormat,
	copies int,
) (*domain.PrintJob, error) {
	args := m.Called(ctx, order, jobType, format, copies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrintJob), args.Error(1)
}

func (m *MockPrintUseCase) Retry(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrintJob), args.Error(1)
}

func (m *MockPrintUseCase) Resolve(
	ctx context.Context,
	id uuid.UUID,
	choice usecase.ResolveChoice,
) (*domain.PrintJob, error) {
	args := m.Called(ctx, id, choice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrintJob), args.Error(1)
}

func (m *MockPrintUseCase) DrainQueued(ctx context.Context) (*usecase.DrainResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DrainResult), args.Error(1)
}

func (m *MockPrintUseCase) History() []*domain.PrintJob {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.PrintJob)
}

func (m *MockPrintUseCase) Queued(ctx context.Context) ([]*domain.PrintJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PrintJob), args.Error(1)
}

func (m *MockPrintUseCase) Assignments() domain.RoleAssignments {
	args := m.Called()
	return args.Get(0).(domain.RoleAssignments)
}

func setupRouter(uc *MockPrintUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewPrintHandler(uc, nil)
	handler.RegisterRoutes(router.Group("/v1"))

	return router
}

func testJob(status domain.JobStatus) *domain.PrintJob {
	now := time.Now().UTC()
	return &domain.PrintJob{
		ID:          uuid.Must(uuid.NewV7()),
		OrderID:     "order-1",
		OrderNumber: "ORD-0001",
		JobType:     domain.JobTypeReceipt,
		Format:      domain.JobFormatThermal,
		Status:      status,
		MaxRetries:  2,
		DeviceID:    "thermal-front",
		Copies:      1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func submitBody() []byte {
	body, _ := json.Marshal(dto.SubmitPrintRequest{
		Order: dto.OrderRequest{
			ID:     "order-1",
			Number: "ORD-0001",
			Lines: []dto.OrderLineRequest{
				{Description: "Milk 500ml", Quantity: 2, UnitPrice: 60, Total: 120},
			},
			Subtotal:      120,
			Total:         120,
			PaymentMethod: "CASH",
		},
		JobType: "receipt",
	})
	return body
}

func TestPrintHandler_Submit(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	job := testJob(domain.JobStatusSuccess)
	uc.On("Submit", mock.Anything, mock.AnythingOfType("*domain.Order"),
		domain.JobTypeReceipt, domain.JobFormatThermal, 1).Return(job, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print", bytes.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "thermal-front", resp.DeviceID)
}

func TestPrintHandler_Submit_MalformedJSON(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintHandler_Submit_NoPrinterAssigned(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	uc.On("Submit", mock.Anything, mock.AnythingOfType("*domain.Order"),
		domain.JobTypeReceipt, domain.JobFormatThermal, 1).
		Return(nil, apperrors.Wrap(apperrors.ErrNoPrinterAssigned, "no device assigned for receipt jobs"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print", bytes.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestPrintHandler_Submit_DispatchFailureReturnsJob(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	job := testJob(domain.JobStatusFailed)
	errMsg := "printer out of paper"
	job.Error = &errMsg

	uc.On("Submit", mock.Anything, mock.AnythingOfType("*domain.Order"),
		domain.JobTypeReceipt, domain.JobFormatThermal, 1).
		Return(job, apperrors.Wrap(apperrors.ErrRetryable, errMsg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print", bytes.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errMsg, *resp.Error)
}

func TestPrintHandler_Retry(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	job := testJob(domain.JobStatusSuccess)
	job.RetryCount = 1
	uc.On("Retry", mock.Anything, job.ID).Return(job, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/"+job.ID.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.RetryCount)
}

func TestPrintHandler_Retry_Exhausted(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	id := uuid.Must(uuid.NewV7())
	uc.On("Retry", mock.Anything, id).
		Return(nil, apperrors.Wrap(apperrors.ErrRetryExhausted, "print job has used all 2 retry attempts"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/"+id.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPrintHandler_Retry_FailsAgainReturnsJob(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	job := testJob(domain.JobStatusFailed)
	job.RetryCount = 1
	uc.On("Retry", mock.Anything, job.ID).
		Return(job, apperrors.Wrap(apperrors.ErrRetryable, "printer out of paper"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/"+job.ID.String()+"/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
}

func TestPrintHandler_Retry_BadID(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/not-a-uuid/retry", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintHandler_Resolve_Queue(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	job := testJob(domain.JobStatusQueued)
	uc.On("Resolve", mock.Anything, job.ID, usecase.ResolveChoiceQueue).Return(job, nil)

	body, _ := json.Marshal(dto.ResolvePrintRequest{Choice: "queue"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/"+job.ID.String()+"/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
}

func TestPrintHandler_Resolve_UnknownChoice(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	id := uuid.Must(uuid.NewV7())
	uc.On("Resolve", mock.Anything, id, usecase.ResolveChoice("shred")).
		Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, `unknown resolve choice "shred"`))

	body, _ := json.Marshal(dto.ResolvePrintRequest{Choice: "shred"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/"+id.String()+"/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPrintHandler_History(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	uc.On("History").Return([]*domain.PrintJob{
		testJob(domain.JobStatusSuccess),
		testJob(domain.JobStatusFailed),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/print/history", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "success", resp.Jobs[0].Status)
	assert.Equal(t, "failed", resp.Jobs[1].Status)
}

func TestPrintHandler_Queued(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	uc.On("Queued", mock.Anything).Return([]*domain.PrintJob{testJob(domain.JobStatusQueued)}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/print/queued", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PrintJobListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "queued", resp.Jobs[0].Status)
}

func TestPrintHandler_Drain(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	uc.On("DrainQueued", mock.Anything).Return(&usecase.DrainResult{Printed: 2, Failed: 1}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/drain", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.DrainResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Printed)
	assert.Equal(t, 1, resp.Failed)
}

func TestPrintHandler_Drain_DetachedFromRequestContext(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	// A client disconnect must not abort a dispatch that already started.
	uc.On("DrainQueued", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(&usecase.DrainResult{Printed: 1}, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/print/drain", nil).WithContext(reqCtx)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrintHandler_Assignments(t *testing.T) {
	uc := &MockPrintUseCase{}
	router := setupRouter(uc)

	uc.On("Assignments").Return(domain.RoleAssignments{
		domain.JobTypeReceipt: "thermal-front",
		domain.JobTypeKitchen: "thermal-kitchen",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/printers/assignments", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.AssignmentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "thermal-front", resp.Assignments["receipt"])
	assert.Equal(t, "thermal-kitchen", resp.Assignments["kitchen"])
}
