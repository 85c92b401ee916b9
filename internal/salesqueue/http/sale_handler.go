// Package http provides HTTP handlers for the sale queue.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/httputil"
	"github.com/tillware/posd/internal/salesqueue/domain"
	"github.com/tillware/posd/internal/salesqueue/http/dto"
	"github.com/tillware/posd/internal/salesqueue/usecase"
)

// QueueSyncer is the part of the sync engine the HTTP layer drives.
type QueueSyncer interface {
	ProcessQueue(ctx context.Context) error
	Retry(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error)
}

// SaleHandler handles sale queue HTTP requests
type SaleHandler struct {
	queueUseCase usecase.QueueUseCase
	syncer       QueueSyncer
	logger       *slog.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(queueUseCase usecase.QueueUseCase, syncer QueueSyncer, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		queueUseCase: queueUseCase,
		syncer:       syncer,
		logger:       logger,
	}
}

// RegisterRoutes mounts the sale queue routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.POST("", h.EnqueueHandler)
	sales.GET("", h.ListHandler)
	sales.GET("/pending", h.PendingHandler)
	sales.GET("/counts", h.CountsHandler)
	sales.POST("/sync", h.SyncHandler)
	sales.GET("/:id", h.GetHandler)
	sales.DELETE("/:id", h.DeleteHandler)
	sales.POST("/:id/retry", h.RetryHandler)
}

// EnqueueHandler captures a sale into the durable queue. The sale is accepted
// for later submission, not yet synced, so the response is 202.
// POST /v1/sales - Returns 202 Accepted with the queued sale.
func (h *SaleHandler) EnqueueHandler(c *gin.Context) {
	var req dto.EnqueueSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	sale, err := h.queueUseCase.Enqueue(c.Request.Context(), dto.ToSalePayload(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToSaleResponse(sale))
}

// ListHandler retrieves queued sales with optional status filter.
// GET /v1/sales?status=failed&offset=0&limit=50 - Returns 200 OK.
func (h *SaleHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var status *domain.SaleStatus
	if statusParam := c.Query("status"); statusParam != "" {
		s := domain.SaleStatus(statusParam)
		status = &s
	}

	sales, err := h.queueUseCase.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleListResponse(sales, offset, limit))
}

// PendingHandler retrieves sales still awaiting sync in capture order.
// GET /v1/sales/pending - Returns 200 OK.
func (h *SaleHandler) PendingHandler(c *gin.Context) {
	_, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	sales, err := h.queueUseCase.GetPending(c.Request.Context(), limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleListResponse(sales, 0, limit))
}

// CountsHandler reports queue depth per status.
// GET /v1/sales/counts - Returns 200 OK.
func (h *SaleHandler) CountsHandler(c *gin.Context) {
	counts, err := h.queueUseCase.Counts(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCountsResponse(counts))
}

// SyncHandler drains the queue on demand and reports the resulting queue
// state. A drain stopped by an unreachable remote is not an HTTP error: the
// response carries the stop reason and the counts show what remains.
// POST /v1/sales/sync - Returns 200 OK.
func (h *SaleHandler) SyncHandler(c *gin.Context) {
	result := dto.SyncResultResponse{Status: "completed"}

	// The drain outlives the request: a client disconnect must not cancel a
	// submission that already started.
	ctx := context.WithoutCancel(c.Request.Context())

	if err := h.syncer.ProcessQueue(ctx); err != nil {
		result.Status = "stopped"
		result.Error = err.Error()
	}

	counts, err := h.queueUseCase.Counts(ctx)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	result.Counts = dto.ToCountsResponse(counts)

	c.JSON(http.StatusOK, result)
}

// GetHandler retrieves a single queued sale.
// GET /v1/sales/:id - Returns 200 OK.
func (h *SaleHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	sale, err := h.queueUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

// DeleteHandler removes a queued sale.
// DELETE /v1/sales/:id - Returns 204 No Content.
func (h *SaleHandler) DeleteHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.queueUseCase.Remove(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RetryHandler re-attempts a failed sale immediately. The attempt outcome is
// reported through the sale's status: a submission that failed again returns
// 200 with status "failed" rather than an error, since the queue item itself
// was handled correctly.
// POST /v1/sales/:id/retry - Returns 200 OK.
func (h *SaleHandler) RetryHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Detached for the same reason as SyncHandler: the submission must run to
	// an outcome once started.
	sale, retryErr := h.syncer.Retry(context.WithoutCancel(c.Request.Context()), id)
	if retryErr != nil {
		if sale != nil && (apperrors.Is(retryErr, apperrors.ErrRetryable) || apperrors.Is(retryErr, apperrors.ErrRejected)) {
			c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
			return
		}

		httputil.HandleErrorGin(c, retryErr, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}
