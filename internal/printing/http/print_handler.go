// Package http provides HTTP handlers for the print pipeline.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/httputil"
	"github.com/tillware/posd/internal/printing/domain"
	"github.com/tillware/posd/internal/printing/http/dto"
	"github.com/tillware/posd/internal/printing/usecase"
)

// PrintHandler handles print pipeline HTTP requests
type PrintHandler struct {
	printUseCase usecase.PrintUseCase
	logger       *slog.Logger
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printUseCase usecase.PrintUseCase, logger *slog.Logger) *PrintHandler {
	return &PrintHandler{
		printUseCase: printUseCase,
		logger:       logger,
	}
}

// RegisterRoutes mounts the print pipeline routes.
func (h *PrintHandler) RegisterRoutes(rg *gin.RouterGroup) {
	print := rg.Group("/print")
	print.POST("", h.SubmitHandler)
	print.GET("/history", h.HistoryHandler)
	print.GET("/queued", h.QueuedHandler)
	print.POST("/drain", h.DrainHandler)
	print.POST("/:id/retry", h.RetryHandler)
	print.POST("/:id/resolve", h.ResolveHandler)

	rg.GET("/printers/assignments", h.AssignmentsHandler)
}

// SubmitHandler renders and prints an order. A dispatch failure is not an
// HTTP error: the job was accepted and handled, so the response is 200 with
// status "failed" and the UI offers the retry/queue/skip choices.
// POST /v1/print - Returns 200 OK with the print job.
func (h *PrintHandler) SubmitHandler(c *gin.Context) {
	var req dto.SubmitPrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	format := domain.JobFormatThermal
	if req.Format != "" {
		format = domain.JobFormat(req.Format)
	}

	copies := req.Copies
	if copies == 0 {
		copies = 1
	}

	job, submitErr := h.printUseCase.Submit(c.Request.Context(), dto.ToOrder(req.Order),
		domain.JobType(req.JobType), format, copies)
	if submitErr != nil {
		if job != nil && apperrors.Is(submitErr, apperrors.ErrRetryable) {
			c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
			return
		}

		httputil.HandleErrorGin(c, submitErr, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
}

// RetryHandler re-dispatches a failed job. Like submit, a dispatch that
// failed again reports through the job's status; refusals (exhausted budget,
// wrong state, unknown id) map to error responses.
// POST /v1/print/:id/retry - Returns 200 OK.
func (h *PrintHandler) RetryHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	job, retryErr := h.printUseCase.Retry(c.Request.Context(), id)
	if retryErr != nil {
		if job != nil && apperrors.Is(retryErr, apperrors.ErrRetryable) {
			c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
			return
		}

		httputil.HandleErrorGin(c, retryErr, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
}

// ResolveHandler applies the operator's escalation decision.
// POST /v1/print/:id/resolve - Returns 200 OK.
func (h *PrintHandler) ResolveHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.ResolvePrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	job, resolveErr := h.printUseCase.Resolve(c.Request.Context(), id, usecase.ResolveChoice(req.Choice))
	if resolveErr != nil {
		if job != nil && apperrors.Is(resolveErr, apperrors.ErrRetryable) {
			c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
			return
		}

		httputil.HandleErrorGin(c, resolveErr, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToPrintJobResponse(job))
}

// HistoryHandler lists recent jobs, newest first.
// GET /v1/print/history - Returns 200 OK.
func (h *PrintHandler) HistoryHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToPrintJobListResponse(h.printUseCase.History()))
}

// QueuedHandler lists the persisted retry queue, oldest first.
// GET /v1/print/queued - Returns 200 OK.
func (h *PrintHandler) QueuedHandler(c *gin.Context) {
	jobs, err := h.printUseCase.Queued(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToPrintJobListResponse(jobs))
}

// DrainHandler retries every job in the persisted queue on demand. The drain
// runs on a context detached from the request so a client disconnect cannot
// abort a dispatch once started.
// POST /v1/print/drain - Returns 200 OK.
func (h *PrintHandler) DrainHandler(c *gin.Context) {
	result, err := h.printUseCase.DrainQueued(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToDrainResultResponse(result))
}

// AssignmentsHandler reports the operator-configured role-to-device mapping.
// GET /v1/printers/assignments - Returns 200 OK.
func (h *PrintHandler) AssignmentsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToAssignmentsResponse(h.printUseCase.Assignments()))
}
