// Package http provides HTTP handlers for pricing reference data.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tillware/posd/internal/httputil"
	"github.com/tillware/posd/internal/pricing/http/dto"
	"github.com/tillware/posd/internal/pricing/usecase"
)

// PricingHandler handles pricing HTTP requests
type PricingHandler struct {
	pricingUseCase usecase.PricingUseCase
	logger         *slog.Logger
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricingUseCase usecase.PricingUseCase, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		pricingUseCase: pricingUseCase,
		logger:         logger,
	}
}

// RegisterRoutes mounts the pricing routes.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pricing := rg.Group("/pricing")
	pricing.GET("/status", h.StatusHandler)
	pricing.POST("/sync", h.SyncHandler)
	pricing.GET("/customers/:id/items", h.CustomerItemsHandler)
}

// StatusHandler reports the stored cursor and snapshot counts.
// GET /v1/pricing/status - Returns 200 OK.
func (h *PricingHandler) StatusHandler(c *gin.Context) {
	cursor, counts, err := h.pricingUseCase.Status(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusResponse(cursor, counts))
}

// SyncHandler runs a sync immediately and reports how it resolved. The sync
// runs on a context detached from the request so a client disconnect cannot
// abort it once started.
// POST /v1/pricing/sync - Returns 200 OK.
func (h *PricingHandler) SyncHandler(c *gin.Context) {
	result, err := h.pricingUseCase.Sync(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSyncResponse(result))
}

// CustomerItemsHandler retrieves the effective price items for a customer.
// GET /v1/pricing/customers/:id/items - Returns 200 OK.
func (h *PricingHandler) CustomerItemsHandler(c *gin.Context) {
	items, err := h.pricingUseCase.ItemsForCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToPriceItemListResponse(items))
}
