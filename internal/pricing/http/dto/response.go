// Package dto provides data transfer objects for the pricing HTTP layer.
package dto

import (
	"github.com/tillware/posd/internal/pricing/domain"
	"github.com/tillware/posd/internal/pricing/usecase"
)

// StatusResponse represents the pricing snapshot status
type StatusResponse struct {
	Cursor      string `json:"cursor"`
	Lists       int    `json:"lists"`
	Items       int    `json:"items"`
	Allocations int    `json:"allocations"`
}

// SyncResponse represents the outcome of a pricing sync run
type SyncResponse struct {
	Mode   string `json:"mode"`
	Cursor string `json:"cursor"`
}

// PriceItemResponse represents a single effective price entry
type PriceItemResponse struct {
	ID       string  `json:"id"`
	ListID   string  `json:"list_id"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// PriceItemListResponse represents the effective price items for a customer
type PriceItemListResponse struct {
	Items []PriceItemResponse `json:"items"`
}

// ToStatusResponse converts cursor and counts to a StatusResponse DTO
func ToStatusResponse(cursor string, counts *domain.Counts) StatusResponse {
	return StatusResponse{
		Cursor:      cursor,
		Lists:       counts.Lists,
		Items:       counts.Items,
		Allocations: counts.Allocations,
	}
}

// ToSyncResponse converts a sync result to a SyncResponse DTO
func ToSyncResponse(result *usecase.SyncResult) SyncResponse {
	return SyncResponse{
		Mode:   string(result.Mode),
		Cursor: result.Cursor,
	}
}

// ToPriceItemListResponse converts domain price items to a PriceItemListResponse DTO
func ToPriceItemListResponse(items []domain.PriceItem) PriceItemListResponse {
	responses := make([]PriceItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, PriceItemResponse{
			ID:       item.ID,
			ListID:   item.ListID,
			SKU:      item.SKU,
			Price:    item.Price,
			Currency: item.Currency,
		})
	}

	return PriceItemListResponse{Items: responses}
}
