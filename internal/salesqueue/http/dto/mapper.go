// Package dto provides data transfer objects for the sale queue HTTP layer.
package dto

import (
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// ToSalePayload converts an EnqueueSaleRequest DTO to a domain SalePayload
func ToSalePayload(req EnqueueSaleRequest) domain.SalePayload {
	lines := make([]domain.CartLine, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		lines = append(lines, domain.CartLine{
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			SellingUnitID: item.SellingUnitID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
		})
	}

	return domain.SalePayload{
		CartItems:         lines,
		LocationID:        req.LocationID,
		SaleNumber:        req.SaleNumber,
		IsWholesale:       req.IsWholesale,
		CustomerID:        req.CustomerID,
		BusinessAccountID: req.BusinessAccountID,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		PaymentStatus:     domain.PaymentStatus(req.PaymentStatus),
		AmountReceived:    req.AmountReceived,
		Change:            req.Change,
		MpesaPhoneNumber:  req.MpesaPhoneNumber,
		TaxIDs:            req.TaxIDs,
		SaleDate:          req.SaleDate,
	}
}

// ToSaleResponse converts a domain QueuedSale to a SaleResponse DTO
func ToSaleResponse(sale *domain.QueuedSale) SaleResponse {
	return SaleResponse{
		ID:         sale.ID,
		Payload:    sale.Payload,
		Status:     string(sale.Status),
		RetryCount: sale.RetryCount,
		LastError:  sale.LastError,
		SyncedAt:   sale.SyncedAt,
		CreatedAt:  sale.CreatedAt,
		UpdatedAt:  sale.UpdatedAt,
	}
}

// ToSaleListResponse converts a slice of queued sales to a SaleListResponse DTO
func ToSaleListResponse(sales []*domain.QueuedSale, offset, limit int) SaleListResponse {
	responses := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		responses = append(responses, ToSaleResponse(sale))
	}

	return SaleListResponse{
		Sales:  responses,
		Offset: offset,
		Limit:  limit,
	}
}

// ToCountsResponse converts a status count map to a CountsResponse DTO
func ToCountsResponse(counts map[domain.SaleStatus]int) CountsResponse {
	return CountsResponse{
		Queued:   counts[domain.SaleStatusQueued],
		Syncing:  counts[domain.SaleStatusSyncing],
		Synced:   counts[domain.SaleStatusSynced],
		Failed:   counts[domain.SaleStatusFailed],
		Rejected: counts[domain.SaleStatusRejected],
	}
}
