// Package dto provides data transfer objects for the printing HTTP layer.
package dto

import (
	"time"

	"github.com/tillware/posd/internal/printing/domain"
	"github.com/tillware/posd/internal/printing/usecase"
)

// ToOrder converts an OrderRequest DTO to a domain Order
func ToOrder(req OrderRequest) *domain.Order {
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.OrderLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	return &domain.Order{
		ID:            req.ID,
		Number:        req.Number,
		Lines:         lines,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		Change:        req.Change,
		CustomerName:  req.CustomerName,
		CreatedAt:     createdAt,
	}
}

// ToPrintJobResponse converts a domain PrintJob to a PrintJobResponse DTO
func ToPrintJobResponse(job *domain.PrintJob) PrintJobResponse {
	return PrintJobResponse{
		ID:          job.ID,
		OrderID:     job.OrderID,
		OrderNumber: job.OrderNumber,
		JobType:     string(job.JobType),
		Format:      string(job.Format),
		Status:      string(job.Status),
		RetryCount:  job.RetryCount,
		MaxRetries:  job.MaxRetries,
		Error:       job.Error,
		DeviceID:    job.DeviceID,
		Copies:      job.Copies,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// ToPrintJobListResponse converts a slice of print jobs to a PrintJobListResponse DTO
func ToPrintJobListResponse(jobs []*domain.PrintJob) PrintJobListResponse {
	responses := make([]PrintJobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, ToPrintJobResponse(job))
	}

	return PrintJobListResponse{Jobs: responses}
}

// ToDrainResultResponse converts a drain result to a DrainResultResponse DTO
func ToDrainResultResponse(result *usecase.DrainResult) DrainResultResponse {
	return DrainResultResponse{
		Printed: result.Printed,
		Failed:  result.Failed,
	}
}

// ToAssignmentsResponse converts role assignments to an AssignmentsResponse DTO
func ToAssignmentsResponse(assignments domain.RoleAssignments) AssignmentsResponse {
	mapping := make(map[string]string, len(assignments))
	for jobType, device := range assignments {
		mapping[string(jobType)] = device
	}

	return AssignmentsResponse{Assignments: mapping}
}
