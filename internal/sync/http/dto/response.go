// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/pensionworks/pensync/internal/breaker"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// SyncResultResponse summarizes one finished sync run in API responses.
type SyncResultResponse struct {
	SyncJobID        string `json:"sync_job_id"`
	TotalProcessed   int    `json:"total_processed"`
	Created          int    `json:"created"`
	Updated          int    `json:"updated"`
	Skipped          int    `json:"skipped"`
	Failed           int    `json:"failed"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

// MapSyncResultToResponse converts a domain sync result to an API response.
func MapSyncResultToResponse(result *domain.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		SyncJobID:        result.SyncJobID.String(),
		TotalProcessed:   result.TotalProcessed,
		Created:          result.Created,
		Updated:          result.Updated,
		Skipped:          result.Skipped,
		Failed:           result.Failed,
		ProcessingTimeMS: result.ProcessingTime.Milliseconds(),
	}
}

// SyncJobResponse represents a sync job in API responses.
type SyncJobResponse struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsCreated   int        `json:"records_created"`
	RecordsUpdated   int        `json:"records_updated"`
	RecordsSkipped   int        `json:"records_skipped"`
	RecordsFailed    int        `json:"records_failed"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MapSyncJobToResponse converts a domain sync job to an API response.
func MapSyncJobToResponse(job *domain.SyncJob) SyncJobResponse {
	return SyncJobResponse{
		ID:               job.ID.String(),
		Type:             job.Type,
		Status:           string(job.Status),
		RecordsProcessed: job.RecordsProcessed,
		RecordsCreated:   job.RecordsCreated,
		RecordsUpdated:   job.RecordsUpdated,
		RecordsSkipped:   job.RecordsSkipped,
		RecordsFailed:    job.RecordsFailed,
		ErrorMessage:     job.ErrorMessage,
		StartedAt:        job.StartedAt,
		CompletedAt:      job.CompletedAt,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// ListSyncJobsResponse represents a paginated list of sync jobs in API responses.
type ListSyncJobsResponse struct {
	Data []SyncJobResponse `json:"data"`
}

// MapSyncJobsToListResponse converts a slice of domain sync jobs to a list response.
func MapSyncJobsToListResponse(jobs []*domain.SyncJob) ListSyncJobsResponse {
	data := make([]SyncJobResponse, 0, len(jobs))
	for _, job := range jobs {
		data = append(data, MapSyncJobToResponse(job))
	}

	return ListSyncJobsResponse{
		Data: data,
	}
}

// PreviewRecordResponse represents one raw warehouse row in preview responses.
// Columns keep their upstream names so operators can compare against warehouse
// exports directly.
type PreviewRecordResponse struct {
	ClientCode        string  `json:"client_code"`
	FullName          string  `json:"full_name"`
	PensionNumber     string  `json:"pension_number"`
	BirthDate         any     `json:"birth_date,omitempty"`
	PhoneNumber       string  `json:"phone_number,omitempty"`
	MobileNumber      string  `json:"mobile_number,omitempty"`
	PensionTypeCode   string  `json:"pension_type_code,omitempty"`
	PensionerTypeCode string  `json:"pensioner_type_code,omitempty"`
	ProductCode       string  `json:"product_code,omitempty"`
	BranchCode        string  `json:"branch_code,omitempty"`
	PARStatusCode     string  `json:"par_status_code,omitempty"`
	AccountTypeCode   string  `json:"account_type_code,omitempty"`
	OverdueAmount     float64 `json:"overdue_amount"`
	LoanStatus        string  `json:"loan_status,omitempty"`
}

// PreviewResponse represents a warehouse preview in API responses.
type PreviewResponse struct {
	Data []PreviewRecordResponse `json:"data"`
}

// MapRecordsToPreviewResponse converts raw warehouse rows to a preview response.
func MapRecordsToPreviewResponse(records []warehouse.Record) PreviewResponse {
	data := make([]PreviewRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, PreviewRecordResponse{
			ClientCode:        record.ClientCode,
			FullName:          record.FullName,
			PensionNumber:     record.PensionNumber,
			BirthDate:         record.BirthDate,
			PhoneNumber:       record.PhoneNumber,
			MobileNumber:      record.MobileNumber,
			PensionTypeCode:   record.PensionTypeCode,
			PensionerTypeCode: record.PensionerTypeCode,
			ProductCode:       record.ProductCode,
			BranchCode:        record.BranchCode,
			PARStatusCode:     record.PARStatusCode,
			AccountTypeCode:   record.AccountTypeCode,
			OverdueAmount:     record.OverdueAmount,
			LoanStatus:        record.LoanStatus,
		})
	}

	return PreviewResponse{
		Data: data,
	}
}

// CircuitsResponse represents the state of every circuit breaker.
type CircuitsResponse struct {
	Data []breaker.Snapshot `json:"data"`
}
