// Package http provides HTTP handlers for sync operations.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/httputil"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/sync/http/dto"
	syncUseCase "github.com/pensionworks/pensync/internal/sync/usecase"
	customValidation "github.com/pensionworks/pensync/internal/validation"
)

// defaultPreviewLimit bounds preview responses when the client sends no limit.
const defaultPreviewLimit = 10

// maxPreviewLimit is the hard cap on preview page sizes.
const maxPreviewLimit = 100

// SyncHandler handles HTTP requests for sync operations.
type SyncHandler struct {
	syncUseCase syncUseCase.UseCase
	logger      *slog.Logger
}

// NewSyncHandler creates a new sync handler with required dependencies.
func NewSyncHandler(useCase syncUseCase.UseCase, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		syncUseCase: useCase,
		logger:      logger,
	}
}

// TriggerHandler starts a sync run.
// POST /v1/sync - An empty body triggers a full sync across all branches.
// Returns 200 OK with the run summary.
func (h *SyncHandler) TriggerHandler(c *gin.Context) {
	var req dto.TriggerSyncRequest

	// The body is optional; an empty body means a full default run.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Requests that reach this handler passed the outer auth surface, so the
	// run is marked authorized here.
	result, err := h.syncUseCase.Sync(c.Request.Context(), domain.SyncOptions{
		BranchCodes:   req.BranchCodes,
		DryRun:        req.DryRun,
		RecordChanges: req.RecordChanges,
		Authorized:    true,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncResultToResponse(result))
}

// PreviewHandler fetches raw warehouse rows without writing anything.
// GET /v1/sync/preview?branch_codes=BR001,BR002&limit=10
// Returns 200 OK with the raw rows.
func (h *SyncHandler) PreviewHandler(c *gin.Context) {
	branchCodes := parseBranchCodes(c)

	limit := defaultPreviewLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxPreviewLimit {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxPreviewLimit),
				h.logger,
			)
			return
		}
		limit = parsed
	}

	records, err := h.syncUseCase.Preview(c.Request.Context(), branchCodes, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordsToPreviewResponse(records))
}

// GetJobHandler retrieves a single sync job by id.
// GET /v1/sync/jobs/:id
// Returns 200 OK with the job, or 404 if it does not exist.
func (h *SyncHandler) GetJobHandler(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid job id: %w", err), h.logger)
		return
	}

	job, err := h.syncUseCase.GetJob(c.Request.Context(), jobID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncJobToResponse(job))
}

// ListJobsHandler retrieves sync jobs with pagination support.
// GET /v1/sync/jobs?offset=0&limit=50
// Returns 200 OK with the paginated job list, newest first.
func (h *SyncHandler) ListJobsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	jobs, err := h.syncUseCase.ListJobs(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncJobsToListResponse(jobs))
}

// CircuitsHandler reports the state of every circuit breaker.
// GET /v1/sync/circuits
// Returns 200 OK with one snapshot per registered circuit.
func (h *SyncHandler) CircuitsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CircuitsResponse{Data: h.syncUseCase.Circuits()})
}

// parseBranchCodes reads branch_codes from the query string, accepting both
// repeated parameters and comma-separated lists.
func parseBranchCodes(c *gin.Context) []string {
	var codes []string
	for _, raw := range c.QueryArray("branch_codes") {
		for _, code := range strings.Split(raw, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}
