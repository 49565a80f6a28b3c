package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pensionworks/pensync/internal/breaker"
	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/sync/http/dto"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// mockSyncUseCase is a mock implementation of the sync use case interface.
type mockSyncUseCase struct {
	mock.Mock
}

func (m *mockSyncUseCase) Sync(ctx context.Context, options domain.SyncOptions) (*domain.SyncResult, error) {
	args := m.Called(ctx, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *mockSyncUseCase) Preview(
	ctx context.Context,
	branchCodes []string,
	limit int,
) ([]warehouse.Record, error) {
	args := m.Called(ctx, branchCodes, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.Record), args.Error(1)
}

func (m *mockSyncUseCase) GetJob(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncJob), args.Error(1)
}

func (m *mockSyncUseCase) ListJobs(ctx context.Context, offset, limit int) ([]*domain.SyncJob, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SyncJob), args.Error(1)
}

func (m *mockSyncUseCase) CircuitState() breaker.Snapshot {
	args := m.Called()
	return args.Get(0).(breaker.Snapshot)
}

func (m *mockSyncUseCase) Circuits() []breaker.Snapshot {
	args := m.Called()
	return args.Get(0).([]breaker.Snapshot)
}

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*SyncHandler, *mockSyncUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mockSyncUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSyncHandler(mockUseCase, logger), mockUseCase
}

// createTestContext builds a gin context for the given method, target, and
// optional JSON body.
func createTestContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestSyncHandler_TriggerHandler(t *testing.T) {
	t.Run("Success_WithBody", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		jobID := uuid.Must(uuid.NewV7())
		request := dto.TriggerSyncRequest{
			BranchCodes:   []string{"BR001"},
			DryRun:        false,
			RecordChanges: true,
		}
		result := &domain.SyncResult{
			SyncJobID:      jobID,
			TotalProcessed: 5,
			Created:        2,
			Updated:        3,
		}

		mockUseCase.On("Sync", mock.Anything, domain.SyncOptions{
			BranchCodes:   []string{"BR001"},
			RecordChanges: true,
			Authorized:    true,
		}).Return(result, nil).Once()

		c, rec := createTestContext(t, http.MethodPost, "/v1/sync", request)
		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.SyncResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, jobID.String(), response.SyncJobID)
		assert.Equal(t, 5, response.TotalProcessed)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_EmptyBodyIsFullRun", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		result := &domain.SyncResult{SyncJobID: uuid.Must(uuid.NewV7())}
		mockUseCase.On("Sync", mock.Anything, domain.SyncOptions{Authorized: true}).
			Return(result, nil).Once()

		c, rec := createTestContext(t, http.MethodPost, "/v1/sync", nil)
		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidBranchCode", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.TriggerSyncRequest{BranchCodes: []string{"not a code"}}

		c, rec := createTestContext(t, http.MethodPost, "/v1/sync", request)
		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockUseCase.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/sync", bytes.NewReader([]byte("{broken")))
		c.Request.Header.Set("Content-Type", "application/json")

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUseCase.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	})

	t.Run("Error_CircuitOpen", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Sync", mock.Anything, mock.AnythingOfType("domain.SyncOptions")).
			Return(nil, domain.ErrWarehouseIsolated).Once()

		c, rec := createTestContext(t, http.MethodPost, "/v1/sync", nil)
		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestSyncHandler_PreviewHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		records := []warehouse.Record{{ClientCode: "CL-0001", BranchCode: "BR001"}}
		mockUseCase.On("Preview", mock.Anything, []string{"BR001", "BR002"}, 10).
			Return(records, nil).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/preview?branch_codes=BR001,BR002", nil)
		handler.PreviewHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.PreviewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "CL-0001", response.Data[0].ClientCode)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ExplicitLimit", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Preview", mock.Anything, []string(nil), 25).
			Return([]warehouse.Record{}, nil).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/preview?limit=25", nil)
		handler.PreviewHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/preview?limit=9999", nil)
		handler.PreviewHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockUseCase.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_CircuitOpen", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Preview", mock.Anything, []string(nil), 10).
			Return(nil, domain.ErrWarehouseIsolated).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/preview", nil)
		handler.PreviewHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestSyncHandler_GetJobHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		jobID := uuid.Must(uuid.NewV7())
		job := &domain.SyncJob{
			ID:     jobID,
			Type:   domain.SyncTypeWarehouse,
			Status: domain.SyncJobStatusCompleted,
		}
		mockUseCase.On("GetJob", mock.Anything, jobID).Return(job, nil).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/jobs/"+jobID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
		handler.GetJobHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.SyncJobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, jobID.String(), response.ID)
		assert.Equal(t, "completed", response.Status)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/jobs/not-a-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
		handler.GetJobHandler(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUseCase.AssertNotCalled(t, "GetJob", mock.Anything, mock.Anything)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		jobID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetJob", mock.Anything, jobID).
			Return(nil, domain.ErrSyncJobNotFound).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/jobs/"+jobID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
		handler.GetJobHandler(c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSyncHandler_ListJobsHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		jobs := []*domain.SyncJob{
			{ID: uuid.Must(uuid.NewV7()), Status: domain.SyncJobStatusCompleted},
		}
		mockUseCase.On("ListJobs", mock.Anything, 0, 50).Return(jobs, nil).Once()

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/jobs", nil)
		handler.ListJobsHandler(c)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.ListSyncJobsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, rec := createTestContext(t, http.MethodGet, "/v1/sync/jobs?limit=9999", nil)
		handler.ListJobsHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockUseCase.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSyncHandler_CircuitsHandler(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t)

	snapshots := []breaker.Snapshot{{Name: "warehouse", State: "closed"}}
	mockUseCase.On("Circuits").Return(snapshots).Once()

	c, rec := createTestContext(t, http.MethodGet, "/v1/sync/circuits", nil)
	handler.CircuitsHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.CircuitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "warehouse", response.Data[0].Name)
	assert.Equal(t, "closed", response.Data[0].State)
}

func TestParseBranchCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("RepeatedAndCommaSeparated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet,
			"/v1/sync/preview?branch_codes=BR001,BR002&branch_codes=BR003", nil)

		assert.Equal(t, []string{"BR001", "BR002", "BR003"}, parseBranchCodes(c))
	})

	t.Run("EmptyEntriesDropped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/sync/preview?branch_codes=,BR001,%20", nil)

		assert.Equal(t, []string{"BR001"}, parseBranchCodes(c))
	})

	t.Run("Absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/sync/preview", nil)

		assert.Nil(t, parseBranchCodes(c))
	})
}
