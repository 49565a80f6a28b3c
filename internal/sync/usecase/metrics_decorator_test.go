package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pensionworks/pensync/internal/sync/domain"
	"github.com/pensionworks/pensync/internal/warehouse"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordSyncOutcome(ctx context.Context, created, updated, skipped, failed int) {
	m.Called(ctx, created, updated, skipped, failed)
}

func TestUseCaseWithMetrics_Sync(t *testing.T) {
	ctx := context.Background()
	options := domain.SyncOptions{Authorized: true}

	t.Run("Success", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		result := &domain.SyncResult{
			SyncJobID: uuid.Must(uuid.NewV7()),
			Created:   2,
			Updated:   1,
		}

		mockNext.On("Sync", ctx, options).Return(result, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "sync_run", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "sync_run", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
		mockMetrics.On("RecordSyncOutcome", ctx, 2, 1, 0, 0).Return().Once()

		got, err := uc.Sync(ctx, options)
		assert.NoError(t, err)
		assert.Equal(t, result, got)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("ErrorWithPartialResult", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		partial := &domain.SyncResult{SyncJobID: uuid.Must(uuid.NewV7()), Failed: 3}
		expectedErr := errors.New("warehouse down")

		mockNext.On("Sync", ctx, options).Return(partial, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "sync_run", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "sync_run", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()
		// Partial counters are still recorded so aborted runs stay visible.
		mockMetrics.On("RecordSyncOutcome", ctx, 0, 0, 0, 3).Return().Once()

		got, err := uc.Sync(ctx, options)
		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, partial, got)
		mockMetrics.AssertExpectations(t)
	})
}

func TestUseCaseWithMetrics_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		records := []warehouse.Record{{ClientCode: "CL-0001"}}

		mockNext.On("Preview", ctx, []string{"BR001"}, 10).Return(records, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "preview", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "preview", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		got, err := uc.Preview(ctx, []string{"BR001"}, 10)
		assert.NoError(t, err)
		assert.Equal(t, records, got)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("circuit open")

		mockNext.On("Preview", ctx, []string(nil), 10).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "preview", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "preview", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		got, err := uc.Preview(ctx, nil, 10)
		assert.Error(t, err)
		assert.Nil(t, got)
		mockMetrics.AssertExpectations(t)
	})
}

func TestUseCaseWithMetrics_Jobs(t *testing.T) {
	ctx := context.Background()

	t.Run("GetJob", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		jobID := uuid.Must(uuid.NewV7())
		job := &domain.SyncJob{ID: jobID}

		mockNext.On("GetJob", ctx, jobID).Return(job, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "job_get", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "job_get", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		got, err := uc.GetJob(ctx, jobID)
		assert.NoError(t, err)
		assert.Equal(t, job, got)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("ListJobs", func(t *testing.T) {
		mockNext := &MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewUseCaseWithMetrics(mockNext, mockMetrics)

		jobs := []*domain.SyncJob{{ID: uuid.Must(uuid.NewV7())}}

		mockNext.On("ListJobs", ctx, 0, 50).Return(jobs, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "sync", "job_list", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "sync", "job_list", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		got, err := uc.ListJobs(ctx, 0, 50)
		assert.NoError(t, err)
		assert.Equal(t, jobs, got)
		mockMetrics.AssertExpectations(t)
	})
}
