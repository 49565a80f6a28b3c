package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "NotFound",
			err:        apperrors.Wrap(apperrors.ErrNotFound, "sync job not found"),
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "Conflict",
			err:        apperrors.Wrap(apperrors.ErrConflict, "sync job already finalized"),
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
		{
			name:       "InvalidInput",
			err:        apperrors.Wrap(apperrors.ErrInvalidInput, "branch_codes: cannot be blank"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid_input",
		},
		{
			name:       "Forbidden",
			err:        apperrors.Wrap(apperrors.ErrForbidden, "sync not permitted"),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "Unavailable",
			err:        apperrors.Wrap(apperrors.ErrUnavailable, "warehouse circuit open"),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "upstream_unavailable",
		},
		{
			name:       "Unknown",
			err:        apperrors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := testContext(t)

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
		})
	}

	t.Run("NilErrorWritesNothing", func(t *testing.T) {
		c, rec := testContext(t)

		HandleErrorGin(c, nil, logger)

		assert.Empty(t, rec.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, rec := testContext(t)

	HandleBadRequestGin(c, assert.AnError, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Error)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, rec := testContext(t)

	HandleValidationErrorGin(c, assert.AnError, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error)
}
