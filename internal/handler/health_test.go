package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/segyhp/microloans/internal/mocks"
	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		svc := mocks.NewMockLoanService()
		svc.On("HealthCheck", mock.Anything).Return(nil).Once()

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("database unreachable", func(t *testing.T) {
		svc := mocks.NewMockLoanService()
		svc.On("HealthCheck", mock.Anything).
			Return(customError.WrapDatabaseError(errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))).Once()

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, customError.ErrCodeServiceDown, decodeError(t, w).Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		withCache      bool
		cacheErr       error
		expectedStatus int
		expectedChecks map[string]string
	}{
		{
			name:           "all healthy",
			withCache:      true,
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:           "cache disabled",
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "ok", "redis": "disabled"},
		},
		{
			name:           "redis down",
			withCache:      true,
			cacheErr:       errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"database": "ok", "redis": "failed"},
		},
		{
			name:           "database down",
			dbErr:          customError.WrapDatabaseError(errors.New("down")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"database": "failed", "redis": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockLoanService()
			svc.On("HealthCheck", mock.Anything).Return(tt.dbErr).Once()

			router := newTestRouter(svc, nil)
			if tt.withCache {
				statsCache := &mocks.MockStatsCache{}
				statsCache.On("Ping", mock.Anything).Return(tt.cacheErr).Once()
				router = newTestRouter(svc, statsCache)
			}

			w := doRequest(router, http.MethodGet, "/health/ready", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedChecks, status.Checks)
		})
	}
}
