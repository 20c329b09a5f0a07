package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log, &buf
}

func TestError_Shape(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequest(w, customError.ErrCodeValidationFailed, "Validation failed", []customError.FieldError{
		{Field: "amount", Code: customError.FieldCodeOutOfRange, Message: "must be greater than 0"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"Validation failed","fields":[{"field":"amount","code":"OUT_OF_RANGE","message":"must be greater than 0"}]}}`, w.Body.String())
}

func TestError_OmitsEmptyFields(t *testing.T) {
	w := httptest.NewRecorder()

	NotFound(w, customError.ErrCodeLoanNotFound, "Loan with ID x not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "fields")
}

func TestRecoverMiddleware(t *testing.T) {
	log, buf := bufferLogger()
	h := RecoverMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret internals")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/loans", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
	assert.Contains(t, buf.String(), "secret internals")

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, customError.ErrCodeInternalError, body.Error.Code)
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	log, buf := bufferLogger()
	h := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/loans", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/loans", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/loans", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}
