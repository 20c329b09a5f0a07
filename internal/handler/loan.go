package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/segyhp/microloans/internal/domain"
	"github.com/segyhp/microloans/internal/service"
	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/segyhp/microloans/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// MaxBodyBytes caps the size of a create payload.
const MaxBodyBytes = 1 << 20

type LoanHandler struct {
	service service.LoanService
	log     logrus.FieldLogger
}

func NewLoanHandler(service service.LoanService, log logrus.FieldLogger) *LoanHandler {
	return &LoanHandler{
		service: service,
		log:     log,
	}
}

// CreateLoan handles POST /api/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	request, err := decodeCreateLoan(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), request)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /api/loans/{id}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, h.log, customError.WrapInvalidIdentifier(raw))
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, loan)
}

// ListLoans handles GET /api/loans
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}

	response.Success(w, loans)
}

// GetStats handles GET /api/stats
func (h *LoanHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, stats)
}

func decodeCreateLoan(w http.ResponseWriter, r *http.Request) (*domain.CreateLoanRequest, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	decoder.UseNumber()

	var request domain.CreateLoanRequest
	if err := decoder.Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, customError.WrapMalformedRequest("Request body too large", err)
		}
		return nil, customError.WrapMalformedRequest("Invalid JSON payload", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, customError.WrapMalformedRequest("Invalid JSON payload", errors.New("unexpected data after JSON object"))
	}

	return &request, nil
}
