package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusDisbursed = "disbursed"
	LoanStatusRepaid    = "repaid"
)

// LoanStatuses lists every status a loan may carry.
var LoanStatuses = []string{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusRejected,
	LoanStatusDisbursed,
	LoanStatusRepaid,
}

// Loan represents a loan entity
type Loan struct {
	ID              uuid.UUID `json:"id" db:"id"`
	BorrowerID      string    `json:"borrower_id" db:"borrower_id"`
	Amount          Fixed     `json:"amount" db:"amount"`
	Currency        string    `json:"currency" db:"currency"`
	Status          string    `json:"status" db:"status"`
	TermMonths      int       `json:"term_months" db:"term_months"`
	InterestRateAPR Fixed     `json:"interest_rate_apr" db:"interest_rate_apr"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Stamp prepares a validated loan for its first insert: a fresh id,
// pending status and identical creation/update timestamps.
func (l *Loan) Stamp(now time.Time) {
	l.ID = uuid.New()
	l.Status = LoanStatusPending
	l.CreatedAt = now
	l.UpdatedAt = now
}

// DTOs for requests

// CreateLoanRequest is the raw create payload. Fields stay untyped so the
// validator can report a wrong JSON type as a field error instead of
// rejecting the whole body; decode it with json.Decoder.UseNumber.
type CreateLoanRequest struct {
	BorrowerID      any `json:"borrower_id"`
	Amount          any `json:"amount"`
	Currency        any `json:"currency"`
	TermMonths      any `json:"term_months"`
	InterestRateAPR any `json:"interest_rate_apr"`
}
