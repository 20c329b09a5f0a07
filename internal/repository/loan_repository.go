package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/microloans/internal/domain"
	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/segyhp/microloans/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `id, borrower_id, amount, currency, status, term_months, interest_rate_apr, created_at, updated_at`

type loanRepository struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// NewLoanRepository builds a repository over the shared pool db. Every
// statement, including waiting for a free connection, is bounded by timeout.
func NewLoanRepository(db *sqlx.DB, timeout time.Duration) LoanRepository {
	return &loanRepository{db: db, timeout: timeout, now: utils.NowUTC}
}

func (r *loanRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	loan.Stamp(r.now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, query,
		loan.ID,
		loan.BorrowerID,
		loan.Amount,
		loan.Currency,
		loan.Status,
		loan.TermMonths,
		loan.InterestRateAPR,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := tx.Commit(); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	normalizeTimes(&loan)
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		ORDER BY created_at, id
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	loans := make([]*domain.Loan, 0)
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		normalizeTimes(loan)
	}
	return loans, nil
}

func (r *loanRepository) Summarize(ctx context.Context) ([]*domain.LoanGroup, error) {
	query := `
		SELECT status, currency, COUNT(*) AS loan_count, COALESCE(SUM(amount), 0) AS total_amount
		FROM loans
		GROUP BY status, currency
		ORDER BY status, currency
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	groups := make([]*domain.LoanGroup, 0)
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return groups, nil
}

func (r *loanRepository) HealthCheck(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

// lib/pq returns timestamptz in the session zone; the API speaks UTC.
func normalizeTimes(loan *domain.Loan) {
	loan.CreatedAt = loan.CreatedAt.UTC()
	loan.UpdatedAt = loan.UpdatedAt.UTC()
}
