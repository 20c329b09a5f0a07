package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/microloans/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stamps id, status and timestamps on loan and inserts it atomically
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List returns every loan in insertion order
	List(ctx context.Context) ([]*domain.Loan, error)

	// Summarize returns loan count and amount per status and currency
	Summarize(ctx context.Context) ([]*domain.LoanGroup, error)

	// HealthCheck verifies the database is reachable without touching data
	HealthCheck(ctx context.Context) error
}
