package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/segyhp/microloans/internal/cache"
	"github.com/segyhp/microloans/internal/domain"
	"github.com/segyhp/microloans/internal/repository"
	customError "github.com/segyhp/microloans/pkg/errors"

	"github.com/sirupsen/logrus"
)

// LoanService is the contract the HTTP layer depends on.
type LoanService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	ListLoans(ctx context.Context) ([]*domain.Loan, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	RefreshStats(ctx context.Context) (*domain.Stats, error)
	HealthCheck(ctx context.Context) error
}

type loanService struct {
	loanRepo repository.LoanRepository
	cache    cache.StatsCache
	log      logrus.FieldLogger
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	statsCache cache.StatsCache,
	log logrus.FieldLogger,
) LoanService {
	if statsCache == nil {
		statsCache = cache.NopStatsCache{}
	}
	return &loanService{
		loanRepo: loanRepo,
		cache:    statsCache,
		log:      log,
	}
}

// CreateLoan validates the payload and persists it as a pending loan.
func (s *loanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	loan, err := domain.ValidateCreateLoan(request)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	// A stale snapshot only lives until its TTL, so a failed delete is not fatal.
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("stats cache invalidation failed")
	}

	s.log.WithFields(logrus.Fields{
		"loan_id":  loan.ID,
		"currency": loan.Currency,
	}).Info("loan created")

	return loan, nil
}

func (s *loanService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return s.loanRepo.GetByID(ctx, id)
}

func (s *loanService) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	return s.loanRepo.List(ctx)
}

// GetStats serves the cached snapshot when present, otherwise recomputes it.
func (s *loanService) GetStats(ctx context.Context) (*domain.Stats, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.WithError(err).Warn("stats cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	return s.RefreshStats(ctx)
}

// RefreshStats recomputes stats from the database and stores the snapshot.
// The snapshot is dropped instead of stored when a loan was created while it
// was being computed.
func (s *loanService) RefreshStats(ctx context.Context) (*domain.Stats, error) {
	generation, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.log.WithError(genErr).Warn("stats cache generation read failed")
	}

	groups, err := s.loanRepo.Summarize(ctx)
	if err != nil {
		return nil, err
	}

	stats := AggregateGroups(groups)
	if genErr != nil {
		return stats, nil
	}

	err = s.cache.Set(ctx, generation, stats)
	switch {
	case errors.Is(err, customError.ErrStaleSnapshot):
		s.log.WithField("generation", generation).Debug("stats snapshot outdated by a write, not cached")
	case err != nil:
		s.log.WithError(err).Warn("stats cache write failed")
	}
	return stats, nil
}

func (s *loanService) HealthCheck(ctx context.Context) error {
	return s.loanRepo.HealthCheck(ctx)
}
