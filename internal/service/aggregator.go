package service

import (
	"github.com/segyhp/microloans/internal/domain"

	"github.com/shopspring/decimal"
)

// AggregateLoans computes stats over a full loan set.
func AggregateLoans(loans []*domain.Loan) *domain.Stats {
	groups := make([]*domain.LoanGroup, 0, len(loans))
	for _, loan := range loans {
		groups = append(groups, &domain.LoanGroup{
			Status:      loan.Status,
			Currency:    loan.Currency,
			Count:       1,
			TotalAmount: loan.Amount,
		})
	}
	return AggregateGroups(groups)
}

// AggregateGroups folds status x currency roll-up rows into stats. Only
// categories with a positive count appear in the breakdown maps.
func AggregateGroups(groups []*domain.LoanGroup) *domain.Stats {
	stats := &domain.Stats{
		ByStatus:   make(map[string]int64),
		ByCurrency: make(map[string]int64),
	}

	total := decimal.Zero
	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		stats.TotalLoans += g.Count
		total = total.Add(g.TotalAmount.Decimal)
		stats.ByStatus[g.Status] += g.Count
		stats.ByCurrency[g.Currency] += g.Count
	}

	stats.TotalAmount = domain.NewFixed(total)
	stats.AvgAmount = domain.NewFixed(average(total, stats.TotalLoans))
	return stats
}

// average is total/count rounded to cents, or zero for an empty set.
func average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}
