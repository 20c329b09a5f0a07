package domain

// Stats is the aggregate view over every stored loan.
type Stats struct {
	TotalLoans  int64            `json:"total_loans"`
	TotalAmount Fixed            `json:"total_amount"`
	AvgAmount   Fixed            `json:"avg_amount"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByCurrency  map[string]int64 `json:"by_currency"`
}

// LoanGroup is one row of the status x currency roll-up.
type LoanGroup struct {
	Status      string `db:"status"`
	Currency    string `db:"currency"`
	Count       int64  `db:"loan_count"`
	TotalAmount Fixed  `db:"total_amount"`
}
