package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/segyhp/microloans/pkg/utils"

	"github.com/shopspring/decimal"
)

// Business rule limits
const (
	CurrencyCodeLength = 3
	MinTermMonths      = 1
	MaxTermMonths      = math.MaxInt32 // loans.term_months is INTEGER
	MaxDecimalPlaces   = 2
)

var (
	MaxLoanAmount   = decimal.NewFromInt(50000)
	MaxInterestRate = decimal.NewFromInt(100)
)

// ValidateCreateLoan checks every rule on req and returns the normalised loan
// (id, status and timestamps left for the repository to stamp). All
// violations are reported together in a *errors.ValidationError.
func ValidateCreateLoan(req *CreateLoanRequest) (*Loan, error) {
	verr := &customError.ValidationError{}
	if req == nil {
		req = &CreateLoanRequest{}
	}
	loan := &Loan{}

	loan.BorrowerID = validateBorrowerID(verr, req.BorrowerID)
	loan.Amount = NewFixed(validateAmount(verr, req.Amount))
	loan.Currency = validateCurrency(verr, req.Currency)
	loan.TermMonths = validateTermMonths(verr, req.TermMonths)
	loan.InterestRateAPR = NewFixed(validateInterestRate(verr, req.InterestRateAPR))

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return loan, nil
}

func validateBorrowerID(verr *customError.ValidationError, v any) string {
	if v == nil {
		verr.Add("borrower_id", customError.FieldCodeRequired, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		verr.Add("borrower_id", customError.FieldCodeInvalidType, "must be a string")
		return ""
	}
	if strings.TrimSpace(s) == "" {
		verr.Add("borrower_id", customError.FieldCodeEmpty, "must not be empty")
		return ""
	}
	return s
}

// parseDecimal records a violation and returns ok=false when v is missing or
// not a usable number.
func parseDecimal(verr *customError.ValidationError, field string, v any) (decimal.Decimal, bool) {
	if v == nil {
		verr.Add(field, customError.FieldCodeRequired, "is required")
		return decimal.Zero, false
	}
	d, err := utils.DecimalFromJSON(v)
	if errors.Is(err, utils.ErrNumberTooLong) {
		verr.Add(field, customError.FieldCodeTooPrecise, "has too many digits")
		return decimal.Zero, false
	}
	if err != nil {
		verr.Add(field, customError.FieldCodeInvalidType, "must be a number")
		return decimal.Zero, false
	}
	return d, true
}

func validateAmount(verr *customError.ValidationError, v any) decimal.Decimal {
	amount, ok := parseDecimal(verr, "amount", v)
	if !ok {
		return decimal.Zero
	}
	if !amount.IsPositive() {
		verr.Add("amount", customError.FieldCodeOutOfRange, "must be greater than 0")
	} else if amount.GreaterThan(MaxLoanAmount) {
		verr.Add("amount", customError.FieldCodeOutOfRange, "must be less than or equal to "+MaxLoanAmount.String())
	} else if utils.DecimalPlaces(amount) > MaxDecimalPlaces {
		verr.Add("amount", customError.FieldCodeTooPrecise, "must have at most 2 decimal places")
	}
	return amount
}

func validateCurrency(verr *customError.ValidationError, v any) string {
	if v == nil {
		verr.Add("currency", customError.FieldCodeRequired, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		verr.Add("currency", customError.FieldCodeInvalidType, "must be a string")
		return ""
	}
	if utf8.RuneCountInString(s) != CurrencyCodeLength {
		verr.Add("currency", customError.FieldCodeInvalidLength, "must be exactly 3 characters")
	}
	return s
}

func validateTermMonths(verr *customError.ValidationError, v any) int {
	if v == nil {
		verr.Add("term_months", customError.FieldCodeRequired, "is required")
		return 0
	}
	term, err := utils.IntFromJSON(v)
	if errors.Is(err, utils.ErrIntegerOverflow) {
		verr.Add("term_months", customError.FieldCodeOutOfRange, "must be less than or equal to "+strconv.Itoa(MaxTermMonths))
		return 0
	}
	if err != nil {
		verr.Add("term_months", customError.FieldCodeInvalidType, "must be an integer")
		return 0
	}
	if term < MinTermMonths {
		verr.Add("term_months", customError.FieldCodeOutOfRange, "must be greater than or equal to 1")
	} else if term > MaxTermMonths {
		verr.Add("term_months", customError.FieldCodeOutOfRange, "must be less than or equal to "+strconv.Itoa(MaxTermMonths))
	}
	return term
}

func validateInterestRate(verr *customError.ValidationError, v any) decimal.Decimal {
	rate, ok := parseDecimal(verr, "interest_rate_apr", v)
	if !ok {
		return decimal.Zero
	}
	if rate.IsNegative() || rate.GreaterThan(MaxInterestRate) {
		verr.Add("interest_rate_apr", customError.FieldCodeOutOfRange, "must be between 0 and 100")
	} else if utils.DecimalPlaces(rate) > MaxDecimalPlaces {
		verr.Add("interest_rate_apr", customError.FieldCodeTooPrecise, "must have at most 2 decimal places")
	}
	return rate
}
