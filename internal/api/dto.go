package api

import (
	"github.com/shopspring/decimal"
)

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateUserRequest creates a user record.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// GoalRequest sets or replaces the user's retirement goal.
type GoalRequest struct {
	CurrentAge          int             `json:"current_age"`
	TargetRetirementAge int             `json:"target_retirement_age"`
	DesiredAnnualIncome decimal.Decimal `json:"desired_annual_income"`
	InflationRate       decimal.Decimal `json:"inflation_rate"` // percent, 0-20
}

// AccountRequest creates a retirement account.
type AccountRequest struct {
	AccountType        string          `json:"account_type"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	AnnualContribution decimal.Decimal `json:"annual_contribution"`
	EmployerMatch      decimal.Decimal `json:"employer_match"`
}

// InvestmentRequest creates an investment.
type InvestmentRequest struct {
	Name                 string          `json:"name"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
	ExpectedReturn       decimal.Decimal `json:"expected_return"`
	RiskLevel            string          `json:"risk_level"`
}
