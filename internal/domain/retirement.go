package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/pkg/percent"
)

// AccountType identifies the kind of retirement account, which determines
// employer-match treatment and statutory contribution limits.
type AccountType string

const (
	Account401k      AccountType = "401k"
	Account403b      AccountType = "403b"
	AccountIRA       AccountType = "IRA"
	AccountRothIRA   AccountType = "Roth IRA"
	AccountSEPIRA    AccountType = "SEP-IRA"
	AccountSimpleIRA AccountType = "Simple IRA"
	AccountPension   AccountType = "Pension"
	AccountOther     AccountType = "Other"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{
	Account401k, Account403b, AccountIRA, AccountRothIRA,
	AccountSEPIRA, AccountSimpleIRA, AccountPension, AccountOther,
}

// Valid reports whether the account type is one of the supported values.
func (at AccountType) Valid() bool {
	for _, t := range AccountTypes {
		if at == t {
			return true
		}
	}
	return false
}

// RiskLevel classifies an investment's volatility band.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Valid reports whether the risk level is one of the supported values.
func (rl RiskLevel) Valid() bool {
	return rl == RiskLow || rl == RiskMedium || rl == RiskHigh
}

// User is the owner of a goal, accounts and investments.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RetirementGoal captures a user's retirement target. Exactly one exists
// per user; the store enforces that, not the engine.
type RetirementGoal struct {
	UserID              string          `json:"user_id"`
	CurrentAge          int             `json:"current_age"`
	TargetRetirementAge int             `json:"target_retirement_age"`
	DesiredAnnualIncome decimal.Decimal `json:"desired_annual_income"`
	InflationRate       percent.Percent `json:"inflation_rate"`
}

// YearsUntilRetirement returns the projection horizon in whole years.
func (g RetirementGoal) YearsUntilRetirement() int {
	return g.TargetRetirementAge - g.CurrentAge
}

// Validate checks the goal's field ranges.
func (g RetirementGoal) Validate() error {
	if g.CurrentAge < 1 || g.CurrentAge > 99 {
		return fmt.Errorf("current age must be between 1 and 99, got %d", g.CurrentAge)
	}
	if g.TargetRetirementAge < 1 || g.TargetRetirementAge > 99 {
		return fmt.Errorf("target retirement age must be between 1 and 99, got %d", g.TargetRetirementAge)
	}
	if g.TargetRetirementAge <= g.CurrentAge {
		return fmt.Errorf("target retirement age (%d) must exceed current age (%d)", g.TargetRetirementAge, g.CurrentAge)
	}
	if g.DesiredAnnualIncome.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("desired annual income must be positive")
	}
	if g.InflationRate.LessThan(decimal.Zero) || g.InflationRate.GreaterThan(decimal.NewFromInt(20)) {
		return fmt.Errorf("inflation rate must be between 0%% and 20%%")
	}
	return nil
}

// RetirementAccount is a single tax-advantaged (or other) savings account.
type RetirementAccount struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	AccountType        AccountType     `json:"account_type"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	AnnualContribution decimal.Decimal `json:"annual_contribution"`
	EmployerMatch      decimal.Decimal `json:"employer_match"`
}

// Validate checks the account's field ranges.
func (a RetirementAccount) Validate() error {
	if !a.AccountType.Valid() {
		return fmt.Errorf("unknown account type %q", a.AccountType)
	}
	if a.CurrentBalance.IsNegative() {
		return fmt.Errorf("current balance cannot be negative")
	}
	if a.AnnualContribution.IsNegative() {
		return fmt.Errorf("annual contribution cannot be negative")
	}
	if a.EmployerMatch.IsNegative() {
		return fmt.Errorf("employer match cannot be negative")
	}
	return nil
}

// Investment is a holding within the user's portfolio. Allocation
// percentages across a user's investments need not sum to 100; the engine
// normalizes by the observed total when computing weighted values.
type Investment struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	Name                 string          `json:"name"`
	AllocationPercentage percent.Percent `json:"allocation_percentage"`
	ExpectedReturn       percent.Percent `json:"expected_return"`
	RiskLevel            RiskLevel       `json:"risk_level"`
}

// Validate checks the investment's field ranges.
func (inv Investment) Validate() error {
	if inv.Name == "" {
		return fmt.Errorf("investment name is required")
	}
	if inv.AllocationPercentage.LessThanOrEqual(decimal.Zero) || inv.AllocationPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("allocation percentage must be greater than 0 and at most 100")
	}
	if inv.ExpectedReturn.LessThan(decimal.Zero) || inv.ExpectedReturn.GreaterThan(decimal.NewFromInt(30)) {
		return fmt.Errorf("expected return must be between 0%% and 30%%")
	}
	if !inv.RiskLevel.Valid() {
		return fmt.Errorf("unknown risk level %q", inv.RiskLevel)
	}
	return nil
}

// TotalBalance sums current balances across accounts.
func TotalBalance(accounts []RetirementAccount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.CurrentBalance)
	}
	return total
}

// TotalAnnualContributions sums annual contributions plus employer matches
// across accounts.
func TotalAnnualContributions(accounts []RetirementAccount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.AnnualContribution).Add(a.EmployerMatch)
	}
	return total
}
