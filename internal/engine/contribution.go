package engine

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
)

// contributionLimits holds the 2024 statutory annual contribution limits per
// account type. Types outside the table use defaultContributionLimit.
var contributionLimits = map[domain.AccountType]decimal.Decimal{
	domain.Account401k:      decimal.NewFromInt(23000),
	domain.Account403b:      decimal.NewFromInt(23000),
	domain.AccountIRA:       decimal.NewFromInt(7000),
	domain.AccountRothIRA:   decimal.NewFromInt(7000),
	domain.AccountSEPIRA:    decimal.NewFromInt(69000),
	domain.AccountSimpleIRA: decimal.NewFromInt(16000),
}

var defaultContributionLimit = decimal.NewFromInt(6000)

// employerMatchRate is the assumed match: 50% of the employee's annual
// contribution, offered only on employer plans (401k/403b).
var employerMatchRate = decimal.NewFromFloat(0.5)

// marginalRateBands maps age bands to an estimated marginal tax rate, used
// for the tax-savings estimate on pre-tax contributions.
var marginalRateBands = []struct {
	MaxAge int // exclusive
	Rate   decimal.Decimal
}{
	{30, decimal.NewFromFloat(0.22)},
	{45, decimal.NewFromFloat(0.24)},
	{55, decimal.NewFromFloat(0.32)},
	{200, decimal.NewFromFloat(0.24)},
}

const (
	reasonMaximizeMatch   = "Maximize employer match"
	reasonTaxOptimization = "Tax optimization"
)

// matchBonus is the flat score bonus for accounts carrying any employer
// match, which dominates the tax multiplier in ordering.
const matchBonus = 200.0

// ContributionPlanner allocates a monthly budget across accounts: first to
// uncaptured employer match, then by tax-advantage score bounded by the
// statutory contribution limits.
type ContributionPlanner struct {
	Logger zerolog.Logger
}

// NewContributionPlanner creates a new contribution planner.
func NewContributionPlanner(log zerolog.Logger) *ContributionPlanner {
	return &ContributionPlanner{Logger: log}
}

// Optimize runs the two-pass allocation over a depletable monthly budget.
// The pool is threaded through both passes in annual units; allocations are
// reported as monthly figures.
func (c *ContributionPlanner) Optimize(accounts []domain.RetirementAccount, availableMonthly decimal.Decimal, currentAge int) (*domain.ContributionResult, error) {
	if availableMonthly.IsNegative() {
		return nil, fmt.Errorf("%w: available monthly amount cannot be negative", ErrInvalidInput)
	}

	twelve := decimal.NewFromInt(12)
	remaining := availableMonthly.Mul(twelve)
	allocated := make([]decimal.Decimal, len(accounts))
	for i := range allocated {
		allocated[i] = decimal.Zero
	}

	result := &domain.ContributionResult{
		TotalMonthlyAllocated: decimal.Zero,
		AnnualMatchCaptured:   decimal.Zero,
		EstimatedTaxSavings:   decimal.Zero,
	}

	// Match pass: capture uncaptured employer match in account-list order,
	// never pushing an account past its statutory room.
	for i, account := range accounts {
		if remaining.IsZero() {
			break
		}
		uncaptured := uncapturedMatch(account)
		if !uncaptured.IsPositive() {
			continue
		}
		room := annualRoom(account)
		if !room.IsPositive() {
			continue
		}
		amount := decimal.Min(uncaptured, room, remaining)
		remaining = remaining.Sub(amount)
		allocated[i] = allocated[i].Add(amount)
		result.AnnualMatchCaptured = result.AnnualMatchCaptured.Add(amount)
		result.Allocations = append(result.Allocations, domain.ContributionAllocation{
			AccountID:     account.ID,
			AccountType:   account.AccountType,
			MonthlyAmount: amount.Div(twelve),
			Reason:        reasonMaximizeMatch,
			Priority:      domain.PriorityHigh,
		})
	}

	// Tax-optimization pass: fill remaining statutory room in score order.
	taxDeferred401k := decimal.Zero
	for _, i := range rankByTaxScore(accounts, currentAge) {
		if remaining.IsZero() {
			break
		}
		account := accounts[i]
		room := annualRoom(account).Sub(allocated[i])
		if !room.IsPositive() {
			continue
		}
		amount := decimal.Min(room, remaining)
		remaining = remaining.Sub(amount)
		allocated[i] = allocated[i].Add(amount)
		if account.AccountType == domain.Account401k {
			taxDeferred401k = taxDeferred401k.Add(amount)
		}
		result.Allocations = append(result.Allocations, domain.ContributionAllocation{
			AccountID:     account.ID,
			AccountType:   account.AccountType,
			MonthlyAmount: amount.Div(twelve),
			Reason:        reasonTaxOptimization,
			Priority:      domain.PriorityMedium,
		})
	}

	for _, allocation := range result.Allocations {
		result.TotalMonthlyAllocated = result.TotalMonthlyAllocated.Add(allocation.MonthlyAmount)
	}
	result.EstimatedTaxSavings = taxDeferred401k.Mul(marginalRate(currentAge))

	c.Logger.Debug().
		Str("monthly_allocated", result.TotalMonthlyAllocated.StringFixed(2)).
		Str("match_captured", result.AnnualMatchCaptured.StringFixed(2)).
		Int("allocations", len(result.Allocations)).
		Msg("contributions optimized")

	return result, nil
}

// uncapturedMatch estimates the annual employer match an account could earn
// but currently does not. Only employer plans carry a match.
func uncapturedMatch(account domain.RetirementAccount) decimal.Decimal {
	if account.AccountType != domain.Account401k && account.AccountType != domain.Account403b {
		return decimal.Zero
	}
	maxMatch := account.AnnualContribution.Mul(employerMatchRate)
	return maxMatch.Sub(account.EmployerMatch)
}

// annualRoom returns the statutory room left in an account this year before
// any optimizer allocation.
func annualRoom(account domain.RetirementAccount) decimal.Decimal {
	limit, ok := contributionLimits[account.AccountType]
	if !ok {
		limit = defaultContributionLimit
	}
	return limit.Sub(account.AnnualContribution)
}

// rankByTaxScore orders account indices by descending tax-advantage score,
// preserving input order on ties.
func rankByTaxScore(accounts []domain.RetirementAccount, currentAge int) []int {
	indices := make([]int, len(accounts))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return taxScore(accounts[indices[a]], currentAge) > taxScore(accounts[indices[b]], currentAge)
	})
	return indices
}

// taxScore is the tax-advantage multiplier for an account plus the flat
// employer-match bonus. Roth contributions favor the young; traditional
// pre-tax contributions favor peak-earning ages.
func taxScore(account domain.RetirementAccount, currentAge int) float64 {
	score := 1.0
	switch account.AccountType {
	case domain.AccountRothIRA:
		if currentAge < 35 {
			score = 1.2
		}
	case domain.Account401k, domain.Account403b, domain.AccountIRA:
		if currentAge > 50 {
			score = 1.2
		}
	}
	if account.EmployerMatch.IsPositive() {
		score += matchBonus
	}
	return score
}

// marginalRate returns the estimated marginal tax rate for an age.
func marginalRate(currentAge int) decimal.Decimal {
	for _, band := range marginalRateBands {
		if currentAge < band.MaxAge {
			return band.Rate
		}
	}
	return marginalRateBands[len(marginalRateBands)-1].Rate
}
