// Package finmath provides the closed-form financial formulas the
// projection and optimization engines are built on. All functions are pure.
package finmath

import (
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)

	// DefaultWithdrawalRate is the 4% rule used for nest-egg sizing.
	DefaultWithdrawalRate = percent.NewFraction(0.04)

	// DefaultPortfolioReturn is assumed when a user has no investments or
	// their allocation percentages sum to zero.
	DefaultPortfolioReturn = percent.NewFraction(0.07)

	// DefaultPortfolioVolatility is assumed under the same empty-set
	// condition as DefaultPortfolioReturn.
	DefaultPortfolioVolatility = percent.NewFraction(0.15)
)

// RiskLevelVolatility maps an investment's risk level to its assumed annual
// volatility. Levels outside the map fall back to DefaultPortfolioVolatility.
var RiskLevelVolatility = map[domain.RiskLevel]percent.Fraction{
	domain.RiskLow:    percent.NewFraction(0.05),
	domain.RiskMedium: percent.NewFraction(0.15),
	domain.RiskHigh:   percent.NewFraction(0.25),
}

// CompoundGrowth returns the future value of a principal growing at
// annualRate with level monthly contributions compounded monthly:
//
//	principal*(1+r)^years + contribution*((1+r/12)^(years*12)-1)/(r/12)
//
// When the rate is zero the contribution term degrades to
// contribution*12*years, avoiding a division by zero.
func CompoundGrowth(principal, monthlyContribution decimal.Decimal, annualRate percent.Fraction, years int) decimal.Decimal {
	if years <= 0 {
		return principal
	}
	if annualRate.IsZero() {
		return principal.Add(monthlyContribution.Mul(twelve).Mul(decimal.NewFromInt(int64(years))))
	}

	growth := one.Add(annualRate.Decimal).Pow(decimal.NewFromInt(int64(years)))
	principalFV := principal.Mul(growth)

	monthlyRate := annualRate.Decimal.Div(twelve)
	months := decimal.NewFromInt(int64(years) * 12)
	annuityFactor := one.Add(monthlyRate).Pow(months).Sub(one).Div(monthlyRate)
	return principalFV.Add(monthlyContribution.Mul(annuityFactor))
}

// RequiredMonthlySavings inverts the contribution term of CompoundGrowth to
// solve for the monthly amount needed to reach target from currentBalance
// over the horizon. Returns zero when the balance's own future value already
// meets the target.
func RequiredMonthlySavings(currentBalance, target decimal.Decimal, annualRate percent.Fraction, years int) decimal.Decimal {
	if years <= 0 {
		return decimal.Zero
	}

	balanceFV := CompoundGrowth(currentBalance, decimal.Zero, annualRate, years)
	if balanceFV.GreaterThanOrEqual(target) {
		return decimal.Zero
	}
	shortfall := target.Sub(balanceFV)

	if annualRate.IsZero() {
		return shortfall.Div(twelve.Mul(decimal.NewFromInt(int64(years))))
	}

	monthlyRate := annualRate.Decimal.Div(twelve)
	months := decimal.NewFromInt(int64(years) * 12)
	annuityFactor := one.Add(monthlyRate).Pow(months).Sub(one).Div(monthlyRate)
	return shortfall.Div(annuityFactor)
}

// InflationAdjustedIncome grows a desired income by the inflation rate over
// the horizon: income*(1+inflation)^years.
func InflationAdjustedIncome(desiredIncome decimal.Decimal, inflationRate percent.Percent, years int) decimal.Decimal {
	if years <= 0 {
		return desiredIncome
	}
	factor := one.Add(inflationRate.Fraction().Decimal).Pow(decimal.NewFromInt(int64(years)))
	return desiredIncome.Mul(factor)
}

// NestEggNeeded sizes the balance required at retirement to sustain the
// given annual income under the withdrawal rule. A zero withdrawal rate
// falls back to the 4% default rather than dividing by zero.
func NestEggNeeded(annualIncomeNeeded decimal.Decimal, withdrawalRate percent.Fraction) decimal.Decimal {
	if withdrawalRate.IsZero() {
		withdrawalRate = DefaultWithdrawalRate
	}
	return annualIncomeNeeded.Div(withdrawalRate.Decimal)
}

// PortfolioReturn returns the allocation-weighted average expected return
// across investments, normalized by the sum of allocation percentages.
// Returns the 7% default when the investment set is empty or the allocation
// sum is zero.
func PortfolioReturn(investments []domain.Investment) percent.Fraction {
	totalAllocation := decimal.Zero
	for _, inv := range investments {
		totalAllocation = totalAllocation.Add(inv.AllocationPercentage.Decimal)
	}
	if len(investments) == 0 || totalAllocation.IsZero() {
		return DefaultPortfolioReturn
	}

	weighted := decimal.Zero
	for _, inv := range investments {
		weighted = weighted.Add(inv.AllocationPercentage.Decimal.Mul(inv.ExpectedReturn.Fraction().Decimal))
	}
	return percent.Fraction{Decimal: weighted.Div(totalAllocation)}
}

// PortfolioVolatility returns the allocation-weighted average volatility
// across investments using the RiskLevelVolatility table, defaulting to 15%
// when there are no investments or the allocation sum is zero.
func PortfolioVolatility(investments []domain.Investment) percent.Fraction {
	totalAllocation := decimal.Zero
	for _, inv := range investments {
		totalAllocation = totalAllocation.Add(inv.AllocationPercentage.Decimal)
	}
	if len(investments) == 0 || totalAllocation.IsZero() {
		return DefaultPortfolioVolatility
	}

	weighted := decimal.Zero
	for _, inv := range investments {
		vol, ok := RiskLevelVolatility[inv.RiskLevel]
		if !ok {
			vol = DefaultPortfolioVolatility
		}
		weighted = weighted.Add(inv.AllocationPercentage.Decimal.Mul(vol.Decimal))
	}
	return percent.Fraction{Decimal: weighted.Div(totalAllocation)}
}
