// Package engine implements the retirement optimization and projection
// engine: the deterministic projector, the Monte Carlo simulator, the
// portfolio allocator, the contribution allocator, the timeline analyzer
// and the orchestrator that ranks their outputs.
//
// Every component is a pure function over immutable inputs. The engine
// performs no I/O; callers fetch goal, accounts and investments from the
// store before invoking it.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/finmath"
)

// Projector produces the deterministic point-estimate projection.
type Projector struct{}

// NewProjector creates a new projector.
func NewProjector() *Projector {
	return &Projector{}
}

// CreateProjection combines a goal, a set of accounts and a set of
// investments into a single point-estimate projection: balance at
// retirement, shortfall against the nest egg, and a recommended monthly
// savings figure.
func (p *Projector) CreateProjection(goal domain.RetirementGoal, accounts []domain.RetirementAccount, investments []domain.Investment) (*domain.ProjectionResult, error) {
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	years := goal.YearsUntilRetirement()
	totalBalance := domain.TotalBalance(accounts)
	monthlyContribution := domain.TotalAnnualContributions(accounts).Div(decimal.NewFromInt(12))
	portfolioReturn := finmath.PortfolioReturn(investments)

	adjustedIncome := finmath.InflationAdjustedIncome(goal.DesiredAnnualIncome, goal.InflationRate, years)
	nestEgg := finmath.NestEggNeeded(adjustedIncome, finmath.DefaultWithdrawalRate)
	projected := finmath.CompoundGrowth(totalBalance, monthlyContribution, portfolioReturn, years)

	shortfall := nestEgg.Sub(projected)
	recommended := decimal.Zero
	if shortfall.IsPositive() {
		recommended = finmath.RequiredMonthlySavings(totalBalance, nestEgg, portfolioReturn, years)
	} else {
		shortfall = decimal.Zero
	}

	return &domain.ProjectionResult{
		ProjectedBalance:         projected,
		NestEggNeeded:            nestEgg,
		Shortfall:                shortfall,
		RecommendedMonthlySaving: recommended,
		YearsUntilRetirement:     years,
		InflationAdjustedIncome:  adjustedIncome,
	}, nil
}
