package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/finmath"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

func validGoal() domain.RetirementGoal {
	return domain.RetirementGoal{
		UserID:              "u1",
		CurrentAge:          30,
		TargetRetirementAge: 65,
		DesiredAnnualIncome: decimal.NewFromInt(80000),
		InflationRate:       percent.New(2.5),
	}
}

func TestCreateProjection(t *testing.T) {
	goal := validGoal()
	accounts := []domain.RetirementAccount{
		{
			ID:                 "a1",
			AccountType:        domain.Account401k,
			CurrentBalance:     decimal.NewFromInt(100000),
			AnnualContribution: decimal.NewFromInt(12000),
		},
	}

	projection, err := NewProjector().CreateProjection(goal, accounts, nil)
	require.NoError(t, err)

	assert.Equal(t, 35, projection.YearsUntilRetirement)

	// With no investments the projection uses the 7% default return.
	expectedBalance := finmath.CompoundGrowth(
		decimal.NewFromInt(100000), decimal.NewFromInt(1000), percent.NewFraction(0.07), 35)
	assert.True(t, projection.ProjectedBalance.Equal(expectedBalance))

	// Nest egg is 25x the inflation-adjusted income. Division by the
	// withdrawal rate truncates at decimal's division precision, so
	// compare within a cent.
	expectedIncome := finmath.InflationAdjustedIncome(goal.DesiredAnnualIncome, goal.InflationRate, 35)
	assert.True(t, projection.InflationAdjustedIncome.Equal(expectedIncome))
	diff := projection.NestEggNeeded.Sub(expectedIncome.Mul(decimal.NewFromInt(25))).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.01)),
		"nest egg %s not within a cent of 25x income", projection.NestEggNeeded)
}

func TestCreateProjectionShortfall(t *testing.T) {
	goal := validGoal()

	// No savings at all: everything is shortfall and a positive monthly
	// saving is recommended.
	projection, err := NewProjector().CreateProjection(goal, nil, nil)
	require.NoError(t, err)

	assert.True(t, projection.Shortfall.Equal(projection.NestEggNeeded),
		"with zero balance the shortfall must equal the full nest egg")
	assert.True(t, projection.RecommendedMonthlySaving.IsPositive())
}

func TestCreateProjectionSurplus(t *testing.T) {
	goal := validGoal()
	accounts := []domain.RetirementAccount{
		{
			ID:             "a1",
			AccountType:    domain.AccountIRA,
			CurrentBalance: decimal.NewFromInt(10000000),
		},
	}

	projection, err := NewProjector().CreateProjection(goal, accounts, nil)
	require.NoError(t, err)

	// A surplus reports a zero shortfall, never a negative one, and no
	// recommended saving.
	assert.True(t, projection.Shortfall.IsZero())
	assert.True(t, projection.RecommendedMonthlySaving.IsZero())
}

func TestCreateProjectionInvalidGoal(t *testing.T) {
	tests := []struct {
		name string
		goal domain.RetirementGoal
	}{
		{
			name: "retirement age not after current age",
			goal: domain.RetirementGoal{
				CurrentAge:          65,
				TargetRetirementAge: 65,
				DesiredAnnualIncome: decimal.NewFromInt(80000),
			},
		},
		{
			name: "zero income",
			goal: domain.RetirementGoal{
				CurrentAge:          30,
				TargetRetirementAge: 65,
			},
		},
		{
			name: "age out of range",
			goal: domain.RetirementGoal{
				CurrentAge:          0,
				TargetRetirementAge: 65,
				DesiredAnnualIncome: decimal.NewFromInt(80000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProjector().CreateProjection(tt.goal, nil, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
