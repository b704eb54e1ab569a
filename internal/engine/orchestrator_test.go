package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
	"github.com/rroupski/retirement-planner/internal/store/memory"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()

	goal := validGoal()
	require.NoError(t, mem.SaveGoal(ctx, goal))
	require.NoError(t, mem.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a1", UserID: goal.UserID, AccountType: domain.Account401k,
		CurrentBalance:     decimal.NewFromInt(150000),
		AnnualContribution: decimal.NewFromInt(12000),
		EmployerMatch:      decimal.NewFromInt(3000),
	}))
	require.NoError(t, mem.SaveInvestment(ctx, domain.Investment{
		ID: "i1", UserID: goal.UserID, Name: "Total Market Fund",
		AllocationPercentage: percent.New(70),
		ExpectedReturn:       percent.New(8),
		RiskLevel:            domain.RiskHigh,
	}))
	require.NoError(t, mem.SaveInvestment(ctx, domain.Investment{
		ID: "i2", UserID: goal.UserID, Name: "Aggregate Bond Fund",
		AllocationPercentage: percent.New(30),
		ExpectedReturn:       percent.New(4),
		RiskLevel:            domain.RiskLow,
	}))
	return mem
}

func newTestOrchestrator(mem *memory.Store) *Orchestrator {
	o := NewOrchestrator(mem, zerolog.Nop())
	o.Simulator.Seed = 42
	return o
}

func TestRunComprehensiveAllModules(t *testing.T) {
	mem := seedStore(t)
	budget := decimal.NewFromInt(800)

	result, err := newTestOrchestrator(mem).RunComprehensive(context.Background(), "u1", &budget)
	require.NoError(t, err)

	assert.Equal(t, "u1", result.UserID)
	assert.NotNil(t, result.Projection)
	assert.NotNil(t, result.MonteCarlo)
	assert.NotNil(t, result.Allocation)
	assert.NotNil(t, result.Contribution)
	assert.NotNil(t, result.Timeline)
	assert.False(t, result.GeneratedAt.IsZero())

	assert.Equal(t, DefaultSimulations, result.MonteCarlo.SimulationsRun)

	// One action per produced result, sorted by priority descending.
	require.Len(t, result.Actions, 4)
	for i := 1; i < len(result.Actions); i++ {
		assert.GreaterOrEqual(t, result.Actions[i-1].Priority, result.Actions[i].Priority)
	}
	for _, action := range result.Actions {
		assert.NotEmpty(t, action.Description)
		expected := basePriorities[action.Type] * impactMultipliers[action.Impact]
		assert.InDelta(t, expected, action.Priority, 1e-9)
	}
}

func TestRunComprehensiveWithoutBudgetSkipsContribution(t *testing.T) {
	mem := seedStore(t)

	result, err := newTestOrchestrator(mem).RunComprehensive(context.Background(), "u1", nil)
	require.NoError(t, err)

	assert.Nil(t, result.Contribution)
	require.Len(t, result.Actions, 3)
	for _, action := range result.Actions {
		assert.NotEqual(t, domain.ActionContribution, action.Type)
	}
}

func TestRunComprehensiveZeroBudgetSkipsContribution(t *testing.T) {
	mem := seedStore(t)
	zero := decimal.Zero

	result, err := newTestOrchestrator(mem).RunComprehensive(context.Background(), "u1", &zero)
	require.NoError(t, err)
	assert.Nil(t, result.Contribution)
}

func TestRunComprehensiveMissingGoal(t *testing.T) {
	mem := memory.New()

	_, err := newTestOrchestrator(mem).RunComprehensive(context.Background(), "nobody", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunComprehensiveNegativeBudget(t *testing.T) {
	mem := seedStore(t)
	negative := decimal.NewFromInt(-100)

	_, err := newTestOrchestrator(mem).RunComprehensive(context.Background(), "u1", &negative)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRankActionsOrdering(t *testing.T) {
	// A critical contribution action must outrank everything; a minimal
	// timeline action must come last.
	result := &domain.ComprehensiveResult{
		Contribution: &domain.ContributionResult{
			AnnualMatchCaptured: decimal.NewFromInt(8000),
			EstimatedTaxSavings: decimal.NewFromInt(4000),
		},
		MonteCarlo: &domain.MonteCarloResult{SuccessRate: 97, Recommendation: "steady as she goes"},
		Timeline:   &domain.TimelineResult{},
	}

	actions := rankActions(result)
	require.Len(t, actions, 3)
	assert.Equal(t, domain.ActionContribution, actions[0].Type)
	assert.Equal(t, domain.ImpactCritical, actions[0].Impact)
	assert.InDelta(t, 200, actions[0].Priority, 1e-9)
	assert.Equal(t, domain.ActionTimeline, actions[2].Type)
	assert.Equal(t, domain.ImpactMinimal, actions[2].Impact)
}

func TestImpactTiers(t *testing.T) {
	t.Run("risk", func(t *testing.T) {
		assert.Equal(t, domain.ImpactCritical, riskImpact(49))
		assert.Equal(t, domain.ImpactHigh, riskImpact(50))
		assert.Equal(t, domain.ImpactMedium, riskImpact(70))
		assert.Equal(t, domain.ImpactLow, riskImpact(85))
		assert.Equal(t, domain.ImpactMinimal, riskImpact(95))
	})

	t.Run("rebalance", func(t *testing.T) {
		assert.Equal(t, domain.ImpactHigh, rebalanceImpact(0.015))
		assert.Equal(t, domain.ImpactMedium, rebalanceImpact(0.01))
		assert.Equal(t, domain.ImpactLow, rebalanceImpact(0.005))
		assert.Equal(t, domain.ImpactMinimal, rebalanceImpact(0.004))
	})

	t.Run("contribution", func(t *testing.T) {
		tier := func(match, tax int64) domain.ImpactLevel {
			return contributionImpact(&domain.ContributionResult{
				AnnualMatchCaptured: decimal.NewFromInt(match),
				EstimatedTaxSavings: decimal.NewFromInt(tax),
			})
		}
		assert.Equal(t, domain.ImpactCritical, tier(6000, 4000))
		assert.Equal(t, domain.ImpactHigh, tier(5000, 0))
		assert.Equal(t, domain.ImpactMedium, tier(1000, 1000))
		assert.Equal(t, domain.ImpactLow, tier(500, 0))
		assert.Equal(t, domain.ImpactMinimal, tier(100, 100))
	})
}

func TestRebalanceImprovement(t *testing.T) {
	allocation := &domain.AllocationResult{
		Rebalances: []domain.RebalanceAction{
			{Delta: 0.30},
			{Delta: -0.15},
			{Delta: 0.08}, // below the significance threshold
		},
	}
	assert.InDelta(t, 0.01, rebalanceImprovement(allocation), 1e-9)
}
