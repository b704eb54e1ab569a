package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
)

// DefaultSimulations is the trial count the orchestrator runs Monte Carlo
// with.
const DefaultSimulations = 5000

// significantDelta is the rebalancing delta above which a rebalance counts
// toward the return-improvement estimate.
const significantDelta = 0.10

// returnImprovementPerRebalance is the estimated annual return improvement
// per significant rebalance.
const returnImprovementPerRebalance = 0.005

// basePriorities weight action types before the impact multiplier.
var basePriorities = map[domain.ActionType]float64{
	domain.ActionContribution: 100,
	domain.ActionRisk:         80,
	domain.ActionRebalancing:  60,
	domain.ActionTimeline:     40,
}

// impactMultipliers scale an action's base priority by its impact level.
var impactMultipliers = map[domain.ImpactLevel]float64{
	domain.ImpactCritical: 2.0,
	domain.ImpactHigh:     1.5,
	domain.ImpactMedium:   1.2,
	domain.ImpactLow:      1.0,
	domain.ImpactMinimal:  0.8,
}

// Orchestrator runs every optimizer for a user and ranks the recommended
// actions by estimated impact.
type Orchestrator struct {
	Store        store.Store
	Projector    *Projector
	Simulator    *Simulator
	Allocator    *Allocator
	Contribution *ContributionPlanner
	Timeline     *TimelinePlanner
	Logger       zerolog.Logger
}

// NewOrchestrator wires an orchestrator over the given store.
func NewOrchestrator(st store.Store, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		Store:        st,
		Projector:    NewProjector(),
		Simulator:    NewSimulator(log),
		Allocator:    NewAllocator(log),
		Contribution: NewContributionPlanner(log),
		Timeline:     NewTimelinePlanner(log),
		Logger:       log,
	}
}

// RunComprehensive fetches the user's records, runs Monte Carlo, allocation
// and timeline optimization unconditionally, contribution optimization only
// when a monthly amount is supplied, and ranks the resulting actions.
//
// A missing goal surfaces store.ErrNotFound immediately; failures of
// individual optimizers are logged and skipped so the rest still report.
func (o *Orchestrator) RunComprehensive(ctx context.Context, userID string, monthlyAmount *decimal.Decimal) (*domain.ComprehensiveResult, error) {
	if monthlyAmount != nil && monthlyAmount.IsNegative() {
		return nil, fmt.Errorf("%w: monthly amount cannot be negative", ErrInvalidInput)
	}

	goal, err := o.Store.GetGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := o.Store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	investments, err := o.Store.ListInvestments(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &domain.ComprehensiveResult{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	if projection, err := o.Projector.CreateProjection(goal, accounts, investments); err != nil {
		o.Logger.Warn().Err(err).Str("user_id", userID).Msg("projection failed")
	} else {
		result.Projection = projection
	}

	if mc, err := o.Simulator.Simulate(goal, accounts, investments, DefaultSimulations); err != nil {
		o.Logger.Warn().Err(err).Str("user_id", userID).Msg("monte carlo simulation failed")
	} else {
		result.MonteCarlo = mc
	}

	if allocation, err := o.Allocator.Optimize(goal, investments, domain.ToleranceModerate); err != nil {
		o.Logger.Warn().Err(err).Str("user_id", userID).Msg("allocation optimization failed")
	} else {
		result.Allocation = allocation
	}

	if monthlyAmount != nil && monthlyAmount.IsPositive() {
		if contribution, err := o.Contribution.Optimize(accounts, *monthlyAmount, goal.CurrentAge); err != nil {
			o.Logger.Warn().Err(err).Str("user_id", userID).Msg("contribution optimization failed")
		} else {
			result.Contribution = contribution
		}
	}

	if timeline, err := o.Timeline.Optimize(goal, accounts, domain.DefaultLifestylePreferences()); err != nil {
		o.Logger.Warn().Err(err).Str("user_id", userID).Msg("timeline optimization failed")
	} else {
		result.Timeline = timeline
	}

	result.Actions = rankActions(result)
	return result, nil
}

// rankActions builds one action per optimization dimension that produced a
// result and sorts them by priority = base(type) * multiplier(impact),
// descending, ties broken by input order.
func rankActions(result *domain.ComprehensiveResult) []domain.RecommendedAction {
	var actions []domain.RecommendedAction

	if result.Contribution != nil {
		impact := contributionImpact(result.Contribution)
		actions = append(actions, domain.RecommendedAction{
			Type: domain.ActionContribution,
			Description: fmt.Sprintf("Redirect the monthly budget to capture $%s of employer match and an estimated $%s in tax savings.",
				result.Contribution.AnnualMatchCaptured.StringFixed(0),
				result.Contribution.EstimatedTaxSavings.StringFixed(0)),
			Impact: impact,
		})
	}

	if result.MonteCarlo != nil {
		actions = append(actions, domain.RecommendedAction{
			Type:        domain.ActionRisk,
			Description: result.MonteCarlo.Recommendation,
			Impact:      riskImpact(result.MonteCarlo.SuccessRate),
		})
	}

	if result.Allocation != nil {
		improvement := rebalanceImprovement(result.Allocation)
		actions = append(actions, domain.RecommendedAction{
			Type: domain.ActionRebalancing,
			Description: fmt.Sprintf("Rebalance %d asset classes toward the target allocation (estimated +%.1f%% annual return).",
				len(result.Allocation.Rebalances), improvement*100),
			Impact: rebalanceImpact(improvement),
		})
	}

	if result.Timeline != nil {
		impact := domain.ImpactMinimal
		description := "No retirement age in the evaluated window is currently feasible."
		if result.Timeline.OptimalAge != nil {
			impact = domain.ImpactHigh
			description = fmt.Sprintf("Target retirement at age %d for the best feasibility and lifestyle balance.", *result.Timeline.OptimalAge)
		}
		actions = append(actions, domain.RecommendedAction{
			Type:        domain.ActionTimeline,
			Description: description,
			Impact:      impact,
		})
	}

	for i := range actions {
		actions[i].Priority = basePriorities[actions[i].Type] * impactMultipliers[actions[i].Impact]
	}
	sort.SliceStable(actions, func(a, b int) bool {
		return actions[a].Priority > actions[b].Priority
	})
	return actions
}

// riskImpact grades risk-reduction potential inversely off the success rate.
func riskImpact(successRate float64) domain.ImpactLevel {
	switch {
	case successRate < 50:
		return domain.ImpactCritical
	case successRate < 70:
		return domain.ImpactHigh
	case successRate < 85:
		return domain.ImpactMedium
	case successRate < 95:
		return domain.ImpactLow
	default:
		return domain.ImpactMinimal
	}
}

// rebalanceImprovement estimates the annual return gain from rebalancing as
// 0.5% per rebalance whose delta exceeds 0.10.
func rebalanceImprovement(allocation *domain.AllocationResult) float64 {
	count := 0
	for _, rebalance := range allocation.Rebalances {
		if math.Abs(rebalance.Delta) > significantDelta {
			count++
		}
	}
	return float64(count) * returnImprovementPerRebalance
}

func rebalanceImpact(improvement float64) domain.ImpactLevel {
	switch {
	case improvement >= 0.015:
		return domain.ImpactHigh
	case improvement >= 0.01:
		return domain.ImpactMedium
	case improvement >= 0.005:
		return domain.ImpactLow
	default:
		return domain.ImpactMinimal
	}
}

// contributionImpact tiers off the combined match and tax dollars.
func contributionImpact(contribution *domain.ContributionResult) domain.ImpactLevel {
	dollars := contribution.AnnualMatchCaptured.Add(contribution.EstimatedTaxSavings)
	switch {
	case dollars.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		return domain.ImpactCritical
	case dollars.GreaterThanOrEqual(decimal.NewFromInt(5000)):
		return domain.ImpactHigh
	case dollars.GreaterThanOrEqual(decimal.NewFromInt(2000)):
		return domain.ImpactMedium
	case dollars.GreaterThanOrEqual(decimal.NewFromInt(500)):
		return domain.ImpactLow
	default:
		return domain.ImpactMinimal
	}
}
