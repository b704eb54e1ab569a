package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rroupski/retirement-planner/internal/domain"
)

// riskFreeRate is the fixed risk-free rate used in Sharpe ratios.
const riskFreeRate = 0.02

// rebalanceThreshold is the minimum |optimal - current| weight difference
// that produces a rebalancing recommendation.
const rebalanceThreshold = 0.05

// assetClassStats carries the hardcoded (expected return, volatility) pair
// for one asset class.
type assetClassStats struct {
	ExpectedReturn float64
	Volatility     float64
}

// assetClasses is the fixed asset-class universe the allocator works over.
var assetClasses = map[domain.AssetClass]assetClassStats{
	domain.AssetUSStocks:    {ExpectedReturn: 0.10, Volatility: 0.16},
	domain.AssetIntlStocks:  {ExpectedReturn: 0.085, Volatility: 0.18},
	domain.AssetBonds:       {ExpectedReturn: 0.045, Volatility: 0.06},
	domain.AssetREITs:       {ExpectedReturn: 0.09, Volatility: 0.19},
	domain.AssetCommodities: {ExpectedReturn: 0.06, Volatility: 0.20},
}

// frontierTiers are the six fixed target-volatility points of the frontier.
var frontierTiers = []float64{0.05, 0.08, 0.12, 0.16, 0.20, 0.25}

// weightBucket maps a volatility ceiling to a hand-tuned weight vector.
// This lookup table deliberately stands in for a mean-variance quadratic
// program; the tiers and weights are policy data, not derived values.
type weightBucket struct {
	MaxVolatility float64
	Weights       map[domain.AssetClass]float64
}

var weightBuckets = []weightBucket{
	{0.08, map[domain.AssetClass]float64{
		domain.AssetUSStocks: 0.20, domain.AssetIntlStocks: 0.10,
		domain.AssetBonds: 0.60, domain.AssetREITs: 0.05, domain.AssetCommodities: 0.05,
	}},
	{0.12, map[domain.AssetClass]float64{
		domain.AssetUSStocks: 0.35, domain.AssetIntlStocks: 0.15,
		domain.AssetBonds: 0.40, domain.AssetREITs: 0.05, domain.AssetCommodities: 0.05,
	}},
	{0.16, map[domain.AssetClass]float64{
		domain.AssetUSStocks: 0.45, domain.AssetIntlStocks: 0.20,
		domain.AssetBonds: 0.25, domain.AssetREITs: 0.05, domain.AssetCommodities: 0.05,
	}},
	{0.20, map[domain.AssetClass]float64{
		domain.AssetUSStocks: 0.55, domain.AssetIntlStocks: 0.25,
		domain.AssetBonds: 0.10, domain.AssetREITs: 0.05, domain.AssetCommodities: 0.05,
	}},
	{math.Inf(1), map[domain.AssetClass]float64{
		domain.AssetUSStocks: 0.60, domain.AssetIntlStocks: 0.30,
		domain.AssetBonds: 0.00, domain.AssetREITs: 0.05, domain.AssetCommodities: 0.05,
	}},
}

// nameClassMatches maps case-insensitive substrings of an investment name to
// an asset class. Names matching none default to US Stocks.
var nameClassMatches = []struct {
	Substring string
	Class     domain.AssetClass
}{
	{"bond", domain.AssetBonds},
	{"reit", domain.AssetREITs},
	{"international", domain.AssetIntlStocks},
	{"commodity", domain.AssetCommodities},
}

// frontierPoint is one portfolio on the discrete efficient frontier.
type frontierPoint struct {
	TargetVolatility float64
	ExpectedReturn   float64
	SharpeRatio      float64
	Weights          map[domain.AssetClass]float64
}

// Allocator selects a point on a fixed discrete efficient frontier and
// emits rebalancing deltas against the user's current holdings.
type Allocator struct {
	Logger zerolog.Logger
}

// NewAllocator creates a new portfolio allocator.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{Logger: log}
}

// Optimize builds the frontier, selects the point matching the user's risk
// tolerance and horizon, maps current investments onto asset classes and
// emits rebalancing recommendations for deltas above the threshold.
func (a *Allocator) Optimize(goal domain.RetirementGoal, investments []domain.Investment, tolerance domain.RiskTolerance) (*domain.AllocationResult, error) {
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	frontier := buildFrontier()
	target := targetVolatility(tolerance, goal.YearsUntilRetirement())
	selected := nearestPoint(frontier, target)
	current := currentWeights(investments)

	var rebalances []domain.RebalanceAction
	for _, class := range domain.AssetClasses {
		delta := selected.Weights[class] - current[class]
		if math.Abs(delta) <= rebalanceThreshold {
			continue
		}
		action := "Increase allocation"
		if delta < 0 {
			action = "Decrease allocation"
		}
		rebalances = append(rebalances, domain.RebalanceAction{
			AssetClass:    class,
			CurrentWeight: current[class],
			OptimalWeight: selected.Weights[class],
			Delta:         delta,
			Action:        action,
		})
	}

	a.Logger.Debug().
		Float64("target_volatility", target).
		Float64("selected_volatility", selected.TargetVolatility).
		Int("rebalances", len(rebalances)).
		Msg("allocation optimized")

	return &domain.AllocationResult{
		OptimalWeights:   selected.Weights,
		CurrentWeights:   current,
		Rebalances:       rebalances,
		ExpectedReturn:   selected.ExpectedReturn,
		TargetVolatility: selected.TargetVolatility,
		SharpeRatio:      selected.SharpeRatio,
	}, nil
}

// buildFrontier materializes the six fixed frontier points from the weight
// buckets and asset-class statistics.
func buildFrontier() []frontierPoint {
	points := make([]frontierPoint, 0, len(frontierTiers))
	for _, tier := range frontierTiers {
		weights := weightsForVolatility(tier)
		expectedReturn := 0.0
		for class, weight := range weights {
			expectedReturn += weight * assetClasses[class].ExpectedReturn
		}
		points = append(points, frontierPoint{
			TargetVolatility: tier,
			ExpectedReturn:   expectedReturn,
			SharpeRatio:      (expectedReturn - riskFreeRate) / tier,
			Weights:          weights,
		})
	}
	return points
}

// weightsForVolatility looks up the hand-tuned weight vector for a target
// volatility bucket.
func weightsForVolatility(volatility float64) map[domain.AssetClass]float64 {
	for _, bucket := range weightBuckets {
		if volatility <= bucket.MaxVolatility {
			return bucket.Weights
		}
	}
	return weightBuckets[len(weightBuckets)-1].Weights
}

// targetVolatility picks a target risk level from the user's tolerance and
// horizon. Unknown tolerance values fall back to a horizon-only rule.
func targetVolatility(tolerance domain.RiskTolerance, years int) float64 {
	switch tolerance {
	case domain.ToleranceConservative:
		return 0.08
	case domain.ToleranceModerate:
		switch {
		case years > 20:
			return 0.16
		case years > 10:
			return 0.12
		default:
			return 0.08
		}
	case domain.ToleranceAggressive:
		switch {
		case years > 15:
			return 0.20
		case years > 5:
			return 0.16
		default:
			return 0.12
		}
	default:
		switch {
		case years > 25:
			return 0.16
		case years > 10:
			return 0.12
		default:
			return 0.08
		}
	}
}

// nearestPoint returns the frontier point whose target volatility is
// numerically closest to the target.
func nearestPoint(frontier []frontierPoint, target float64) frontierPoint {
	best := frontier[0]
	bestDistance := math.Abs(best.TargetVolatility - target)
	for _, point := range frontier[1:] {
		if d := math.Abs(point.TargetVolatility - target); d < bestDistance {
			best = point
			bestDistance = d
		}
	}
	return best
}

// currentWeights derives the user's present asset-class weights from their
// investments by substring name matching, summing allocation percentages
// per class and dividing by 100.
func currentWeights(investments []domain.Investment) map[domain.AssetClass]float64 {
	weights := make(map[domain.AssetClass]float64, len(domain.AssetClasses))
	for _, class := range domain.AssetClasses {
		weights[class] = 0
	}
	for _, inv := range investments {
		allocation := inv.AllocationPercentage.Float64()
		weights[classifyInvestment(inv.Name)] += allocation / 100
	}
	return weights
}

// classifyInvestment maps an investment name to an asset class by
// case-insensitive substring match, defaulting to US Stocks.
func classifyInvestment(name string) domain.AssetClass {
	lower := strings.ToLower(name)
	for _, match := range nameClassMatches {
		if strings.Contains(lower, match.Substring) {
			return match.Class
		}
	}
	return domain.AssetUSStocks
}
