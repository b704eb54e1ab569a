package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionResult is the deterministic point-estimate projection for a
// user's retirement trajectory. Created fresh on every call, never persisted.
type ProjectionResult struct {
	ProjectedBalance         decimal.Decimal `json:"projected_balance"`
	NestEggNeeded            decimal.Decimal `json:"nest_egg_needed"`
	Shortfall                decimal.Decimal `json:"shortfall"`
	RecommendedMonthlySaving decimal.Decimal `json:"recommended_monthly_savings"`
	YearsUntilRetirement     int             `json:"years_until_retirement"`
	InflationAdjustedIncome  decimal.Decimal `json:"inflation_adjusted_income"`
}

// RiskTier is the qualitative tier assigned to a Monte Carlo success rate.
type RiskTier string

const (
	RiskTierLow      RiskTier = "low"
	RiskTierModerate RiskTier = "moderate"
	RiskTierHigh     RiskTier = "high"
	RiskTierVeryHigh RiskTier = "very_high"
)

// PercentileRanges represents percentile ranges for terminal balances.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// MonteCarloResult summarizes a batch of randomized trajectory trials.
type MonteCarloResult struct {
	SuccessRate         float64          `json:"success_rate"` // 0-100
	SimulationsRun      int              `json:"simulations_run"`
	Recommendation      string           `json:"recommendation"`
	RiskTier            RiskTier         `json:"risk_tier"`
	MedianEndingBalance decimal.Decimal  `json:"median_ending_balance"`
	PercentileRanges    PercentileRanges `json:"percentile_ranges"`
	ExpectedReturn      float64          `json:"expected_return"` // fraction
	Volatility          float64          `json:"volatility"`      // fraction
}

// AssetClass is one of the five fixed classes the allocator works over.
type AssetClass string

const (
	AssetUSStocks    AssetClass = "US Stocks"
	AssetIntlStocks  AssetClass = "International Stocks"
	AssetBonds       AssetClass = "Bonds"
	AssetREITs       AssetClass = "REITs"
	AssetCommodities AssetClass = "Commodities"
)

// AssetClasses lists the classes in their canonical order.
var AssetClasses = []AssetClass{
	AssetUSStocks, AssetIntlStocks, AssetBonds, AssetREITs, AssetCommodities,
}

// RebalanceAction is a single rebalancing recommendation.
type RebalanceAction struct {
	AssetClass    AssetClass `json:"asset_class"`
	CurrentWeight float64    `json:"current_weight"` // fraction
	OptimalWeight float64    `json:"optimal_weight"` // fraction
	Delta         float64    `json:"delta"`
	Action        string     `json:"action"` // "Increase allocation" / "Decrease allocation"
}

// AllocationResult is the output of the portfolio allocator.
type AllocationResult struct {
	OptimalWeights   map[AssetClass]float64 `json:"optimal_weights"`
	CurrentWeights   map[AssetClass]float64 `json:"current_weights"`
	Rebalances       []RebalanceAction      `json:"rebalances"`
	ExpectedReturn   float64                `json:"expected_return"`
	TargetVolatility float64                `json:"target_volatility"`
	SharpeRatio      float64                `json:"sharpe_ratio"`
}

// ContributionPriority tags a contribution allocation with its pass.
type ContributionPriority string

const (
	PriorityHigh   ContributionPriority = "high"
	PriorityMedium ContributionPriority = "medium"
)

// ContributionAllocation is one slice of the monthly budget directed at an
// account.
type ContributionAllocation struct {
	AccountID     string               `json:"account_id"`
	AccountType   AccountType          `json:"account_type"`
	MonthlyAmount decimal.Decimal      `json:"monthly_amount"`
	Reason        string               `json:"reason"`
	Priority      ContributionPriority `json:"priority"`
}

// ContributionResult is the output of the contribution allocator.
type ContributionResult struct {
	Allocations           []ContributionAllocation `json:"allocations"`
	TotalMonthlyAllocated decimal.Decimal          `json:"total_monthly_allocated"`
	AnnualMatchCaptured   decimal.Decimal          `json:"annual_match_captured"`
	EstimatedTaxSavings   decimal.Decimal          `json:"estimated_tax_savings"`
}

// AgeScenario is the evaluation of a single candidate retirement age.
type AgeScenario struct {
	Age              int             `json:"age"`
	Feasible         bool            `json:"feasible"`
	Reason           string          `json:"reason,omitempty"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	RequiredNestEgg  decimal.Decimal `json:"required_nest_egg"`
	SuccessRate      float64         `json:"success_rate"`    // 0-100, capped
	LifestyleScore   float64         `json:"lifestyle_score"` // 0-100
	OverallScore     float64         `json:"overall_score"`
}

// TimelineResult is the output of the retirement-timing analyzer.
type TimelineResult struct {
	Scenarios       []AgeScenario `json:"scenarios"`
	OptimalAge      *int          `json:"optimal_age,omitempty"`
	ConservativeAge *int          `json:"conservative_age,omitempty"`
	AggressiveAge   *int          `json:"aggressive_age,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// ImpactLevel grades how much a recommended action is expected to move the
// user's outcome.
type ImpactLevel string

const (
	ImpactCritical ImpactLevel = "critical"
	ImpactHigh     ImpactLevel = "high"
	ImpactMedium   ImpactLevel = "medium"
	ImpactLow      ImpactLevel = "low"
	ImpactMinimal  ImpactLevel = "minimal"
)

// ActionType identifies the optimization dimension an action belongs to.
type ActionType string

const (
	ActionContribution ActionType = "contribution"
	ActionRisk         ActionType = "risk"
	ActionRebalancing  ActionType = "rebalancing"
	ActionTimeline     ActionType = "timeline"
)

// RecommendedAction is a ranked next step for the user.
type RecommendedAction struct {
	Type        ActionType  `json:"type"`
	Description string      `json:"description"`
	Impact      ImpactLevel `json:"impact"`
	Priority    float64     `json:"priority"`
}

// ComprehensiveResult aggregates every optimizer's output for one user.
type ComprehensiveResult struct {
	UserID       string              `json:"user_id"`
	Projection   *ProjectionResult   `json:"projection,omitempty"`
	MonteCarlo   *MonteCarloResult   `json:"monte_carlo,omitempty"`
	Allocation   *AllocationResult   `json:"allocation,omitempty"`
	Contribution *ContributionResult `json:"contribution,omitempty"`
	Timeline     *TimelineResult     `json:"timeline,omitempty"`
	Actions      []RecommendedAction `json:"actions"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// RiskTolerance expresses the user's appetite for allocation risk.
type RiskTolerance string

const (
	ToleranceConservative RiskTolerance = "conservative"
	ToleranceModerate     RiskTolerance = "moderate"
	ToleranceAggressive   RiskTolerance = "aggressive"
)

// PreferenceLevel is how strongly a lifestyle dimension matters to the user.
type PreferenceLevel string

const (
	PreferenceNormal PreferenceLevel = "normal"
	PreferenceHigh   PreferenceLevel = "high"
	PreferenceLow    PreferenceLevel = "low"
)

// LifestylePreferences weight the timeline analyzer's scoring.
type LifestylePreferences struct {
	Health PreferenceLevel `json:"health"`
	Family PreferenceLevel `json:"family"`
	Career PreferenceLevel `json:"career"`
}

// DefaultLifestylePreferences returns neutral preferences.
func DefaultLifestylePreferences() LifestylePreferences {
	return LifestylePreferences{
		Health: PreferenceNormal,
		Family: PreferenceNormal,
		Career: PreferenceNormal,
	}
}
