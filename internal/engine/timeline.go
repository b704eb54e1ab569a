package engine

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/finmath"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

const (
	// timelineWindowMin/Max bound the candidate retirement ages evaluated,
	// relative to the current age.
	timelineWindowMin = 5
	timelineWindowMax = 40

	// timelineGrowthRate is the fixed growth assumption for timeline
	// scenarios, independent of the user's actual portfolio.
	timelineGrowthRate = 0.07

	// feasibleSuccessRate is the minimum capped success rate for an age to
	// be considered feasible.
	feasibleSuccessRate = 80.0

	// conservativeSuccessRate and aggressiveSuccessRate gate the
	// conservative and aggressive age picks among feasible ages.
	conservativeSuccessRate = 95.0
	aggressiveSuccessRate   = 75.0

	baseLifestyleScore = 50.0
)

const (
	reasonInsufficientTime = "Insufficient time to accumulate meaningful savings before this age"
	reasonShortfall        = "Projected savings fall short of the required nest egg"
)

// ageGate expresses "before age N" or "at or after age N".
type ageGate struct {
	Age       int
	AtOrAfter bool
}

func (g ageGate) applies(age int) bool {
	if g.AtOrAfter {
		return age >= g.Age
	}
	return age < g.Age
}

// lifestyleAdjustment is one row of the lifestyle scoring policy: a
// preference level on a dimension shifts the score by Delta for candidate
// ages passing the gate. Thresholds are the fixed ages 62, 65, 67 and 70.
type lifestyleAdjustment struct {
	Dimension string
	Level     domain.PreferenceLevel
	Gate      ageGate
	Delta     float64
}

var lifestyleAdjustments = []lifestyleAdjustment{
	{"health", domain.PreferenceHigh, ageGate{65, false}, +15},
	{"health", domain.PreferenceHigh, ageGate{70, true}, -15},
	{"health", domain.PreferenceLow, ageGate{65, true}, +10},
	{"family", domain.PreferenceHigh, ageGate{62, false}, +10},
	{"family", domain.PreferenceHigh, ageGate{67, true}, -10},
	{"career", domain.PreferenceHigh, ageGate{67, true}, +10},
	{"career", domain.PreferenceHigh, ageGate{62, false}, -20},
	{"career", domain.PreferenceLow, ageGate{65, false}, +10},
}

// TimelinePlanner evaluates feasibility and a composite score for every
// candidate retirement age in a window and selects optimal, conservative
// and aggressive picks.
type TimelinePlanner struct {
	Logger zerolog.Logger
}

// NewTimelinePlanner creates a new timeline planner.
func NewTimelinePlanner(log zerolog.Logger) *TimelinePlanner {
	return &TimelinePlanner{Logger: log}
}

// Optimize scores every integer retirement age in
// [current_age+5, current_age+40].
func (t *TimelinePlanner) Optimize(goal domain.RetirementGoal, accounts []domain.RetirementAccount, prefs domain.LifestylePreferences) (*domain.TimelineResult, error) {
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	totalBalance := domain.TotalBalance(accounts)
	monthlyContribution := domain.TotalAnnualContributions(accounts).Div(decimal.NewFromInt(12))
	required := goal.DesiredAnnualIncome.Mul(decimal.NewFromInt(successMultiple))
	growth := percent.NewFraction(timelineGrowthRate)

	result := &domain.TimelineResult{}
	for age := goal.CurrentAge + timelineWindowMin; age <= goal.CurrentAge+timelineWindowMax; age++ {
		years := age - goal.CurrentAge
		// Ages less than five years out are never feasible, independent
		// of the window bounds.
		if years < timelineWindowMin {
			result.Scenarios = append(result.Scenarios, domain.AgeScenario{
				Age:             age,
				Feasible:        false,
				Reason:          reasonInsufficientTime,
				RequiredNestEgg: required,
			})
			continue
		}

		projected := finmath.CompoundGrowth(totalBalance, monthlyContribution, growth, years)
		ratio, _ := projected.Div(required).Float64()
		successRate := ratio * 100
		if successRate > 100 {
			successRate = 100
		}
		feasible := successRate >= feasibleSuccessRate

		scenario := domain.AgeScenario{
			Age:              age,
			Feasible:         feasible,
			ProjectedBalance: projected,
			RequiredNestEgg:  required,
			SuccessRate:      successRate,
			LifestyleScore:   lifestyleScore(prefs, age),
		}
		if !feasible {
			scenario.Reason = reasonShortfall
		}
		scenario.OverallScore = (scenario.SuccessRate + scenario.LifestyleScore) / 2
		result.Scenarios = append(result.Scenarios, scenario)
	}

	selectPicks(result)
	result.Recommendations = timelineRecommendations(result)

	t.Logger.Debug().
		Int("scenarios", len(result.Scenarios)).
		Msg("timeline optimized")

	return result, nil
}

// lifestyleScore starts at 50 and applies every matching adjustment row,
// clamped to [0,100].
func lifestyleScore(prefs domain.LifestylePreferences, age int) float64 {
	levels := map[string]domain.PreferenceLevel{
		"health": prefs.Health,
		"family": prefs.Family,
		"career": prefs.Career,
	}
	score := baseLifestyleScore
	for _, adj := range lifestyleAdjustments {
		if levels[adj.Dimension] == adj.Level && adj.Gate.applies(age) {
			score += adj.Delta
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// selectPicks fills the optimal, conservative and aggressive ages. Each is
// absent when no feasible age qualifies.
func selectPicks(result *domain.TimelineResult) {
	var optimal *domain.AgeScenario
	for i := range result.Scenarios {
		s := &result.Scenarios[i]
		if !s.Feasible {
			continue
		}
		if optimal == nil || s.OverallScore > optimal.OverallScore {
			optimal = s
		}
		if result.ConservativeAge == nil && s.SuccessRate >= conservativeSuccessRate {
			age := s.Age
			result.ConservativeAge = &age
		}
		if result.AggressiveAge == nil && s.SuccessRate >= aggressiveSuccessRate {
			age := s.Age
			result.AggressiveAge = &age
		}
	}
	if optimal != nil {
		age := optimal.Age
		result.OptimalAge = &age
	}
}

func timelineRecommendations(result *domain.TimelineResult) []string {
	if result.OptimalAge == nil {
		return []string{
			"No retirement age in the evaluated window is currently feasible; increase contributions or adjust the income goal.",
		}
	}
	recs := []string{
		fmt.Sprintf("Retiring at %d offers the best balance of feasibility and lifestyle fit.", *result.OptimalAge),
	}
	if result.ConservativeAge != nil {
		recs = append(recs, fmt.Sprintf("Waiting until %d gives a comfortable margin above the nest-egg requirement.", *result.ConservativeAge))
	}
	if result.AggressiveAge != nil && *result.AggressiveAge < *result.OptimalAge {
		recs = append(recs, fmt.Sprintf("Retiring as early as %d is possible but leaves less room for market downturns.", *result.AggressiveAge))
	}
	return recs
}
