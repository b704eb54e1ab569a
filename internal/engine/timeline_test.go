package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rroupski/retirement-planner/internal/domain"
)

func TestTimelineWindowAndScenarios(t *testing.T) {
	goal := validGoal() // age 30
	accounts := []domain.RetirementAccount{
		{ID: "a1", AccountType: domain.Account401k,
			CurrentBalance:     decimal.NewFromInt(100000),
			AnnualContribution: decimal.NewFromInt(20000)},
	}

	result, err := NewTimelinePlanner(zerolog.Nop()).Optimize(goal, accounts, domain.DefaultLifestylePreferences())
	require.NoError(t, err)

	// Candidate ages cover [current+5, current+40] inclusive.
	require.Len(t, result.Scenarios, 36)
	assert.Equal(t, 35, result.Scenarios[0].Age)
	assert.Equal(t, 70, result.Scenarios[len(result.Scenarios)-1].Age)

	for _, s := range result.Scenarios {
		assert.GreaterOrEqual(t, s.SuccessRate, 0.0)
		assert.LessOrEqual(t, s.SuccessRate, 100.0, "success rate must be capped at 100")
		assert.InDelta(t, (s.SuccessRate+s.LifestyleScore)/2, s.OverallScore, 1e-9)
		assert.True(t, s.RequiredNestEgg.Equal(goal.DesiredAnnualIncome.Mul(decimal.NewFromInt(25))))
	}

	// Projected balances grow with the horizon.
	for i := 1; i < len(result.Scenarios); i++ {
		assert.True(t, result.Scenarios[i].ProjectedBalance.GreaterThan(result.Scenarios[i-1].ProjectedBalance))
	}
}

func TestTimelineWindowIsRelativeToCurrentAge(t *testing.T) {
	// The window is relative, not absolute: a 70-year-old's candidates run
	// 75 through 110.
	goal := validGoal()
	goal.CurrentAge = 70
	goal.TargetRetirementAge = 75

	result, err := NewTimelinePlanner(zerolog.Nop()).Optimize(goal, nil, domain.DefaultLifestylePreferences())
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 36)
	assert.Equal(t, 75, result.Scenarios[0].Age)
	assert.Equal(t, 110, result.Scenarios[len(result.Scenarios)-1].Age)
}

func TestTimelinePicksWithStrongSavings(t *testing.T) {
	goal := validGoal()
	accounts := []domain.RetirementAccount{
		{ID: "a1", AccountType: domain.Account401k,
			CurrentBalance:     decimal.NewFromInt(500000),
			AnnualContribution: decimal.NewFromInt(30000)},
	}

	result, err := NewTimelinePlanner(zerolog.Nop()).Optimize(goal, accounts, domain.DefaultLifestylePreferences())
	require.NoError(t, err)

	require.NotNil(t, result.OptimalAge)
	require.NotNil(t, result.ConservativeAge)
	require.NotNil(t, result.AggressiveAge)

	// The aggressive pick is the earliest feasible age clearing 75%, the
	// conservative pick the earliest clearing 95%, so aggressive never
	// comes after conservative.
	assert.LessOrEqual(t, *result.AggressiveAge, *result.ConservativeAge)
	assert.NotEmpty(t, result.Recommendations)
}

func TestTimelineNothingFeasible(t *testing.T) {
	// No savings at all against a large income goal: every age falls
	// short and no picks are made.
	goal := validGoal()

	result, err := NewTimelinePlanner(zerolog.Nop()).Optimize(goal, nil, domain.DefaultLifestylePreferences())
	require.NoError(t, err)

	assert.Nil(t, result.OptimalAge)
	assert.Nil(t, result.ConservativeAge)
	assert.Nil(t, result.AggressiveAge)
	for _, s := range result.Scenarios {
		assert.False(t, s.Feasible)
		assert.NotEmpty(t, s.Reason)
	}
	require.Len(t, result.Recommendations, 1)
}

func TestLifestyleScoreAdjustments(t *testing.T) {
	tests := []struct {
		name     string
		prefs    domain.LifestylePreferences
		age      int
		expected float64
	}{
		{"neutral baseline", domain.DefaultLifestylePreferences(), 60, 50},
		{
			"health high favors early ages",
			domain.LifestylePreferences{Health: domain.PreferenceHigh, Family: domain.PreferenceNormal, Career: domain.PreferenceNormal},
			60, 65,
		},
		{
			"health high penalizes 70 and beyond",
			domain.LifestylePreferences{Health: domain.PreferenceHigh, Family: domain.PreferenceNormal, Career: domain.PreferenceNormal},
			70, 35,
		},
		{
			"health low rewards later ages",
			domain.LifestylePreferences{Health: domain.PreferenceLow, Family: domain.PreferenceNormal, Career: domain.PreferenceNormal},
			66, 60,
		},
		{
			"family high favors before 62",
			domain.LifestylePreferences{Health: domain.PreferenceNormal, Family: domain.PreferenceHigh, Career: domain.PreferenceNormal},
			60, 60,
		},
		{
			"career high punishes early exits",
			domain.LifestylePreferences{Health: domain.PreferenceNormal, Family: domain.PreferenceNormal, Career: domain.PreferenceHigh},
			60, 30,
		},
		{
			"career high rewards 67 and beyond",
			domain.LifestylePreferences{Health: domain.PreferenceNormal, Family: domain.PreferenceNormal, Career: domain.PreferenceHigh},
			68, 60,
		},
		{
			"career low rewards before 65",
			domain.LifestylePreferences{Health: domain.PreferenceNormal, Family: domain.PreferenceNormal, Career: domain.PreferenceLow},
			60, 60,
		},
		{
			"adjustments stack",
			domain.LifestylePreferences{Health: domain.PreferenceHigh, Family: domain.PreferenceHigh, Career: domain.PreferenceLow},
			60, 85, // 50 + 15 (health<65) + 10 (family<62) + 10 (career low <65)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, lifestyleScore(tt.prefs, tt.age), 1e-9)
		})
	}
}

func TestTimelineLifestyleShiftsOptimalAge(t *testing.T) {
	// With savings strong enough that many ages are feasible, a strong
	// health preference pulls the optimal age earlier than a strong
	// career preference does.
	goal := validGoal()
	accounts := []domain.RetirementAccount{
		{ID: "a1", AccountType: domain.Account401k,
			CurrentBalance:     decimal.NewFromInt(800000),
			AnnualContribution: decimal.NewFromInt(40000)},
	}
	planner := NewTimelinePlanner(zerolog.Nop())

	health, err := planner.Optimize(goal, accounts, domain.LifestylePreferences{
		Health: domain.PreferenceHigh, Family: domain.PreferenceNormal, Career: domain.PreferenceNormal,
	})
	require.NoError(t, err)
	career, err := planner.Optimize(goal, accounts, domain.LifestylePreferences{
		Health: domain.PreferenceNormal, Family: domain.PreferenceNormal, Career: domain.PreferenceHigh,
	})
	require.NoError(t, err)

	require.NotNil(t, health.OptimalAge)
	require.NotNil(t, career.OptimalAge)
	assert.Less(t, *health.OptimalAge, *career.OptimalAge)
}

func TestTimelineInvalidGoal(t *testing.T) {
	bad := validGoal()
	bad.CurrentAge = 0
	_, err := NewTimelinePlanner(zerolog.Nop()).Optimize(bad, nil, domain.DefaultLifestylePreferences())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
