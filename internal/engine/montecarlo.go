package engine

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/finmath"
)

// successMultiple is the 4%-rule equivalent applied to the desired annual
// income to form the trial success threshold. Deliberately not inflation
// adjusted, unlike the deterministic projection path.
const successMultiple = 25

// RandSource is the subset of math/rand the simulator draws from. Injected
// so tests can pin the stream and workers can hold independent generators.
type RandSource interface {
	Float64() float64
}

// RandFactory builds an independent random stream from a seed.
type RandFactory func(seed int64) RandSource

// Simulator runs randomized trajectory trials of portfolio growth.
type Simulator struct {
	Workers int
	Seed    int64
	NewRand RandFactory
	Logger  zerolog.Logger
}

// NewSimulator creates a simulator with math/rand streams. A zero seed is
// replaced with the current time on each run.
func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{
		NewRand: func(seed int64) RandSource { return rand.New(rand.NewSource(seed)) },
		Logger:  log,
	}
}

// Simulate runs numSimulations independent trials and reports the fraction
// that clear the required nest egg, plus terminal-balance statistics.
func (s *Simulator) Simulate(goal domain.RetirementGoal, accounts []domain.RetirementAccount, investments []domain.Investment, numSimulations int) (*domain.MonteCarloResult, error) {
	if numSimulations <= 0 {
		return nil, fmt.Errorf("%w: number of simulations must be positive, got %d", ErrInvalidInput, numSimulations)
	}
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	expectedReturn := finmath.PortfolioReturn(investments).Float64()
	volatility := finmath.PortfolioVolatility(investments).Float64()
	initialBalance, _ := domain.TotalBalance(accounts).Float64()
	annualContribution, _ := domain.TotalAnnualContributions(accounts).Float64()
	threshold, _ := goal.DesiredAnnualIncome.Mul(decimal.NewFromInt(successMultiple)).Float64()
	years := goal.YearsUntilRetirement()

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > numSimulations {
		workers = numSimulations
	}

	// Trials are independent; each worker owns a seeded stream and a shard
	// of the results slice, so the only coordination is the final sum.
	terminal := make([]float64, numSimulations)
	successes := make([]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * numSimulations / workers
		end := (w + 1) * numSimulations / workers
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			rng := s.NewRand(seed + int64(w))
			for i := start; i < end; i++ {
				balance := runTrial(rng, initialBalance, annualContribution, expectedReturn, volatility, years)
				terminal[i] = balance
				if balance >= threshold {
					successes[w]++
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	successCount := 0
	for _, n := range successes {
		successCount += n
	}
	successRate := float64(successCount) / float64(numSimulations) * 100

	sort.Float64s(terminal)
	ranges := domain.PercentileRanges{
		P10: decimal.NewFromFloat(stat.Quantile(0.10, stat.Empirical, terminal, nil)),
		P25: decimal.NewFromFloat(stat.Quantile(0.25, stat.Empirical, terminal, nil)),
		P50: decimal.NewFromFloat(stat.Quantile(0.50, stat.Empirical, terminal, nil)),
		P75: decimal.NewFromFloat(stat.Quantile(0.75, stat.Empirical, terminal, nil)),
		P90: decimal.NewFromFloat(stat.Quantile(0.90, stat.Empirical, terminal, nil)),
	}

	s.Logger.Debug().
		Int("simulations", numSimulations).
		Float64("success_rate", successRate).
		Float64("expected_return", expectedReturn).
		Float64("volatility", volatility).
		Msg("monte carlo simulation complete")

	return &domain.MonteCarloResult{
		SuccessRate:         successRate,
		SimulationsRun:      numSimulations,
		Recommendation:      recommendationFor(successRate),
		RiskTier:            riskTierFor(successRate),
		MedianEndingBalance: ranges.P50,
		PercentileRanges:    ranges,
		ExpectedReturn:      expectedReturn,
		Volatility:          volatility,
	}, nil
}

// runTrial walks one randomized trajectory to retirement and returns the
// terminal balance, floored at zero each year.
func runTrial(rng RandSource, balance, annualContribution, expectedReturn, volatility float64, years int) float64 {
	for year := 0; year < years; year++ {
		drawn := expectedReturn + boxMuller(rng)*volatility
		balance = balance*(1+drawn) + annualContribution
		if balance < 0 {
			balance = 0
		}
	}
	return balance
}

// boxMuller converts two uniform draws to a standard normal deviate:
// z = sqrt(-2 ln u1) * cos(2 pi u2).
func boxMuller(rng RandSource) float64 {
	u1 := 1 - rng.Float64() // (0,1]; the log requires a nonzero argument
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func recommendationFor(successRate float64) string {
	switch {
	case successRate >= 90:
		return "Excellent: current savings trajectory is very likely to meet the retirement goal."
	case successRate >= 75:
		return "Good: modest increases in contributions would further strengthen the plan."
	case successRate >= 60:
		return "Fair: consider increasing contributions or extending the retirement timeline."
	default:
		return "High risk: significant changes to savings or timeline are needed to meet the goal."
	}
}

func riskTierFor(successRate float64) domain.RiskTier {
	switch {
	case successRate >= 85:
		return domain.RiskTierLow
	case successRate >= 70:
		return domain.RiskTierModerate
	case successRate >= 55:
		return domain.RiskTierHigh
	default:
		return domain.RiskTierVeryHigh
	}
}
