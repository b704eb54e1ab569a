package output

import (
	"bytes"
	"fmt"

	"github.com/rroupski/retirement-planner/internal/domain"
)

// ConsoleFormatter renders a comprehensive analysis as a plain-text report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.ComprehensiveResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT ANALYSIS")
	fmt.Fprintln(&buf, "================================")

	if p := result.Projection; p != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Projection")
		fmt.Fprintf(&buf, "  Years until retirement: %d\n", p.YearsUntilRetirement)
		fmt.Fprintf(&buf, "  Projected balance:      %s\n", FormatCurrency(p.ProjectedBalance))
		fmt.Fprintf(&buf, "  Nest egg needed:        %s\n", FormatCurrency(p.NestEggNeeded))
		fmt.Fprintf(&buf, "  Shortfall:              %s\n", FormatCurrency(p.Shortfall))
		if p.RecommendedMonthlySaving.IsPositive() {
			fmt.Fprintf(&buf, "  Recommended monthly:    %s\n", FormatCurrency(p.RecommendedMonthlySaving))
		}
	}

	if mc := result.MonteCarlo; mc != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Monte Carlo Simulation")
		fmt.Fprintf(&buf, "  Trials:        %d\n", mc.SimulationsRun)
		fmt.Fprintf(&buf, "  Success rate:  %.1f%%\n", mc.SuccessRate)
		fmt.Fprintf(&buf, "  Risk tier:     %s\n", mc.RiskTier)
		fmt.Fprintf(&buf, "  Median ending: %s\n", FormatCurrency(mc.MedianEndingBalance))
		fmt.Fprintf(&buf, "  P10/P90:       %s / %s\n",
			FormatCurrency(mc.PercentileRanges.P10), FormatCurrency(mc.PercentileRanges.P90))
		fmt.Fprintf(&buf, "  %s\n", mc.Recommendation)
	}

	if a := result.Allocation; a != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Portfolio Allocation")
		fmt.Fprintf(&buf, "  Expected return: %.2f%%  Volatility: %.2f%%  Sharpe: %.2f\n",
			a.ExpectedReturn*100, a.TargetVolatility*100, a.SharpeRatio)
		for _, class := range domain.AssetClasses {
			if w, ok := a.OptimalWeights[class]; ok {
				fmt.Fprintf(&buf, "  %-22s %5.1f%%\n", class, w*100)
			}
		}
		for _, rb := range a.Rebalances {
			fmt.Fprintf(&buf, "  %s: %s (%.1f%% -> %.1f%%)\n",
				rb.AssetClass, rb.Action, rb.CurrentWeight*100, rb.OptimalWeight*100)
		}
	}

	if ct := result.Contribution; ct != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Contribution Plan")
		for _, alloc := range ct.Allocations {
			fmt.Fprintf(&buf, "  %-12s %s/mo  %s\n",
				alloc.AccountType, FormatCurrency(alloc.MonthlyAmount), alloc.Reason)
		}
		fmt.Fprintf(&buf, "  Total allocated:      %s/mo\n", FormatCurrency(ct.TotalMonthlyAllocated))
		fmt.Fprintf(&buf, "  Match captured:       %s/yr\n", FormatCurrency(ct.AnnualMatchCaptured))
		fmt.Fprintf(&buf, "  Estimated tax saving: %s/yr\n", FormatCurrency(ct.EstimatedTaxSavings))
	}

	if tl := result.Timeline; tl != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Retirement Timeline")
		if tl.OptimalAge != nil {
			fmt.Fprintf(&buf, "  Optimal age:      %d\n", *tl.OptimalAge)
		}
		if tl.ConservativeAge != nil {
			fmt.Fprintf(&buf, "  Conservative age: %d\n", *tl.ConservativeAge)
		}
		if tl.AggressiveAge != nil {
			fmt.Fprintf(&buf, "  Aggressive age:   %d\n", *tl.AggressiveAge)
		}
		for _, rec := range tl.Recommendations {
			fmt.Fprintf(&buf, "  - %s\n", rec)
		}
	}

	if len(result.Actions) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Recommended Actions")
		for i, action := range result.Actions {
			fmt.Fprintf(&buf, "  %d. [%s] %s\n", i+1, action.Impact, action.Description)
		}
	}

	return buf.Bytes(), nil
}
