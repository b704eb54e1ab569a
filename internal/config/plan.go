package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

// Plan is an offline input file: one user's goal, accounts and investments
// plus run settings, so the engine can be exercised without a server.
type Plan struct {
	Goal        GoalConfig         `yaml:"goal"`
	Accounts    []AccountConfig    `yaml:"accounts"`
	Investments []InvestmentConfig `yaml:"investments"`
	Settings    RunSettings        `yaml:"settings"`
}

// GoalConfig is the YAML shape of a retirement goal.
type GoalConfig struct {
	CurrentAge          int             `yaml:"current_age"`
	TargetRetirementAge int             `yaml:"target_retirement_age"`
	DesiredAnnualIncome decimal.Decimal `yaml:"desired_annual_income"`
	InflationRate       decimal.Decimal `yaml:"inflation_rate"` // percent, 0-20
}

// AccountConfig is the YAML shape of a retirement account.
type AccountConfig struct {
	Name               string          `yaml:"name"`
	AccountType        string          `yaml:"account_type"`
	CurrentBalance     decimal.Decimal `yaml:"current_balance"`
	AnnualContribution decimal.Decimal `yaml:"annual_contribution"`
	EmployerMatch      decimal.Decimal `yaml:"employer_match"`
}

// InvestmentConfig is the YAML shape of an investment.
type InvestmentConfig struct {
	Name                 string          `yaml:"name"`
	AllocationPercentage decimal.Decimal `yaml:"allocation_percentage"`
	ExpectedReturn       decimal.Decimal `yaml:"expected_return"`
	RiskLevel            string          `yaml:"risk_level"`
}

// RunSettings tune an offline engine run.
type RunSettings struct {
	Simulations   int              `yaml:"simulations"`
	Seed          int64            `yaml:"seed"`
	RiskTolerance string           `yaml:"risk_tolerance"`
	MonthlyBudget *decimal.Decimal `yaml:"monthly_budget"`
	Lifestyle     LifestyleConfig  `yaml:"lifestyle"`
}

// LifestyleConfig weights the timeline analyzer. Levels are normal, high or
// low; empty means normal.
type LifestyleConfig struct {
	Health string `yaml:"health"`
	Family string `yaml:"family"`
	Career string `yaml:"career"`
}

// LoadPlan loads and validates a plan from a YAML file.
func LoadPlan(filename string) (*Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}
	return &plan, nil
}

// Validate checks every record in the plan.
func (p *Plan) Validate() error {
	goal, accounts, investments := p.Domain()
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("goal: %w", err)
	}
	for i, account := range accounts {
		if err := account.Validate(); err != nil {
			return fmt.Errorf("account %d (%s): %w", i, p.Accounts[i].Name, err)
		}
	}
	for i, investment := range investments {
		if err := investment.Validate(); err != nil {
			return fmt.Errorf("investment %d (%s): %w", i, investment.Name, err)
		}
	}
	if p.Settings.Simulations < 0 {
		return fmt.Errorf("settings: simulations cannot be negative")
	}
	if p.Settings.MonthlyBudget != nil && p.Settings.MonthlyBudget.IsNegative() {
		return fmt.Errorf("settings: monthly budget cannot be negative")
	}
	for _, level := range []string{p.Settings.Lifestyle.Health, p.Settings.Lifestyle.Family, p.Settings.Lifestyle.Career} {
		switch level {
		case "", "normal", "high", "low":
		default:
			return fmt.Errorf("settings: lifestyle levels must be normal, high or low, got %q", level)
		}
	}
	return nil
}

// Domain converts the plan's YAML shapes into engine input records.
func (p *Plan) Domain() (domain.RetirementGoal, []domain.RetirementAccount, []domain.Investment) {
	goal := domain.RetirementGoal{
		CurrentAge:          p.Goal.CurrentAge,
		TargetRetirementAge: p.Goal.TargetRetirementAge,
		DesiredAnnualIncome: p.Goal.DesiredAnnualIncome,
		InflationRate:       percent.NewFromDecimal(p.Goal.InflationRate),
	}

	accounts := make([]domain.RetirementAccount, len(p.Accounts))
	for i, a := range p.Accounts {
		accounts[i] = domain.RetirementAccount{
			ID:                 a.Name,
			AccountType:        domain.AccountType(a.AccountType),
			CurrentBalance:     a.CurrentBalance,
			AnnualContribution: a.AnnualContribution,
			EmployerMatch:      a.EmployerMatch,
		}
	}

	investments := make([]domain.Investment, len(p.Investments))
	for i, inv := range p.Investments {
		investments[i] = domain.Investment{
			ID:                   inv.Name,
			Name:                 inv.Name,
			AllocationPercentage: percent.NewFromDecimal(inv.AllocationPercentage),
			ExpectedReturn:       percent.NewFromDecimal(inv.ExpectedReturn),
			RiskLevel:            domain.RiskLevel(inv.RiskLevel),
		}
	}
	return goal, accounts, investments
}

// Preferences converts the lifestyle settings to engine preferences.
func (p *Plan) Preferences() domain.LifestylePreferences {
	prefs := domain.DefaultLifestylePreferences()
	if p.Settings.Lifestyle.Health != "" {
		prefs.Health = domain.PreferenceLevel(p.Settings.Lifestyle.Health)
	}
	if p.Settings.Lifestyle.Family != "" {
		prefs.Family = domain.PreferenceLevel(p.Settings.Lifestyle.Family)
	}
	if p.Settings.Lifestyle.Career != "" {
		prefs.Career = domain.PreferenceLevel(p.Settings.Lifestyle.Career)
	}
	return prefs
}

// ExamplePlan returns a starter plan suitable for writing out as YAML.
func ExamplePlan() *Plan {
	budget := decimal.NewFromInt(1000)
	return &Plan{
		Goal: GoalConfig{
			CurrentAge:          30,
			TargetRetirementAge: 65,
			DesiredAnnualIncome: decimal.NewFromInt(80000),
			InflationRate:       decimal.NewFromFloat(2.5),
		},
		Accounts: []AccountConfig{
			{
				Name:               "Workplace 401k",
				AccountType:        string(domain.Account401k),
				CurrentBalance:     decimal.NewFromInt(50000),
				AnnualContribution: decimal.NewFromInt(6000),
				EmployerMatch:      decimal.NewFromInt(3000),
			},
			{
				Name:           "Roth IRA",
				AccountType:    string(domain.AccountRothIRA),
				CurrentBalance: decimal.NewFromInt(15000),
			},
		},
		Investments: []InvestmentConfig{
			{
				Name:                 "Total Market Index Fund",
				AllocationPercentage: decimal.NewFromInt(60),
				ExpectedReturn:       decimal.NewFromFloat(8.5),
				RiskLevel:            string(domain.RiskHigh),
			},
			{
				Name:                 "Aggregate Bond Fund",
				AllocationPercentage: decimal.NewFromInt(25),
				ExpectedReturn:       decimal.NewFromFloat(4.0),
				RiskLevel:            string(domain.RiskLow),
			},
			{
				Name:                 "International Equity Fund",
				AllocationPercentage: decimal.NewFromInt(15),
				ExpectedReturn:       decimal.NewFromFloat(7.0),
				RiskLevel:            string(domain.RiskMedium),
			},
		},
		Settings: RunSettings{
			Simulations:   5000,
			RiskTolerance: string(domain.ToleranceModerate),
			MonthlyBudget: &budget,
			Lifestyle:     LifestyleConfig{Health: "normal", Family: "normal", Career: "normal"},
		},
	}
}
