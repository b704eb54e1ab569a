package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), domain.User{
		ID:        id,
		Name:      "Test User",
		Email:     "test@example.com",
		CreatedAt: time.Now().UTC(),
	}))
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1")

	user, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "test@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGoalUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1")

	goal := domain.RetirementGoal{
		UserID:              "u1",
		CurrentAge:          30,
		TargetRetirementAge: 65,
		DesiredAnnualIncome: decimal.NewFromInt(80000),
		InflationRate:       percent.New(2.5),
	}
	require.NoError(t, s.SaveGoal(ctx, goal))

	got, err := s.GetGoal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.CurrentAge)
	assert.Equal(t, 65, got.TargetRetirementAge)
	assert.True(t, got.DesiredAnnualIncome.Equal(decimal.NewFromInt(80000)))
	assert.True(t, got.InflationRate.Decimal.Equal(decimal.NewFromFloat(2.5)))

	// Saving again replaces the single goal rather than adding a second.
	goal.TargetRetirementAge = 60
	goal.DesiredAnnualIncome = decimal.NewFromInt(90000)
	require.NoError(t, s.SaveGoal(ctx, goal))

	got, err = s.GetGoal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 60, got.TargetRetirementAge)
	assert.True(t, got.DesiredAnnualIncome.Equal(decimal.NewFromInt(90000)))
}

func TestGetGoalNotFound(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "u1")

	_, err := s.GetGoal(context.Background(), "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1")

	account := domain.RetirementAccount{
		ID:                 "a1",
		UserID:             "u1",
		AccountType:        domain.Account401k,
		CurrentBalance:     decimal.NewFromFloat(50000.25),
		AnnualContribution: decimal.NewFromInt(6000),
		EmployerMatch:      decimal.NewFromInt(3000),
	}
	require.NoError(t, s.SaveAccount(ctx, account))

	accounts, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.Account401k, accounts[0].AccountType)
	assert.True(t, accounts[0].CurrentBalance.Equal(decimal.NewFromFloat(50000.25)),
		"decimal balance must survive the round trip exactly, got %s", accounts[0].CurrentBalance)

	// Upsert by id.
	account.CurrentBalance = decimal.NewFromInt(60000)
	require.NoError(t, s.SaveAccount(ctx, account))
	accounts, err = s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].CurrentBalance.Equal(decimal.NewFromInt(60000)))

	require.NoError(t, s.DeleteAccount(ctx, "u1", "a1"))
	accounts, err = s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestDeleteAccountNotFound(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "u1")

	err := s.DeleteAccount(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAccountScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1")
	createTestUser(t, s, "u2")

	require.NoError(t, s.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a1", UserID: "u1", AccountType: domain.AccountIRA,
		CurrentBalance:     decimal.Zero,
		AnnualContribution: decimal.Zero,
		EmployerMatch:      decimal.Zero,
	}))

	// Another user cannot delete it.
	err := s.DeleteAccount(ctx, "u2", "a1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	accounts, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestInvestmentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1")

	investment := domain.Investment{
		ID:                   "i1",
		UserID:               "u1",
		Name:                 "Total Market Fund",
		AllocationPercentage: percent.New(60),
		ExpectedReturn:       percent.New(8.5),
		RiskLevel:            domain.RiskHigh,
	}
	require.NoError(t, s.SaveInvestment(ctx, investment))

	investments, err := s.ListInvestments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, investments, 1)
	assert.Equal(t, "Total Market Fund", investments[0].Name)
	assert.True(t, investments[0].AllocationPercentage.Decimal.Equal(decimal.NewFromInt(60)))
	assert.True(t, investments[0].ExpectedReturn.Decimal.Equal(decimal.NewFromFloat(8.5)))
	assert.Equal(t, domain.RiskHigh, investments[0].RiskLevel)

	require.NoError(t, s.DeleteInvestment(ctx, "u1", "i1"))
	investments, err = s.ListInvestments(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, investments)

	err = s.DeleteInvestment(ctx, "u1", "i1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accounts, err := s.ListAccounts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	investments, err := s.ListInvestments(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, investments)
}
