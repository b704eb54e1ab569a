package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

func TestUserRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, domain.User{ID: "u1", Name: "Test"}))

	user, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Test", user.Name)
	assert.False(t, user.CreatedAt.IsZero(), "a zero CreatedAt must be filled in")

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGoalUpsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetGoal(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	goal := domain.RetirementGoal{
		UserID:              "u1",
		CurrentAge:          30,
		TargetRetirementAge: 65,
		DesiredAnnualIncome: decimal.NewFromInt(80000),
		InflationRate:       percent.New(2.5),
	}
	require.NoError(t, s.SaveGoal(ctx, goal))

	goal.TargetRetirementAge = 62
	require.NoError(t, s.SaveGoal(ctx, goal))

	got, err := s.GetGoal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 62, got.TargetRetirementAge)
}

func TestAccountLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a1", UserID: "u1", AccountType: domain.Account401k,
		CurrentBalance: decimal.NewFromInt(1000),
	}))
	require.NoError(t, s.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a2", UserID: "u1", AccountType: domain.AccountRothIRA,
	}))

	accounts, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a1", accounts[0].ID, "insertion order must be preserved")

	// Replacing by id keeps the position.
	require.NoError(t, s.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a1", UserID: "u1", AccountType: domain.Account401k,
		CurrentBalance: decimal.NewFromInt(2000),
	}))
	accounts, err = s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].CurrentBalance.Equal(decimal.NewFromInt(2000)))

	require.NoError(t, s.DeleteAccount(ctx, "u1", "a1"))
	assert.ErrorIs(t, s.DeleteAccount(ctx, "u1", "a1"), store.ErrNotFound)
}

func TestInvestmentLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveInvestment(ctx, domain.Investment{
		ID: "i1", UserID: "u1", Name: "Bond Fund",
		AllocationPercentage: percent.New(40),
	}))

	investments, err := s.ListInvestments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, investments, 1)

	require.NoError(t, s.DeleteInvestment(ctx, "u1", "i1"))
	assert.ErrorIs(t, s.DeleteInvestment(ctx, "u1", "i1"), store.ErrNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, domain.RetirementAccount{
		ID: "a1", UserID: "u1", AccountType: domain.AccountIRA,
		CurrentBalance: decimal.NewFromInt(1000),
	}))

	accounts, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	accounts[0].CurrentBalance = decimal.NewFromInt(9999)

	fresh, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, fresh[0].CurrentBalance.Equal(decimal.NewFromInt(1000)),
		"mutating a listed slice must not affect the store")
}
