// Package store defines the persistence boundary the engine consumes plain
// data records from. The engine itself never performs I/O; every blocking
// lookup happens here before a computation starts.
package store

import (
	"context"
	"errors"

	"github.com/rroupski/retirement-planner/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. Every
// optimizer short-circuits on a missing goal and surfaces this untouched.
var ErrNotFound = errors.New("record not found")

// Store is the data-access collaborator for users, goals, accounts and
// investments.
type Store interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)

	GetGoal(ctx context.Context, userID string) (domain.RetirementGoal, error)
	SaveGoal(ctx context.Context, goal domain.RetirementGoal) error

	ListAccounts(ctx context.Context, userID string) ([]domain.RetirementAccount, error)
	SaveAccount(ctx context.Context, account domain.RetirementAccount) error
	DeleteAccount(ctx context.Context, userID, accountID string) error

	ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error)
	SaveInvestment(ctx context.Context, investment domain.Investment) error
	DeleteInvestment(ctx context.Context, userID, investmentID string) error

	Close() error
}
