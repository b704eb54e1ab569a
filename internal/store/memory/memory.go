// Package memory provides an in-memory store.Store implementation for
// testing and development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
)

// Store implements store.Store with maps guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	goals       map[string]domain.RetirementGoal
	accounts    map[string][]domain.RetirementAccount
	investments map[string][]domain.Investment
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		goals:       make(map[string]domain.RetirementGoal),
		accounts:    make(map[string][]domain.RetirementAccount),
		investments: make(map[string][]domain.Investment),
	}
}

// Close is a no-op.
func (m *Store) Close() error { return nil }

// CreateUser inserts a new user record.
func (m *Store) CreateUser(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.ID] = user
	return nil
}

// GetUser fetches a user by id.
func (m *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return user, nil
}

// GetGoal fetches the user's retirement goal.
func (m *Store) GetGoal(_ context.Context, userID string) (domain.RetirementGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	goal, ok := m.goals[userID]
	if !ok {
		return domain.RetirementGoal{}, store.ErrNotFound
	}
	return goal, nil
}

// SaveGoal inserts or replaces the user's single retirement goal.
func (m *Store) SaveGoal(_ context.Context, goal domain.RetirementGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goal.UserID] = goal
	return nil
}

// ListAccounts returns the user's accounts in insertion order.
func (m *Store) ListAccounts(_ context.Context, userID string) ([]domain.RetirementAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]domain.RetirementAccount, len(m.accounts[userID]))
	copy(accounts, m.accounts[userID])
	return accounts, nil
}

// SaveAccount inserts or replaces an account.
func (m *Store) SaveAccount(_ context.Context, account domain.RetirementAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := m.accounts[account.UserID]
	for i, a := range accounts {
		if a.ID == account.ID {
			accounts[i] = account
			return nil
		}
	}
	m.accounts[account.UserID] = append(accounts, account)
	return nil
}

// DeleteAccount removes one of the user's accounts.
func (m *Store) DeleteAccount(_ context.Context, userID, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := m.accounts[userID]
	for i, a := range accounts {
		if a.ID == accountID {
			m.accounts[userID] = append(accounts[:i], accounts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// ListInvestments returns the user's investments in insertion order.
func (m *Store) ListInvestments(_ context.Context, userID string) ([]domain.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	investments := make([]domain.Investment, len(m.investments[userID]))
	copy(investments, m.investments[userID])
	return investments, nil
}

// SaveInvestment inserts or replaces an investment.
func (m *Store) SaveInvestment(_ context.Context, investment domain.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	investments := m.investments[investment.UserID]
	for i, inv := range investments {
		if inv.ID == investment.ID {
			investments[i] = investment
			return nil
		}
	}
	m.investments[investment.UserID] = append(investments, investment)
	return nil
}

// DeleteInvestment removes one of the user's investments.
func (m *Store) DeleteInvestment(_ context.Context, userID, investmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	investments := m.investments[userID]
	for i, inv := range investments {
		if inv.ID == investmentID {
			m.investments[userID] = append(investments[:i], investments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
