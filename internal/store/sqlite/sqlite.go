// Package sqlite provides a SQLite-backed implementation of store.Store.
//
// The goal table carries a UNIQUE constraint on user_id: a user has exactly
// one retirement goal and SaveGoal upserts it. SQLite is opened in WAL mode
// so readers don't block each other.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/store"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
		current_age INTEGER NOT NULL,
		target_retirement_age INTEGER NOT NULL,
		desired_annual_income TEXT NOT NULL,
		inflation_rate TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		account_type TEXT NOT NULL,
		current_balance TEXT NOT NULL,
		annual_contribution TEXT NOT NULL,
		employer_match TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user
		ON accounts(user_id);

	CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		allocation_percentage TEXT NOT NULL,
		expected_return TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_investments_user
		ON investments(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user domain.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, userID).
		Scan(&user.ID, &user.Name, &user.Email, &createdAt)
	if err == sql.ErrNoRows {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return user, nil
}

// GetGoal fetches the user's retirement goal, or store.ErrNotFound when the
// user hasn't set one.
func (s *Store) GetGoal(ctx context.Context, userID string) (domain.RetirementGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var goal domain.RetirementGoal
	var income, inflation string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, current_age, target_retirement_age, desired_annual_income, inflation_rate
		 FROM goals WHERE user_id = ?`, userID).
		Scan(&goal.UserID, &goal.CurrentAge, &goal.TargetRetirementAge, &income, &inflation)
	if err == sql.ErrNoRows {
		return domain.RetirementGoal{}, store.ErrNotFound
	}
	if err != nil {
		return domain.RetirementGoal{}, fmt.Errorf("failed to get goal: %w", err)
	}

	if goal.DesiredAnnualIncome, err = decimal.NewFromString(income); err != nil {
		return domain.RetirementGoal{}, fmt.Errorf("invalid desired_annual_income %q: %w", income, err)
	}
	rate, err := decimal.NewFromString(inflation)
	if err != nil {
		return domain.RetirementGoal{}, fmt.Errorf("invalid inflation_rate %q: %w", inflation, err)
	}
	goal.InflationRate = percent.NewFromDecimal(rate)
	return goal, nil
}

// SaveGoal inserts or replaces the user's single retirement goal.
func (s *Store) SaveGoal(ctx context.Context, goal domain.RetirementGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, current_age, target_retirement_age, desired_annual_income, inflation_rate, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			current_age = excluded.current_age,
			target_retirement_age = excluded.target_retirement_age,
			desired_annual_income = excluded.desired_annual_income,
			inflation_rate = excluded.inflation_rate,
			updated_at = excluded.updated_at`,
		goal.UserID, goal.CurrentAge, goal.TargetRetirementAge,
		goal.DesiredAnnualIncome.String(), goal.InflationRate.Decimal.String(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// ListAccounts returns the user's retirement accounts in insertion order.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.RetirementAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, account_type, current_balance, annual_contribution, employer_match
		 FROM accounts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.RetirementAccount
	for rows.Next() {
		var a domain.RetirementAccount
		var balance, contribution, match string
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountType, &balance, &contribution, &match); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if a.CurrentBalance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("invalid current_balance %q: %w", balance, err)
		}
		if a.AnnualContribution, err = decimal.NewFromString(contribution); err != nil {
			return nil, fmt.Errorf("invalid annual_contribution %q: %w", contribution, err)
		}
		if a.EmployerMatch, err = decimal.NewFromString(match); err != nil {
			return nil, fmt.Errorf("invalid employer_match %q: %w", match, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveAccount inserts or replaces a retirement account.
func (s *Store) SaveAccount(ctx context.Context, account domain.RetirementAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, account_type, current_balance, annual_contribution, employer_match, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			account_type = excluded.account_type,
			current_balance = excluded.current_balance,
			annual_contribution = excluded.annual_contribution,
			employer_match = excluded.employer_match`,
		account.ID, account.UserID, string(account.AccountType),
		account.CurrentBalance.String(), account.AnnualContribution.String(),
		account.EmployerMatch.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// DeleteAccount removes one of the user's accounts.
func (s *Store) DeleteAccount(ctx context.Context, userID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListInvestments returns the user's investments in insertion order.
func (s *Store) ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, allocation_percentage, expected_return, risk_level
		 FROM investments WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		var inv domain.Investment
		var allocation, expectedReturn string
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Name, &allocation, &expectedReturn, &inv.RiskLevel); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		alloc, err := decimal.NewFromString(allocation)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation_percentage %q: %w", allocation, err)
		}
		ret, err := decimal.NewFromString(expectedReturn)
		if err != nil {
			return nil, fmt.Errorf("invalid expected_return %q: %w", expectedReturn, err)
		}
		inv.AllocationPercentage = percent.NewFromDecimal(alloc)
		inv.ExpectedReturn = percent.NewFromDecimal(ret)
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

// SaveInvestment inserts or replaces an investment.
func (s *Store) SaveInvestment(ctx context.Context, investment domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO investments (id, user_id, name, allocation_percentage, expected_return, risk_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			allocation_percentage = excluded.allocation_percentage,
			expected_return = excluded.expected_return,
			risk_level = excluded.risk_level`,
		investment.ID, investment.UserID, investment.Name,
		investment.AllocationPercentage.Decimal.String(),
		investment.ExpectedReturn.Decimal.String(),
		string(investment.RiskLevel), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save investment: %w", err)
	}
	return nil
}

// DeleteInvestment removes one of the user's investments.
func (s *Store) DeleteInvestment(ctx context.Context, userID, investmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM investments WHERE id = ? AND user_id = ?`, investmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
