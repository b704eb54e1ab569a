package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rroupski/retirement-planner/internal/cache"
	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/engine"
	"github.com/rroupski/retirement-planner/internal/store"
	"github.com/rroupski/retirement-planner/pkg/percent"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        store.Store
	Orchestrator *engine.Orchestrator
	Cache        cache.Cache
	CacheTTL     time.Duration
	Simulations  int
	Logger       zerolog.Logger
}

// NewHandler creates a handler over the given store and cache.
func NewHandler(st store.Store, c cache.Cache, simulations int, cacheTTL time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		Store:        st,
		Orchestrator: engine.NewOrchestrator(st, log),
		Cache:        c,
		CacheTTL:     cacheTTL,
		Simulations:  simulations,
		Logger:       log,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateUser creates a user record.
// POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser fetches a user.
// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetGoal fetches the user's retirement goal.
// GET /api/users/{id}/goal
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.Store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// SaveGoal sets or replaces the user's single retirement goal.
// PUT /api/users/{id}/goal
func (h *Handler) SaveGoal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	goal := domain.RetirementGoal{
		UserID:              userID,
		CurrentAge:          req.CurrentAge,
		TargetRetirementAge: req.TargetRetirementAge,
		DesiredAnnualIncome: req.DesiredAnnualIncome,
		InflationRate:       percent.NewFromDecimal(req.InflationRate),
	}
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal", err)
		return
	}
	if err := h.Store.SaveGoal(r.Context(), goal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save goal", err)
		return
	}
	h.invalidateAnalysis(r, userID)
	writeJSON(w, http.StatusOK, goal)
}

// ListAccounts returns the user's accounts.
// GET /api/users/{id}/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount adds a retirement account.
// POST /api/users/{id}/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	account := domain.RetirementAccount{
		ID:                 uuid.NewString(),
		UserID:             userID,
		AccountType:        domain.AccountType(req.AccountType),
		CurrentBalance:     req.CurrentBalance,
		AnnualContribution: req.AnnualContribution,
		EmployerMatch:      req.EmployerMatch,
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account", err)
		return
	}
	if err := h.Store.SaveAccount(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	h.invalidateAnalysis(r, userID)
	writeJSON(w, http.StatusCreated, account)
}

// DeleteAccount removes an account.
// DELETE /api/users/{id}/accounts/{accountID}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.Store.DeleteAccount(r.Context(), userID, chi.URLParam(r, "accountID")); err != nil {
		writeStoreError(w, "Failed to delete account", err)
		return
	}
	h.invalidateAnalysis(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

// ListInvestments returns the user's investments.
// GET /api/users/{id}/investments
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := h.Store.ListInvestments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list investments", err)
		return
	}
	writeJSON(w, http.StatusOK, investments)
}

// CreateInvestment adds an investment.
// POST /api/users/{id}/investments
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req InvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	investment := domain.Investment{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Name:                 req.Name,
		AllocationPercentage: percent.NewFromDecimal(req.AllocationPercentage),
		ExpectedReturn:       percent.NewFromDecimal(req.ExpectedReturn),
		RiskLevel:            domain.RiskLevel(req.RiskLevel),
	}
	if err := investment.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid investment", err)
		return
	}
	if err := h.Store.SaveInvestment(r.Context(), investment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save investment", err)
		return
	}
	h.invalidateAnalysis(r, userID)
	writeJSON(w, http.StatusCreated, investment)
}

// DeleteInvestment removes an investment.
// DELETE /api/users/{id}/investments/{investmentID}
func (h *Handler) DeleteInvestment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.Store.DeleteInvestment(r.Context(), userID, chi.URLParam(r, "investmentID")); err != nil {
		writeStoreError(w, "Failed to delete investment", err)
		return
	}
	h.invalidateAnalysis(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

// GetProjection returns the deterministic point-estimate projection.
// GET /api/users/{id}/projection
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	goal, accounts, investments, ok := h.loadRecords(w, r)
	if !ok {
		return
	}
	projection, err := h.Orchestrator.Projector.CreateProjection(goal, accounts, investments)
	if err != nil {
		writeEngineError(w, "Projection failed", err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

// GetSimulation runs a Monte Carlo simulation.
// GET /api/users/{id}/simulation?simulations=n
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	goal, accounts, investments, ok := h.loadRecords(w, r)
	if !ok {
		return
	}

	simulations := h.Simulations
	if raw := r.URL.Query().Get("simulations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid simulations parameter", err)
			return
		}
		simulations = n
	}

	result, err := h.Orchestrator.Simulator.Simulate(goal, accounts, investments, simulations)
	if err != nil {
		writeEngineError(w, "Simulation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAllocation runs the portfolio allocator.
// GET /api/users/{id}/allocation?risk_tolerance=moderate
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	goal, _, investments, ok := h.loadRecords(w, r)
	if !ok {
		return
	}

	tolerance := domain.RiskTolerance(r.URL.Query().Get("risk_tolerance"))
	if tolerance == "" {
		tolerance = domain.ToleranceModerate
	}

	result, err := h.Orchestrator.Allocator.Optimize(goal, investments, tolerance)
	if err != nil {
		writeEngineError(w, "Allocation optimization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetContributions runs the contribution allocator.
// GET /api/users/{id}/contributions?monthly_amount=1000
func (h *Handler) GetContributions(w http.ResponseWriter, r *http.Request) {
	goal, accounts, _, ok := h.loadRecords(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("monthly_amount")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "monthly_amount query parameter is required", nil)
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid monthly_amount parameter", err)
		return
	}

	result, err := h.Orchestrator.Contribution.Optimize(accounts, amount, goal.CurrentAge)
	if err != nil {
		writeEngineError(w, "Contribution optimization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetTimeline runs the retirement-timing analyzer.
// GET /api/users/{id}/timeline?health=high&family=normal&career=low
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	goal, accounts, _, ok := h.loadRecords(w, r)
	if !ok {
		return
	}

	prefs := domain.DefaultLifestylePreferences()
	if v := r.URL.Query().Get("health"); v != "" {
		prefs.Health = domain.PreferenceLevel(v)
	}
	if v := r.URL.Query().Get("family"); v != "" {
		prefs.Family = domain.PreferenceLevel(v)
	}
	if v := r.URL.Query().Get("career"); v != "" {
		prefs.Career = domain.PreferenceLevel(v)
	}

	result, err := h.Orchestrator.Timeline.Optimize(goal, accounts, prefs)
	if err != nil {
		writeEngineError(w, "Timeline optimization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAnalysis runs the full orchestrated analysis, served from cache when
// the user's records haven't changed.
// GET /api/users/{id}/analysis?monthly_amount=1000
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var monthlyAmount *decimal.Decimal
	if raw := r.URL.Query().Get("monthly_amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid monthly_amount parameter", err)
			return
		}
		monthlyAmount = &amount
	}

	// Only the unbudgeted analysis is cached. Budgeted variants would need
	// per-amount keys the write-path invalidation cannot enumerate.
	key := analysisKey(userID)
	if monthlyAmount == nil {
		if cached, ok := h.Cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	result, err := h.Orchestrator.RunComprehensive(r.Context(), userID, monthlyAmount)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No retirement goal found for user", err)
			return
		}
		writeEngineError(w, "Analysis failed", err)
		return
	}

	if monthlyAmount == nil {
		if body, err := json.Marshal(result); err == nil {
			if err := h.Cache.Set(r.Context(), key, string(body), h.CacheTTL); err != nil {
				h.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to cache analysis")
			}
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// loadRecords fetches the goal (404 when absent), accounts and investments.
func (h *Handler) loadRecords(w http.ResponseWriter, r *http.Request) (domain.RetirementGoal, []domain.RetirementAccount, []domain.Investment, bool) {
	userID := chi.URLParam(r, "id")

	goal, err := h.Store.GetGoal(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No retirement goal found for user", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to get goal", err)
		}
		return domain.RetirementGoal{}, nil, nil, false
	}
	accounts, err := h.Store.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return domain.RetirementGoal{}, nil, nil, false
	}
	investments, err := h.Store.ListInvestments(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list investments", err)
		return domain.RetirementGoal{}, nil, nil, false
	}
	return goal, accounts, investments, true
}

// invalidateAnalysis drops the cached analysis after any write to the
// user's records. Best effort; a failed delete only shortens freshness to
// the TTL.
func (h *Handler) invalidateAnalysis(r *http.Request, userID string) {
	if err := h.Cache.Delete(r.Context(), analysisKey(userID)); err != nil {
		h.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate cached analysis")
	}
}

func analysisKey(userID string) string {
	return "analysis:" + userID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine input errors to 400 and everything else to
// 500.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	writeError(w, status, message, err)
}

// writeStoreError maps missing records to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, message, err)
}
