// Retireplan is a retirement savings planner. It runs as an HTTP API over a
// SQLite store, or offline against a YAML plan file.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rroupski/retirement-planner/internal/api"
	"github.com/rroupski/retirement-planner/internal/cache"
	"github.com/rroupski/retirement-planner/internal/config"
	"github.com/rroupski/retirement-planner/internal/domain"
	"github.com/rroupski/retirement-planner/internal/engine"
	"github.com/rroupski/retirement-planner/internal/output"
	"github.com/rroupski/retirement-planner/internal/store/memory"
	"github.com/rroupski/retirement-planner/internal/store/sqlite"
	"github.com/rroupski/retirement-planner/pkg/logger"
)

var (
	formatName string
	toFile     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "retireplan",
		Short: "Retirement savings planner and optimization engine",
		Long: `Retireplan projects retirement trajectories, runs Monte Carlo
simulations, and optimizes portfolio allocation, contributions and
retirement timing.

Run "retireplan serve" for the HTTP API, or point the offline commands
at a YAML plan file (see "retireplan example").`,
	}

	rootCmd.PersistentFlags().StringVar(&formatName, "format", "console", "output format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&toFile, "output-file", false, "write output to a timestamped file instead of stdout")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(exampleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.Pretty})
			log.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting retireplan")

			st, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			var resultCache cache.Cache = cache.NewNoop()
			if cfg.RedisAddr != "" {
				resultCache = cache.NewRedis(cfg.RedisAddr)
				log.Info().Str("addr", cfg.RedisAddr).Msg("result cache enabled")
			}

			handler := api.NewHandler(st, resultCache, cfg.Simulations, cfg.CacheTTL, log)
			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.Port),
				Handler:      api.NewRouter(handler),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Info().Msgf("listening on http://localhost:%d", cfg.Port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("forced shutdown: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "analyze [plan file]",
		Aliases: []string{"optimize"},
		Short:   "Run the full analysis against a YAML plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlan(args[0])
			if err != nil {
				return err
			}
			result, err := runPlan(plan)
			if err != nil {
				return err
			}
			return emit(result)
		},
	}
}

func projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project [plan file]",
		Short: "Run the deterministic projection against a YAML plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlan(args[0])
			if err != nil {
				return err
			}
			goal, accounts, investments := plan.Domain()
			projection, err := engine.NewProjector().CreateProjection(goal, accounts, investments)
			if err != nil {
				return err
			}
			result := &domainResult{Projection: projection}
			return emit(result.comprehensive(goal.UserID))
		},
	}
}

func simulateCmd() *cobra.Command {
	var simulations int
	cmd := &cobra.Command{
		Use:   "simulate [plan file]",
		Short: "Run a Monte Carlo simulation against a YAML plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlan(args[0])
			if err != nil {
				return err
			}
			goal, accounts, investments := plan.Domain()

			log := logger.New(logger.Config{Level: "warn", Pretty: true})
			simulator := engine.NewSimulator(log)
			simulator.Seed = plan.Settings.Seed

			n := simulations
			if n == 0 {
				n = plan.Settings.Simulations
			}
			if n == 0 {
				n = engine.DefaultSimulations
			}

			mc, err := simulator.Simulate(goal, accounts, investments, n)
			if err != nil {
				return err
			}
			result := &domainResult{MonteCarlo: mc}
			return emit(result.comprehensive(goal.UserID))
		},
	}
	cmd.Flags().IntVarP(&simulations, "simulations", "n", 0, "number of trials (overrides plan settings)")
	return cmd
}

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [output file]",
		Short: "Write an example YAML plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "plan.yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			data, err := yaml.Marshal(config.ExamplePlan())
			if err != nil {
				return fmt.Errorf("failed to marshal example plan: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			fmt.Printf("Example plan written to %s\n", filename)
			return nil
		},
	}
}

// runPlan executes every optimizer against an offline plan, honoring its run
// settings, and assembles a comprehensive result the same way the API does.
func runPlan(plan *config.Plan) (*domain.ComprehensiveResult, error) {
	goal, accounts, investments := plan.Domain()
	goal.UserID = "plan"

	log := logger.New(logger.Config{Level: "warn", Pretty: true})
	mem := memory.New()
	defer mem.Close()

	ctx := context.Background()
	if err := mem.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	for _, account := range accounts {
		account.UserID = goal.UserID
		if err := mem.SaveAccount(ctx, account); err != nil {
			return nil, err
		}
	}
	for _, investment := range investments {
		investment.UserID = goal.UserID
		if err := mem.SaveInvestment(ctx, investment); err != nil {
			return nil, err
		}
	}

	orch := engine.NewOrchestrator(mem, log)
	orch.Simulator.Seed = plan.Settings.Seed
	return orch.RunComprehensive(ctx, goal.UserID, plan.Settings.MonthlyBudget)
}

// domainResult wraps partial results so single-module commands reuse the
// formatters.
type domainResult struct {
	Projection *domain.ProjectionResult
	MonteCarlo *domain.MonteCarloResult
}

func (r *domainResult) comprehensive(userID string) *domain.ComprehensiveResult {
	return &domain.ComprehensiveResult{
		UserID:      userID,
		Projection:  r.Projection,
		MonteCarlo:  r.MonteCarlo,
		GeneratedAt: time.Now().UTC(),
	}
}

func emit(result *domain.ComprehensiveResult) error {
	formatter := output.GetFormatterByName(formatName)
	if formatter == nil {
		return fmt.Errorf("unknown format %q (available: %v)", formatName, output.AvailableFormatterNames())
	}
	if toFile {
		ext := formatter.Name()
		if ext == "console" {
			ext = "txt"
		}
		filename, err := output.WriteFormatted(formatter, result, ext)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filename)
		return nil
	}
	data, err := formatter.Format(result)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
