package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kanonhq/kanon/internal/config"
	"github.com/kanonhq/kanon/internal/simulation"
	"github.com/kanonhq/kanon/internal/wizard"
)

var (
	simulateFacts      string
	simulateJudge      string
	simulateOpponent   string
	simulateStrategies []string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run simulations against the configured endpoint",
	Long: `Drives the run-simulations endpoint from the terminal: streams the
runs as they finish and prints the per-strategy scoreboard. Results are
saved to the local wizard state.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulate(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateFacts, "facts", "", "case facts to simulate (required)")
	simulateCmd.Flags().StringArrayVar(&simulateStrategies, "strategy", nil, "strategy title, repeatable (required)")
	simulateCmd.Flags().StringVar(&simulateJudge, "judge", "", "judge twin name")
	simulateCmd.Flags().StringVar(&simulateOpponent, "opponent", "", "opposing counsel twin name")
	_ = simulateCmd.MarkFlagRequired("facts")
	_ = simulateCmd.MarkFlagRequired("strategy")
	rootCmd.AddCommand(simulateCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	winStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runSimulate(parent context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	req := simulation.Request{
		CaseFacts:         simulateFacts,
		JudgeName:         simulateJudge,
		StateAttorneyName: simulateOpponent,
	}
	for i, title := range simulateStrategies {
		req.Strategies = append(req.Strategies, simulation.RequestStrategy{
			ID:    fmt.Sprintf("strategy-%d", i+1),
			Title: title,
		})
	}

	store, err := wizard.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening wizard file store: %w", err)
	}
	session := wizard.NewSession(store, uuid.New())

	agg := simulation.NewAggregator(session, logger)
	client := simulation.NewClient(cfg.SimulationEndpoint, logger)

	fmt.Fprintf(out, "Simulating %d strategies (%d runs) against %s\n",
		len(req.Strategies), req.TotalRuns(), cfg.SimulationEndpoint)

	if err := client.Run(ctx, req, agg); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	renderResults(out, agg.Results())
	fmt.Fprintf(out, "\n%s\n", dimStyle.Render("results saved to "+cfg.DataDir))
	return nil
}

func renderResults(out io.Writer, results []simulation.StrategyResult) {
	for _, r := range results {
		fmt.Fprintf(out, "\n%s\n", titleStyle.Render(r.StrategyTitle))
		fmt.Fprintf(out, "  average score %.1f/10\n", r.AverageScore)

		wins := fmt.Sprintf("%d/%d wins", r.WinsCount, r.TotalRuns)
		if r.WinsCount*2 >= r.TotalRuns {
			fmt.Fprintf(out, "  %s\n", winStyle.Render(wins))
		} else {
			fmt.Fprintf(out, "  %s\n", lossStyle.Render(wins))
		}

		for _, run := range r.Runs {
			fmt.Fprintf(out, "  %s %.1f  %s\n",
				dimStyle.Render(run.Variation), run.Score, run.RunID)
		}
	}
}
