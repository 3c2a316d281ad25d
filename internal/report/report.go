// Package report produces the exportable strategy report: a numeric summary
// of the finalized simulation results plus a generated legal memorandum.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/simulation"
)

var (
	// ErrNoResults is returned when a report is requested before any
	// simulation has finished.
	ErrNoResults = errors.New("report: no simulation results")

	// ErrEmptyMemorandum is returned when the model produces no usable text.
	ErrEmptyMemorandum = errors.New("report: model returned empty memorandum")
)

// BestStrategy is the winning strategy summary shown in the report.
type BestStrategy struct {
	StrategyID   string  `json:"strategyId"`
	Title        string  `json:"title"`
	AverageScore float64 `json:"averageScore"`
	WinsCount    int     `json:"winsCount"`
	TotalRuns    int     `json:"totalRuns"`
}

// SuccessRate returns the win percentage rounded to whole percent.
func (b BestStrategy) SuccessRate() int {
	if b.TotalRuns == 0 {
		return 0
	}
	return int(math.Round(float64(b.WinsCount) / float64(b.TotalRuns) * 100))
}

// Summary is the numeric portion of the report.
type Summary struct {
	Best        BestStrategy                `json:"bestStrategy"`
	Strategies  []simulation.StrategyResult `json:"strategies"`
	SuccessRate int                         `json:"successRate"`
}

// Summarize picks the best strategy (highest average score, first on ties)
// from finalized results.
func Summarize(results []simulation.StrategyResult) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, ErrNoResults
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.AverageScore > best.AverageScore {
			best = r
		}
	}

	b := BestStrategy{
		StrategyID:   best.StrategyID,
		Title:        best.StrategyTitle,
		AverageScore: best.AverageScore,
		WinsCount:    best.WinsCount,
		TotalRuns:    best.TotalRuns,
	}
	return Summary{
		Best:        b,
		Strategies:  results,
		SuccessRate: b.SuccessRate(),
	}, nil
}

// TextGenerator produces free-form text from a system instruction and a
// prompt. *gemini.Client satisfies this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Generator builds strategy memoranda.
type Generator struct {
	gen    TextGenerator
	logger log.Logger
}

// NewGenerator creates a memorandum Generator backed by gen.
func NewGenerator(gen TextGenerator, logger log.Logger) *Generator {
	return &Generator{
		gen:    gen,
		logger: logger.With("component", "report"),
	}
}

const memoSystem = "You are a senior litigation partner drafting an internal " +
	"strategy memorandum. Write in formal legal prose using markdown headings. " +
	"Begin with an 'Executive Summary' section."

// Memorandum generates and sanitizes the report memorandum.
func (g *Generator) Memorandum(ctx context.Context, caseFacts string, summary Summary) (string, error) {
	raw, err := g.gen.GenerateText(ctx, memoSystem, buildMemoPrompt(caseFacts, summary))
	if err != nil {
		return "", fmt.Errorf("generate memorandum: %w", err)
	}

	memo := Sanitize(raw)
	if memo == "" {
		return "", ErrEmptyMemorandum
	}

	g.logger.Info("memorandum generated", "chars", len(memo))
	return memo, nil
}

func buildMemoPrompt(caseFacts string, summary Summary) string {
	var b strings.Builder
	b.WriteString("Draft a strategy memorandum recommending the defense strategy below.\n\n")
	if caseFacts != "" {
		fmt.Fprintf(&b, "Case Facts:\n%s\n\n", caseFacts)
	}
	fmt.Fprintf(&b, "Recommended Strategy: %s\n", summary.Best.Title)
	fmt.Fprintf(&b, "Average Simulation Score: %.1f/10\n", summary.Best.AverageScore)
	fmt.Fprintf(&b, "Defense Wins: %d of %d simulated runs (%d%% success rate)\n\n",
		summary.Best.WinsCount, summary.Best.TotalRuns, summary.SuccessRate)

	b.WriteString("All Simulated Strategies:\n")
	for _, r := range summary.Strategies {
		fmt.Fprintf(&b, "- %s: average %.1f/10, %d/%d wins\n",
			r.StrategyTitle, r.AverageScore, r.WinsCount, r.TotalRuns)
	}

	b.WriteString("\nCover: executive summary, recommended approach, key risks, and next steps.\n")
	return b.String()
}
