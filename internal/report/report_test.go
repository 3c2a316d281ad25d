package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/simulation"
)

func sampleResults() []simulation.StrategyResult {
	return []simulation.StrategyResult{
		{StrategyID: "strategy-1", StrategyTitle: "Challenge Mens Rea", AverageScore: 6.2, WinsCount: 2, TotalRuns: 3},
		{StrategyID: "strategy-2", StrategyTitle: "Mechanical Failure Defense", AverageScore: 7.8, WinsCount: 3, TotalRuns: 3},
		{StrategyID: "strategy-3", StrategyTitle: "Speed Is Not Recklessness", AverageScore: 5.1, WinsCount: 1, TotalRuns: 3},
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary, err := Summarize(sampleResults())
	require.NoError(t, err)

	assert.Equal(t, "strategy-2", summary.Best.StrategyID)
	assert.Equal(t, "Mechanical Failure Defense", summary.Best.Title)
	assert.InDelta(t, 7.8, summary.Best.AverageScore, 1e-9)
	assert.Equal(t, 3, summary.Best.WinsCount)
	assert.Equal(t, 100, summary.SuccessRate)
	assert.Len(t, summary.Strategies, 3)
}

func TestSummarizeTieKeepsFirst(t *testing.T) {
	t.Parallel()

	results := []simulation.StrategyResult{
		{StrategyID: "strategy-1", StrategyTitle: "First", AverageScore: 6.0, WinsCount: 1, TotalRuns: 3},
		{StrategyID: "strategy-2", StrategyTitle: "Second", AverageScore: 6.0, WinsCount: 2, TotalRuns: 3},
	}
	summary, err := Summarize(results)
	require.NoError(t, err)
	assert.Equal(t, "strategy-1", summary.Best.StrategyID)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	_, err := Summarize(nil)
	require.ErrorIs(t, err, ErrNoResults)
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wins, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		b := BestStrategy{WinsCount: tt.wins, TotalRuns: tt.total}
		assert.Equal(t, tt.want, b.SuccessRate(), "%d/%d", tt.wins, tt.total)
	}
}

type stubTextGenerator struct {
	response string
	err      error

	system string
	prompt string
}

func (g *stubTextGenerator) GenerateText(_ context.Context, system, prompt string) (string, error) {
	g.system = system
	g.prompt = prompt
	return g.response, g.err
}

func TestMemorandumHappyPath(t *testing.T) {
	t.Parallel()

	raw := "# Strategic Memorandum\n\nTo: File\nFrom: Counsel\nDate: 2026-08-30\nRe: Defense strategy\n\n" +
		"## Executive Summary\n\nThe mechanical failure defense is recommended.\n\n## Risks\n\nExpert costs.\n"
	gen := &stubTextGenerator{response: raw}

	summary, err := Summarize(sampleResults())
	require.NoError(t, err)

	memo, err := NewGenerator(gen, log.NewNop()).Memorandum(context.Background(), "Client charged with reckless driving.", summary)
	require.NoError(t, err)

	assert.True(t, len(memo) > 0)
	assert.Contains(t, memo, "Executive Summary")
	assert.Contains(t, memo, "mechanical failure defense is recommended")
	assert.NotContains(t, memo, "To: File")
	assert.NotContains(t, memo, "Strategic Memorandum")

	// Prompt carries the facts and the full scoreboard.
	assert.Contains(t, gen.system, "Executive Summary")
	assert.Contains(t, gen.prompt, "Client charged with reckless driving.")
	assert.Contains(t, gen.prompt, "Recommended Strategy: Mechanical Failure Defense")
	assert.Contains(t, gen.prompt, "100% success rate")
	assert.Contains(t, gen.prompt, "Challenge Mens Rea: average 6.2/10, 2/3 wins")
}

func TestMemorandumGeneratorError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("model unavailable")
	gen := &stubTextGenerator{err: wantErr}

	summary, err := Summarize(sampleResults())
	require.NoError(t, err)

	_, err = NewGenerator(gen, log.NewNop()).Memorandum(context.Background(), "", summary)
	require.ErrorIs(t, err, wantErr)
}

func TestMemorandumEmptyResponse(t *testing.T) {
	t.Parallel()

	gen := &stubTextGenerator{response: "   \n  "}

	summary, err := Summarize(sampleResults())
	require.NoError(t, err)

	_, err = NewGenerator(gen, log.NewNop()).Memorandum(context.Background(), "", summary)
	require.ErrorIs(t, err, ErrEmptyMemorandum)
}
