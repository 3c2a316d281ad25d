package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kanonhq/kanon/internal/log"
)

// Variations are the three fixed run variations per strategy, in emission
// order.
var Variations = [RunsPerStrategy]string{
	"Standard Approach",
	"Aggressive Variant",
	"Conservative Variant",
}

// winScoreCutoff decides the winner when the upstream omits one: a run
// scoring at or above it counts as a defense win.
const winScoreCutoff = 6.0

// Emitter writes one event to the outbound stream. Returning an error aborts
// the run (typically: the consumer disconnected).
type Emitter func(ev *Event) error

// PromptContext carries the rendered digital-twin profile blocks folded into
// every run prompt. Empty fields are omitted from the prompt.
type PromptContext struct {
	JudgeProfile    string
	OpposingProfile string
}

// Runner produces the simulation event stream for a request: one upstream
// completion per strategy variation, emitted as run_complete events,
// followed by per-strategy summaries and one terminal complete event.
//
// A failed upstream call degrades to a zero-score run carrying an error note
// instead of aborting the stream; only emitter failures and context
// cancellation are fatal.
type Runner struct {
	llm    CompletionService
	logger log.Logger
}

// NewRunner creates a Runner backed by the given completion service.
func NewRunner(llm CompletionService, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{llm: llm, logger: logger}
}

// Run executes the full simulation for req, emitting events in order. The
// terminal complete event carries the finalized per-strategy results.
func (r *Runner) Run(ctx context.Context, req Request, prompts PromptContext, emit Emitter) error {
	if err := req.Validate(); err != nil {
		return err
	}

	results := make([]StrategyResult, 0, len(req.Strategies))
	for _, strat := range req.Strategies {
		runs := make([]Run, 0, RunsPerStrategy)
		for i, variation := range Variations {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("simulation cancelled: %w", err)
			}

			raw := r.generateRun(ctx, req, strat, variation, i+1, prompts)
			runs = append(runs, NormalizeRun(&raw))

			if err := emit(&Event{
				Type:       EventRunComplete,
				StrategyID: strat.ID,
				Run:        &raw,
			}); err != nil {
				return fmt.Errorf("emitting run: %w", err)
			}
		}

		result := summarize(strat, runs)
		results = append(results, result)

		if err := emit(&Event{
			Type:     EventStrategyComplete,
			Strategy: &result,
		}); err != nil {
			return fmt.Errorf("emitting strategy summary: %w", err)
		}
	}

	if err := emit(&Event{Type: EventComplete, Results: results}); err != nil {
		return fmt.Errorf("emitting completion: %w", err)
	}
	return nil
}

// modelRun is the JSON shape the upstream model is asked to produce for one
// run.
type modelRun struct {
	DefenseArgument   string      `json:"defenseArgument"`
	PlaintiffArgument string      `json:"plaintiffArgument"`
	JudgmentSummary   string      `json:"judgmentSummary"`
	Winner            string      `json:"winner"`
	Score             Score       `json:"score"`
	Evaluation        *Evaluation `json:"evaluation,omitempty"`
}

// generateRun performs one upstream completion and converts it to a RawRun.
func (r *Runner) generateRun(ctx context.Context, req Request, strat RequestStrategy,
	variation string, ordinal int, prompts PromptContext) RawRun {

	raw := RawRun{
		RunID:     fmt.Sprintf("%s-run-%d", strat.ID, ordinal),
		Variation: variation,
	}

	content, err := r.llm.Complete(ctx, runSystemPrompt, buildRunPrompt(req, strat, variation, prompts))
	if err != nil {
		r.logger.Warn("upstream completion failed",
			"strategyId", strat.ID, "variation", variation, "error", err)
		raw.Error = fmt.Sprintf("simulation unavailable: %v", err)
		return raw
	}

	var parsed modelRun
	if err := json.Unmarshal(extractJSONObject(content), &parsed); err != nil {
		r.logger.Warn("unparseable model output",
			"strategyId", strat.ID, "variation", variation, "error", err)
		raw.Error = "model returned an unparseable result"
		return raw
	}

	raw.DefenseArgument = parsed.DefenseArgument
	raw.PlaintiffArgument = parsed.PlaintiffArgument
	raw.JudgmentSummary = parsed.JudgmentSummary
	raw.Winner = parsed.Winner
	raw.Score = clampScore(parsed.Score)
	raw.Evaluation = parsed.Evaluation
	return raw
}

// summarize computes the finalized per-strategy result from its runs.
func summarize(strat RequestStrategy, runs []Run) StrategyResult {
	var total float64
	wins := 0
	for _, run := range runs {
		total += run.Score
		if isDefenseWin(run) {
			wins++
		}
	}
	avg := 0.0
	if len(runs) > 0 {
		avg = total / float64(len(runs))
	}
	return StrategyResult{
		StrategyID:    strat.ID,
		StrategyTitle: strat.Title,
		AverageScore:  avg,
		WinsCount:     wins,
		TotalRuns:     len(runs),
		Runs:          runs,
	}
}

// isDefenseWin prefers the model's explicit winner and falls back to the
// score cutoff when the field is absent.
func isDefenseWin(run Run) bool {
	if run.Error != "" {
		return false
	}
	if run.Winner != "" {
		return strings.EqualFold(strings.TrimSpace(run.Winner), "defense")
	}
	return run.Score >= winScoreCutoff
}

// clampScore bounds a model-reported score to the 0-10 scale.
func clampScore(s Score) Score {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// extractJSONObject returns the outermost {...} span of content, tolerating
// markdown code fences and prose around the object. Returns the input
// unchanged when no braces are found, letting json.Unmarshal report the
// failure.
func extractJSONObject(content string) []byte {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return []byte(content)
	}
	return []byte(content[start : end+1])
}

const runSystemPrompt = `You are simulating a courtroom hearing on a motion to dismiss. ` +
	`Generate realistic legal arguments for each party and a judicial ruling. ` +
	`Respond with raw JSON only. Do not include code blocks, markdown, or any other formatting.`

// buildRunPrompt renders the user prompt for one run. The variation steers
// the register of the defense argument; the twin profiles, when present,
// steer the judge and opposing counsel behavior.
func buildRunPrompt(req Request, strat RequestStrategy, variation string, prompts PromptContext) string {
	var b strings.Builder

	b.WriteString("**Case Facts:**\n")
	b.WriteString(req.CaseFacts)
	b.WriteString("\n\n")

	if req.ExtractedText != "" {
		b.WriteString("**Supporting Documents:**\n")
		b.WriteString(req.ExtractedText)
		b.WriteString("\n\n")
	}

	b.WriteString("**Defense Strategy:** ")
	b.WriteString(strat.Title)
	b.WriteString("\n")
	for _, adv := range strat.Advantages {
		b.WriteString("- Advantage: ")
		b.WriteString(adv)
		b.WriteString("\n")
	}
	for _, con := range strat.Considerations {
		b.WriteString("- Consideration: ")
		b.WriteString(con)
		b.WriteString("\n")
	}
	b.WriteString("\n**Run Variation:** ")
	b.WriteString(variation)
	b.WriteString("\n\n")

	if prompts.JudgeProfile != "" {
		b.WriteString("**Judge Profile")
		if req.JudgeName != "" {
			b.WriteString(" (")
			b.WriteString(req.JudgeName)
			b.WriteString(")")
		}
		b.WriteString(":**\n")
		b.WriteString(prompts.JudgeProfile)
		b.WriteString("\n\n")
	}
	if prompts.OpposingProfile != "" {
		b.WriteString("**Opposing Counsel Profile")
		if req.StateAttorneyName != "" {
			b.WriteString(" (")
			b.WriteString(req.StateAttorneyName)
			b.WriteString(")")
		}
		b.WriteString(":**\n")
		b.WriteString(prompts.OpposingProfile)
		b.WriteString("\n\n")
	}

	b.WriteString(`Generate one simulated exchange with:
1. Defense argument (2-3 sentences, professional legal language)
2. Plaintiff argument (2-3 sentences, professional legal language)
3. Judgment summary (2-3 sentences, professional judicial language)
4. Winner ("defense" or "plaintiff")
5. Score 0-10 for the defense strategy's performance
6. Optional evaluation with rationale, strengths and weaknesses

Respond in JSON format:
{"defenseArgument":"...","plaintiffArgument":"...","judgmentSummary":"...","winner":"defense","score":7.5,"evaluation":{"rationale":"...","strengths":["..."],"weaknesses":["..."]}}`)

	return b.String()
}
