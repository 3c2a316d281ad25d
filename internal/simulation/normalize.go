package simulation

import "strings"

// Factor is a signed scoring-factor attribution shown alongside a run.
// Weight is in [-0.45, 0.45]; positive weights favor the defense.
type Factor struct {
	Name   string  `json:"factor"`
	Weight float64 `json:"weight"`
	Impact string  `json:"impact,omitempty"`
}

// Run is a normalized simulation run, the shape the wizard consumes.
type Run struct {
	RunID             string   `json:"runId"`
	Variation         string   `json:"variation"`
	Score             float64  `json:"score"`
	Winner            string   `json:"winner,omitempty"`
	DefenseArgument   string   `json:"defenseArgument,omitempty"`
	PlaintiffArgument string   `json:"plaintiffArgument,omitempty"`
	JudgmentSummary   string   `json:"judgmentSummary,omitempty"`
	Rationale         string   `json:"rationale"`
	Factors           []Factor `json:"factors"`

	// SynthesizedFactors is true when the upstream provided no strengths or
	// weaknesses and the factors below are the generic placeholder set. The
	// display layer uses this as its "no model insights available" flag.
	SynthesizedFactors bool `json:"synthesizedFactors"`

	Error string `json:"error,omitempty"`
}

// Generic scoring factors synthesized when the upstream payload carries no
// qualitative signal. They exist so the display layer always has something
// to render and carry no real evaluative meaning.
const (
	factorPrecedent  = "Legal Precedent"
	factorFactual    = "Factual Support"
	factorPhilosophy = "Judicial Philosophy Alignment"
)

// Synthesized factor magnitudes and polarity thresholds.
const (
	synthPrimaryWeight   = 0.35
	synthSecondaryWeight = 0.30
	synthPrimaryCutoff   = 7.0
	synthSecondaryCutoff = 5.0
)

// maxFactorWeight caps the attributed weight of any single model-provided
// factor so one factor among many never dominates the display.
const maxFactorWeight = 0.45

// NormalizeRun converts a raw wire run into the display shape, synthesizing
// defaults where the upstream omitted qualitative detail.
func NormalizeRun(raw *RawRun) Run {
	run := Run{
		RunID:             raw.RunID,
		Variation:         raw.Variation,
		Score:             float64(raw.Score),
		Winner:            raw.Winner,
		DefenseArgument:   raw.DefenseArgument,
		PlaintiffArgument: raw.PlaintiffArgument,
		JudgmentSummary:   raw.JudgmentSummary,
		Error:             raw.Error,
	}

	run.Rationale = raw.JudgmentSummary
	if raw.Evaluation != nil && strings.TrimSpace(raw.Evaluation.Rationale) != "" {
		run.Rationale = raw.Evaluation.Rationale
	}

	var strengths, weaknesses []string
	if raw.Evaluation != nil {
		strengths = raw.Evaluation.Strengths
		weaknesses = raw.Evaluation.Weaknesses
	}

	if len(strengths) == 0 && len(weaknesses) == 0 {
		run.Factors = synthesizeFactors(run.Score)
		run.SynthesizedFactors = true
		return run
	}

	run.Factors = make([]Factor, 0, len(strengths)+len(weaknesses))
	for _, s := range strengths {
		run.Factors = append(run.Factors, Factor{
			Name:   s,
			Weight: categoryWeight(len(strengths)),
			Impact: "favorable",
		})
	}
	for _, w := range weaknesses {
		run.Factors = append(run.Factors, Factor{
			Name:   w,
			Weight: -categoryWeight(len(weaknesses)),
			Impact: "unfavorable",
		})
	}
	return run
}

// categoryWeight spreads attribution across a category's factors:
// min(0.45, 1/count).
func categoryWeight(count int) float64 {
	w := 1.0 / float64(count)
	if w > maxFactorWeight {
		return maxFactorWeight
	}
	return w
}

// synthesizeFactors builds the fixed three-factor placeholder set. Polarity
// is derived purely from thresholding the numeric score.
func synthesizeFactors(score float64) []Factor {
	factors := []Factor{
		{Name: factorPrecedent, Weight: synthPrimaryWeight},
		{Name: factorFactual, Weight: synthPrimaryWeight},
		{Name: factorPhilosophy, Weight: synthSecondaryWeight},
	}
	if score < synthPrimaryCutoff {
		factors[0].Weight = -factors[0].Weight
		factors[1].Weight = -factors[1].Weight
	}
	if score < synthSecondaryCutoff {
		factors[2].Weight = -factors[2].Weight
	}
	for i := range factors {
		if factors[i].Weight > 0 {
			factors[i].Impact = "favorable"
		} else {
			factors[i].Impact = "unfavorable"
		}
	}
	return factors
}
