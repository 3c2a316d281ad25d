// Package strategy synthesizes defense strategies from precedent cases.
//
// A single structured JSON-mode generation produces exactly three candidate
// strategies. Model output is parsed defensively: the list is capped at
// three, missing fields default to empty, and a response that yields no
// usable strategy is an error rather than an empty success.
package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/research"
	"github.com/kanonhq/kanon/internal/simulation"
)

// Count is the fixed number of strategies a synthesis produces.
const Count = 3

var (
	// ErrNoCases is returned when synthesis is requested without precedents.
	ErrNoCases = errors.New("strategy: no cases provided")

	// ErrEmptyResponse is returned when the model yields no usable strategies.
	ErrEmptyResponse = errors.New("strategy: model returned no strategies")
)

// Precedent links a strategy back to one of the cases that motivated it.
type Precedent struct {
	CaseName    string `json:"caseName"`
	Application string `json:"application"`
}

// Strategy is one recommended defense strategy.
type Strategy struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Advantages           []string    `json:"advantages"`
	Considerations       []string    `json:"considerations"`
	RiskFlags            []string    `json:"riskFlags"`
	SupportingPrecedents []Precedent `json:"supportingPrecedents"`
}

// RequestStrategy converts s into the shape the simulation service accepts.
func (s Strategy) RequestStrategy() simulation.RequestStrategy {
	return simulation.RequestStrategy{
		ID:             s.ID,
		Title:          s.Title,
		Advantages:     s.Advantages,
		Considerations: s.Considerations,
	}
}

// Generator produces a JSON document from a system instruction and a prompt.
// *gemini.Client satisfies this interface.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// Synthesizer turns selected precedent cases into defense strategies.
type Synthesizer struct {
	gen    Generator
	logger log.Logger
}

// NewSynthesizer creates a Synthesizer backed by gen.
func NewSynthesizer(gen Generator, logger log.Logger) *Synthesizer {
	return &Synthesizer{
		gen:    gen,
		logger: logger.With("component", "strategy"),
	}
}

const systemInstruction = "You are an expert legal strategist who analyzes " +
	"case precedents to develop effective defense strategies. Respond with a " +
	"single JSON object."

// Synthesize generates exactly Count strategies from the given cases.
// Strategy IDs are assigned here ("strategy-1" through "strategy-3")
// regardless of what the model returns.
func (s *Synthesizer) Synthesize(ctx context.Context, cases []research.Case) ([]Strategy, error) {
	if len(cases) == 0 {
		return nil, ErrNoCases
	}

	raw, err := s.gen.GenerateJSON(ctx, systemInstruction, buildPrompt(cases))
	if err != nil {
		return nil, fmt.Errorf("generate strategies: %w", err)
	}

	strategies, err := parseStrategies(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("strategies synthesized",
		"cases", len(cases),
		"strategies", len(strategies))
	return strategies, nil
}

func buildPrompt(cases []research.Case) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following similar legal cases, generate exactly %d recommended defense strategies.\n\n", Count)
	b.WriteString("Similar Cases:\n\n")

	for i, c := range cases {
		fmt.Fprintf(&b, "Case %d: %s\n", i+1, c.Title)
		if c.DateFiled != "" {
			fmt.Fprintf(&b, "Date: %s\n", c.DateFiled)
		}
		if c.Judge != "" {
			fmt.Fprintf(&b, "Judge: %s\n", c.Judge)
		}
		if c.Court != "" {
			fmt.Fprintf(&b, "Court: %s\n", c.Court)
		}
		fmt.Fprintf(&b, "Summary: %s\n\n", c.Body)
	}

	b.WriteString("\nRespond with JSON of the form " +
		`{"strategies": [{"title": ..., "advantages": [...], "considerations": [...], "risk_flags": [...], "supporting_precedents": [{"case_name": ..., "application": ...}]}]}` +
		".\n")
	b.WriteString("For each defense strategy provide:\n")
	b.WriteString("1. Title: a clear, concise name for the strategy\n")
	b.WriteString("2. Advantages: key benefits and strengths\n")
	b.WriteString("3. Considerations: important factors to weigh\n")
	b.WriteString("4. Risk flags: potential risks or challenges\n")
	b.WriteString("5. Supporting precedents: which of the provided cases support this strategy and how\n")
	return b.String()
}

// modelStrategy mirrors the snake_case document the model is asked for.
type modelStrategy struct {
	Title                string   `json:"title"`
	Advantages           []string `json:"advantages"`
	Considerations       []string `json:"considerations"`
	RiskFlags            []string `json:"risk_flags"`
	SupportingPrecedents []struct {
		CaseName    string `json:"case_name"`
		Application string `json:"application"`
	} `json:"supporting_precedents"`
}

func parseStrategies(raw string) ([]Strategy, error) {
	var doc struct {
		Strategies []modelStrategy `json:"strategies"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &doc); err != nil {
		return nil, fmt.Errorf("parse strategies: %w", err)
	}

	out := make([]Strategy, 0, Count)
	for _, ms := range doc.Strategies {
		if len(out) == Count {
			break
		}
		if strings.TrimSpace(ms.Title) == "" {
			continue
		}
		st := Strategy{
			ID:                   fmt.Sprintf("strategy-%d", len(out)+1),
			Title:                ms.Title,
			Advantages:           orEmpty(ms.Advantages),
			Considerations:       orEmpty(ms.Considerations),
			RiskFlags:            orEmpty(ms.RiskFlags),
			SupportingPrecedents: []Precedent{},
		}
		for _, p := range ms.SupportingPrecedents {
			st.SupportingPrecedents = append(st.SupportingPrecedents, Precedent{
				CaseName:    p.CaseName,
				Application: p.Application,
			})
		}
		out = append(out, st)
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// extractJSONObject trims markdown code fences the model sometimes wraps
// around its output despite the JSON response mode.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if start := strings.IndexByte(s, '{'); start >= 0 {
		if end := strings.LastIndexByte(s, '}'); end > start {
			return s[start : end+1]
		}
	}
	return s
}
