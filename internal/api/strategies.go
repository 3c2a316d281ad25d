package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/research"
	"github.com/kanonhq/kanon/internal/strategy"
	"github.com/kanonhq/kanon/internal/wizard"
)

// Synthesizer generates defense strategies from precedent cases.
type Synthesizer interface {
	Synthesize(ctx context.Context, cases []research.Case) ([]strategy.Strategy, error)
}

type strategyHandler struct {
	synth  Synthesizer
	store  wizard.Store
	logger log.Logger
}

type generateStrategiesRequest struct {
	Cases []research.Case `json:"cases"`
}

// generateStrategies handles POST /api/generate-strategies. The synthesized
// strategies are also written to the wizard state so later steps can build
// on them without re-submitting.
func (h *strategyHandler) generateStrategies(w http.ResponseWriter, r *http.Request) {
	if h.synth == nil {
		writeError(w, http.StatusServiceUnavailable, "ai_unavailable", "strategy generation requires a configured AI backend")
		return
	}

	var req generateStrategiesRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	strategies, err := h.synth.Synthesize(r.Context(), req.Cases)
	if err != nil {
		switch {
		case errors.Is(err, strategy.ErrNoCases):
			writeError(w, http.StatusBadRequest, "no_cases", "at least one case is required")
		case errors.Is(err, strategy.ErrEmptyResponse):
			writeError(w, http.StatusBadGateway, "generation_failed", "model returned no strategies")
		default:
			h.logger.Error("strategy generation failed", "error", err)
			writeError(w, http.StatusBadGateway, "generation_failed", "strategy generation unavailable")
		}
		return
	}

	if sessionID, ok := sessionIDFromContext(r.Context()); ok {
		session := wizard.NewSession(h.store, sessionID)
		if err := session.SetItem(r.Context(), wizard.KeyStrategies, strategies); err != nil {
			h.logger.Warn("persisting strategies failed", "error", err, "session", sessionID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"strategies": strategies})
}
