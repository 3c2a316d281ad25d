package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/simulation"
	"github.com/kanonhq/kanon/internal/twin"
	"github.com/kanonhq/kanon/internal/wizard"
)

// SimulationRunner produces the simulation event stream for a request.
// *simulation.Runner satisfies this interface.
type SimulationRunner interface {
	Run(ctx context.Context, req simulation.Request, prompts simulation.PromptContext, emit simulation.Emitter) error
}

type simulationHandler struct {
	runner SimulationRunner
	store  wizard.Store
	hub    *Hub
	logger log.Logger
}

// runSimulations handles POST /api/run-simulations. The response is a
// newline-delimited `data: {json}` stream; request-level failures are
// rejected with a JSON error body before streaming begins. Progress is
// additionally broadcast to WebSocket subscribers, and the finalized
// results are written to the wizard state.
func (h *simulationHandler) runSimulations(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "ai_unavailable", "simulation requires a configured AI backend")
		return
	}

	var req simulation.Request
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	sessionID, _ := sessionIDFromContext(r.Context())
	session := wizard.NewSession(h.store, sessionID)

	agg := simulation.NewAggregator(session, h.logger)
	agg.Begin(req.Strategies)
	agg.StreamStarted()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	prompts := twin.PromptContext(req.JudgeName, req.StateAttorneyName)

	emit := func(ev *simulation.Event) error {
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshaling event: %w", err)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		flusher.Flush()

		if err := agg.Apply(r.Context(), ev); err != nil {
			// Durable-write and upstream-error failures surface through the
			// aggregator state; the stream itself already carried the event.
			h.logger.Error("applying simulation event", "error", err, "type", ev.Type)
		}
		h.hub.Broadcast(Progress{
			Type:          ev.Type,
			CompletedRuns: agg.CompletedRuns(),
			TotalRuns:     agg.TotalRuns(),
			Percent:       agg.Progress(),
		})
		return nil
	}

	if err := h.runner.Run(r.Context(), req, prompts, emit); err != nil {
		// Headers are long gone: log, fail the aggregate, and close the
		// stream. The consumer sees the truncation.
		if !errors.Is(err, context.Canceled) {
			h.logger.Error("simulation run aborted", "error", err)
		}
		agg.Fail(err)
	}
}
