package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/report"
	"github.com/kanonhq/kanon/internal/wizard"
)

// MemoGenerator drafts the report memorandum.
// *report.Generator satisfies this interface.
type MemoGenerator interface {
	Memorandum(ctx context.Context, caseFacts string, summary report.Summary) (string, error)
}

type exportHandler struct {
	memo   MemoGenerator
	store  wizard.Store
	logger log.Logger
}

// export handles POST /api/export: summarizes the finalized simulation
// results from the wizard state and drafts the strategy memorandum.
func (h *exportHandler) export(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no_session", "session not provisioned")
		return
	}

	session := wizard.NewSession(h.store, sessionID)
	state, err := session.State(r.Context())
	if err != nil {
		h.logger.Error("loading wizard state failed", "error", err)
		writeError(w, http.StatusInternalServerError, "state_failed", "failed to load wizard state")
		return
	}
	if err := state.CanExport(); err != nil {
		writeError(w, http.StatusConflict, "not_ready", "run simulations before exporting")
		return
	}

	summary, err := report.Summarize(state.SimulationResults)
	if err != nil {
		writeError(w, http.StatusConflict, "not_ready", "no simulation results to export")
		return
	}

	var caseFacts string
	if state.LegalCase != nil {
		caseFacts = state.LegalCase.Description
	}

	var memorandum string
	if h.memo != nil {
		memorandum, err = h.memo.Memorandum(r.Context(), caseFacts, summary)
		if err != nil {
			if errors.Is(err, report.ErrEmptyMemorandum) {
				writeError(w, http.StatusBadGateway, "memo_failed", "model returned empty memorandum")
				return
			}
			h.logger.Error("memorandum generation failed", "error", err)
			writeError(w, http.StatusBadGateway, "memo_failed", "memorandum generation unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    summary,
		"memorandum": memorandum,
	})
}
