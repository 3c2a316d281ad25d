package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/wizard"
)

type wizardHandler struct {
	store  wizard.Store
	logger log.Logger
}

// getSlot handles GET /api/wizard/{key}: the raw JSON value of one
// wizard-state slot.
func (h *wizardHandler) getSlot(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !wizard.ValidKey(key) {
		writeError(w, http.StatusNotFound, "unknown_key", "unknown wizard key")
		return
	}

	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no_session", "session not provisioned")
		return
	}

	value, err := h.store.Get(r.Context(), sessionID, key)
	if err != nil {
		if errors.Is(err, wizard.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_set", "wizard key has no value")
			return
		}
		h.logger.Error("wizard read failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "read_failed", "failed to read wizard state")
		return
	}

	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"value": value})
}

// putSlot handles PUT /api/wizard/{key}: stores the request body as the
// slot's JSON value.
func (h *wizardHandler) putSlot(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !wizard.ValidKey(key) {
		writeError(w, http.StatusNotFound, "unknown_key", "unknown wizard key")
		return
	}

	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no_session", "session not provisioned")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to read request body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := h.store.Put(r.Context(), sessionID, key, body); err != nil {
		h.logger.Error("wizard write failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "write_failed", "failed to write wizard state")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
