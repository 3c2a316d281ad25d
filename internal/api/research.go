package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/research"
)

// maxUploadBytes bounds a pasted-in case document.
const maxUploadBytes = 1 << 20

// Searcher ranks precedent cases against free text.
type Searcher interface {
	Similar(ctx context.Context, query string, topK int) ([]research.Case, error)
}

type researchHandler struct {
	searcher Searcher
	logger   log.Logger
}

// similarCases handles GET /api/similar-cases: ranks the corpus against
// the ?q= text, up to ?limit= results.
func (h *researchHandler) similarCases(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	topK := research.DefaultTopK
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		topK = n
	}

	cases, err := h.searcher.Similar(r.Context(), query, topK)
	if err != nil {
		if errors.Is(err, research.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "empty_query", "query text is required")
			return
		}
		h.logger.Error("similar-case search failed", "error", err)
		writeError(w, http.StatusBadGateway, "search_failed", "case search unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

type uploadCaseRequest struct {
	ExtractedText string `json:"extractedText"`
}

// uploadCase handles POST /api/upload-case: raw extracted case text in,
// ranked precedent cases out.
func (h *researchHandler) uploadCase(w http.ResponseWriter, r *http.Request) {
	var req uploadCaseRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	text := strings.TrimSpace(req.ExtractedText)
	if text == "" {
		writeError(w, http.StatusBadRequest, "empty_text", "extractedText is required")
		return
	}

	cases, err := h.searcher.Similar(r.Context(), text, research.DefaultTopK)
	if err != nil {
		h.logger.Error("upload-case search failed", "error", err)
		writeError(w, http.StatusBadGateway, "search_failed", "case search unavailable")
		return
	}

	preview := text
	if len(preview) > 500 {
		preview = preview[:500]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cases":         cases,
		"extractedText": preview,
	})
}

// decodeBody decodes a bounded JSON request body, writing the error
// response itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return err
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return err
	}
	return nil
}
