package api

import (
	"net/http"

	"github.com/kanonhq/kanon/internal/twin"
)

// twins handles GET /api/twins: the compiled-in digital-twin catalog.
func twins(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, twin.Profiles())
}
