package handlers

import (
	"net/http"
)

// HandleList serves the drive-item summaries at the root of the configured
// document library.
func (h *ProxyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "list")

	items, err := h.graph.ListChildren(r.Context())
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}

	log.WithField("count", len(items)).Debug("Listed drive items")
	writeJSON(w, http.StatusOK, items)
}
