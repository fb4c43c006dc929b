package handlers

import (
	"net/http"
)

// HandlePages serves the site-page summaries of the configured site.
func (h *ProxyHandler) HandlePages(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "pages")

	pages, err := h.graph.ListPages(r.Context())
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}

	log.WithField("count", len(pages)).Debug("Listed site pages")
	writeJSON(w, http.StatusOK, pages)
}
