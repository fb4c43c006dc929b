package handlers

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

type pageResponse struct {
	ServerRelativeURL string `json:"serverRelativeUrl"`
	WebURL            string `json:"webUrl"`
	HTML              string `json:"html"`
}

// HandlePage resolves a site page to its server-relative URL, fetches its
// HTML from SharePoint and returns both. The page is addressed either by
// bare name or by full webUrl.
func (h *ProxyHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	webURL := r.URL.Query().Get("webUrl")

	var serverRelativeURL string
	switch {
	case webURL != "":
		u, err := url.Parse(webURL)
		if err != nil || u.Scheme == "" || u.Host == "" || u.Path == "" || u.Path == "/" {
			http.Error(w, "Invalid webUrl parameter", http.StatusBadRequest)
			return
		}
		serverRelativeURL = u.Path
	case name != "":
		if !strings.HasSuffix(name, ".aspx") {
			name += ".aspx"
		}
		serverRelativeURL = path.Join(h.cfg.SPSitePath, "SitePages", name)
	default:
		http.Error(w, "Missing required parameter: name or webUrl", http.StatusBadRequest)
		return
	}

	log := h.log.WithFields(logrus.Fields{
		"operation":           "page",
		"server_relative_url": serverRelativeURL,
	})

	html, err := h.pages.GetFileByServerRelativePath(r.Context(), serverRelativeURL)
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}

	log.WithField("bytes", len(html)).Debug("Fetched site page")
	writeJSON(w, http.StatusOK, pageResponse{
		ServerRelativeURL: serverRelativeURL,
		WebURL:            "https://" + h.cfg.SPHost + serverRelativeURL,
		HTML:              string(html),
	})
}
