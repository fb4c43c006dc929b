package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sdko-org/graph-proxy/internal/upstream"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeUpstreamError mirrors the upstream status and body to the caller when
// they were captured, and falls back to a generic 500 otherwise. Token
// exchange failures carry the identity provider's response the same way.
func writeUpstreamError(w http.ResponseWriter, log *logrus.Entry, err error) {
	log.WithError(err).Error("Upstream request failed")

	var ue *upstream.Error
	if errors.As(err, &ue) && ue.StatusCode > 0 {
		if ue.ContentType != "" {
			w.Header().Set("Content-Type", ue.ContentType)
		}
		w.WriteHeader(ue.StatusCode)
		w.Write(ue.Body)
		return
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		w.WriteHeader(re.Response.StatusCode)
		w.Write(re.Body)
		return
	}

	http.Error(w, "Upstream request failed", http.StatusInternalServerError)
}
