package upstream

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport logs every upstream round trip. Only host and path are logged:
// Graph download URLs carry embedded auth tokens in their query string.
type Transport struct {
	Log *logrus.Entry
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.Log.WithFields(logrus.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
	})

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		log.WithError(err).Error("HTTP request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("HTTP request completed")
	return resp, nil
}
