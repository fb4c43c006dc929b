package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const maxWebhookBody = 1 << 20

type changeNotification struct {
	SubscriptionID string `json:"subscriptionId"`
	ChangeType     string `json:"changeType"`
	Resource       string `json:"resource"`
}

type notificationEnvelope struct {
	ValidationToken string               `json:"validationToken"`
	Value           []changeNotification `json:"value"`
}

// HandleWebhook receives Graph change notifications on any method. The
// subscription handshake (a validation token in the query or body) is echoed
// back verbatim; notification batches are relayed to push subscribers one by
// one, best effort, and always acknowledged with 202.
func (h *ProxyHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "webhook")

	if token := r.URL.Query().Get("validationToken"); token != "" {
		echoValidationToken(w, token)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var envelope notificationEnvelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			log.WithError(err).Warn("Undecodable webhook payload")
			http.Error(w, "Invalid notification payload", http.StatusBadRequest)
			return
		}
	}

	if envelope.ValidationToken != "" {
		echoValidationToken(w, envelope.ValidationToken)
		return
	}

	delivered := 0
	for _, n := range envelope.Value {
		content := fmt.Sprintf("Change %s on %s", n.ChangeType, n.Resource)
		if err := h.push.Notify(r.Context(), "SharePoint update", content); err != nil {
			// One bad notification must not block the rest of the batch.
			log.WithFields(logrus.Fields{
				"change_type": n.ChangeType,
				"resource":    n.Resource,
			}).WithError(err).Warn("Push notification failed")
			continue
		}
		delivered++
	}

	log.WithFields(logrus.Fields{
		"received":  len(envelope.Value),
		"delivered": delivered,
	}).Info("Processed notification batch")

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Accepted"))
}

func echoValidationToken(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(token))
}
