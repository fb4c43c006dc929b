// Package onesignal delivers push notifications through the OneSignal REST
// API.
package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/upstream"
	"github.com/sirupsen/logrus"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	restKey    string
	log        *logrus.Entry
}

type notificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
}

func NewClient(logger *logrus.Logger, cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &upstream.Transport{Log: logger.WithField("component", "onesignal_transport")},
		},
		baseURL: cfg.OneSignalBaseURL,
		appID:   cfg.OneSignalAppID,
		restKey: cfg.OneSignalRestKey,
		log:     logger.WithField("component", "onesignal_client"),
	}
}

// Notify sends one notification to all subscribed users.
func (c *Client) Notify(ctx context.Context, heading, content string) error {
	payload, err := json.Marshal(notificationRequest{
		AppID:            c.appID,
		IncludedSegments: []string{"All"},
		Headings:         map[string]string{"en": heading},
		Contents:         map[string]string{"en": content},
	})
	if err != nil {
		return fmt.Errorf("onesignal: encoding notification: %w", err)
	}

	url := c.baseURL + "/notifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("onesignal: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.restKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("onesignal: request failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return upstream.FromResponse("onesignal", resp)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
