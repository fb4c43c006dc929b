// Package graph is a minimal Microsoft Graph client covering the drive and
// site-page reads this proxy exposes.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/upstream"
	"github.com/sirupsen/logrus"
)

// TokenSource provides bearer tokens for the Graph audience.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	siteID     string
	driveID    string
	tokens     TokenSource
	log        *logrus.Entry
}

func NewClient(logger *logrus.Logger, cfg *config.Config, tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &upstream.Transport{Log: logger.WithField("component", "graph_transport")},
		},
		baseURL: cfg.GraphBaseURL,
		siteID:  cfg.SiteID,
		driveID: cfg.DriveID,
		tokens:  tokens,
		log:     logger.WithField("component", "graph_client"),
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: request failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, upstream.FromResponse("graph", resp)
	}
	return resp, nil
}

// ListChildren returns summaries of the items at the root of the configured
// drive.
func (c *Client) ListChildren(ctx context.Context) ([]ItemSummary, error) {
	reqURL := fmt.Sprintf("%s/sites/%s/drives/%s/root/children?$top=200", c.baseURL, c.siteID, c.driveID)
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page struct {
		Value []driveItem `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("graph: decoding children response: %w", err)
	}

	summaries := make([]ItemSummary, 0, len(page.Value))
	for i := range page.Value {
		summaries = append(summaries, page.Value[i].summary())
	}
	return summaries, nil
}

// GetItem fetches the metadata of a single drive item, including its
// pre-authenticated download URL when one exists.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	reqURL := fmt.Sprintf("%s/sites/%s/drives/%s/items/%s", c.baseURL, c.siteID, c.driveID, url.PathEscape(itemID))
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("graph: decoding item response: %w", err)
	}

	meta := &Item{
		ID:          item.ID,
		Name:        item.Name,
		Size:        item.Size,
		ETag:        item.ETag,
		DownloadURL: item.DownloadURL,
	}
	if item.File != nil {
		meta.MimeType = item.File.MimeType
	}
	return meta, nil
}

// OpenDownload starts streaming from a pre-authenticated download URL. The
// URL already embeds authorization, so no bearer token is attached. The
// caller owns the response body.
func (c *Client) OpenDownload(ctx context.Context, downloadURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: building download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: download request failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, upstream.FromResponse("graph", resp)
	}
	return resp, nil
}

// ListPages returns summaries of the site pages of the configured site.
func (c *Client) ListPages(ctx context.Context) ([]PageSummary, error) {
	reqURL := fmt.Sprintf("%s/sites/%s/pages/microsoft.graph.sitePage", c.baseURL, c.siteID)
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page struct {
		Value []sitePage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("graph: decoding pages response: %w", err)
	}

	summaries := make([]PageSummary, 0, len(page.Value))
	for _, p := range page.Value {
		summaries = append(summaries, PageSummary(p))
	}
	return summaries, nil
}
