// Package sharepoint is a minimal SharePoint REST client used to fetch the
// rendered HTML of site pages, which Graph does not expose.
package sharepoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/upstream"
	"github.com/sirupsen/logrus"
)

// TokenSource provides bearer tokens for the SharePoint audience.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	log        *logrus.Entry
}

func NewClient(logger *logrus.Logger, cfg *config.Config, tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &upstream.Transport{Log: logger.WithField("component", "sharepoint_transport")},
		},
		baseURL: "https://" + cfg.SPHost,
		tokens:  tokens,
		log:     logger.WithField("component", "sharepoint_client"),
	}
}

// GetFileByServerRelativePath returns the raw contents of the file at the
// given server-relative URL, typically the HTML of a site page.
func (c *Client) GetFileByServerRelativePath(ctx context.Context, serverRelativeURL string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	// Single quotes inside the decodedUrl literal are doubled per OData.
	escaped := url.PathEscape(strings.ReplaceAll(serverRelativeURL, "'", "''"))
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	reqURL := fmt.Sprintf("%s/_api/web/GetFileByServerRelativePath(decodedUrl='%s')/$value", c.baseURL, escaped)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: request failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, upstream.FromResponse("sharepoint", resp)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: reading file body: %w", err)
	}
	return body, nil
}
