package handlers

import (
	"context"
	"net/http"
	"regexp"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/graph"
	"github.com/sdko-org/graph-proxy/internal/storage"
	"github.com/sirupsen/logrus"
)

var safeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9 ._-]`)

// GraphAPI covers the Microsoft Graph reads the public endpoints need.
type GraphAPI interface {
	ListChildren(ctx context.Context) ([]graph.ItemSummary, error)
	GetItem(ctx context.Context, itemID string) (*graph.Item, error)
	OpenDownload(ctx context.Context, downloadURL string) (*http.Response, error)
	ListPages(ctx context.Context) ([]graph.PageSummary, error)
}

// PageFetcher fetches raw file bytes from SharePoint by server-relative URL.
type PageFetcher interface {
	GetFileByServerRelativePath(ctx context.Context, serverRelativeURL string) ([]byte, error)
}

// Pusher delivers one push notification to all subscribers.
type Pusher interface {
	Notify(ctx context.Context, heading, content string) error
}

// ProxyHandler holds every dependency the routes need. Nothing lives in
// package-level state; the optional download cache is nil when disabled.
type ProxyHandler struct {
	cfg     *config.Config
	graph   GraphAPI
	pages   PageFetcher
	push    Pusher
	storage storage.Storage
	log     *logrus.Entry
}

func NewProxyHandler(logger *logrus.Logger, cfg *config.Config, graphClient GraphAPI, spClient PageFetcher, pushClient Pusher, store storage.Storage) *ProxyHandler {
	return &ProxyHandler{
		cfg:     cfg,
		graph:   graphClient,
		pages:   spClient,
		push:    pushClient,
		storage: store,
		log:     logger.WithField("component", "proxy_handler"),
	}
}

func (h *ProxyHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("graph-proxy is running"))
}

// RequireSharedKey rejects public requests whose key query parameter does not
// match the configured shared key. With no key configured every request
// passes.
func (h *ProxyHandler) RequireSharedKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.PublicSharedKey != "" && r.URL.Query().Get("key") != h.cfg.PublicSharedKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func safeFilename(name string) string {
	safe := safeFilenameChars.ReplaceAllString(name, "_")
	if len(safe) > 255 {
		return safe[:255]
	}
	return safe
}
