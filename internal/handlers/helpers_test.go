package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/graph"
	"github.com/sdko-org/graph-proxy/internal/storage"
	"github.com/sirupsen/logrus"
)

var errNotStubbed = errors.New("not stubbed")

type fakeGraph struct {
	listChildren func(ctx context.Context) ([]graph.ItemSummary, error)
	getItem      func(ctx context.Context, itemID string) (*graph.Item, error)
	openDownload func(ctx context.Context, downloadURL string) (*http.Response, error)
	listPages    func(ctx context.Context) ([]graph.PageSummary, error)
}

func (f *fakeGraph) ListChildren(ctx context.Context) ([]graph.ItemSummary, error) {
	if f.listChildren == nil {
		return nil, errNotStubbed
	}
	return f.listChildren(ctx)
}

func (f *fakeGraph) GetItem(ctx context.Context, itemID string) (*graph.Item, error) {
	if f.getItem == nil {
		return nil, errNotStubbed
	}
	return f.getItem(ctx, itemID)
}

func (f *fakeGraph) OpenDownload(ctx context.Context, downloadURL string) (*http.Response, error) {
	if f.openDownload == nil {
		return nil, errNotStubbed
	}
	return f.openDownload(ctx, downloadURL)
}

func (f *fakeGraph) ListPages(ctx context.Context) ([]graph.PageSummary, error) {
	if f.listPages == nil {
		return nil, errNotStubbed
	}
	return f.listPages(ctx)
}

type fakePages struct {
	getFile func(ctx context.Context, serverRelativeURL string) ([]byte, error)
}

func (f *fakePages) GetFileByServerRelativePath(ctx context.Context, serverRelativeURL string) ([]byte, error) {
	if f.getFile == nil {
		return nil, errNotStubbed
	}
	return f.getFile(ctx, serverRelativeURL)
}

type fakePush struct {
	notify func(ctx context.Context, heading, content string) error
	calls  int
}

func (f *fakePush) Notify(ctx context.Context, heading, content string) error {
	f.calls++
	if f.notify == nil {
		return nil
	}
	return f.notify(ctx, heading, content)
}

func testConfig() *config.Config {
	return &config.Config{
		SPHost:                "contoso.sharepoint.com",
		SPSitePath:            "/sites/intranet",
		DownloadCacheMaxBytes: 8 << 20,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, g GraphAPI, p PageFetcher, push Pusher, store storage.Storage) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := NewProxyHandler(logger, cfg, g, p, push, store)
	r := mux.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func doRequest(r *mux.Router, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
