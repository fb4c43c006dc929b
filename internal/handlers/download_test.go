package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sdko-org/graph-proxy/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func downloadResponse(contentType, body string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		Header:        header,
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}
}

func TestHandleDownload_MissingID(t *testing.T) {
	r := newTestRouter(t, testConfig(), &fakeGraph{}, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodGet, "/public/download")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "id")
}

func TestHandleDownload_NoDownloadURL(t *testing.T) {
	g := &fakeGraph{
		getItem: func(_ context.Context, itemID string) (*graph.Item, error) {
			return &graph.Item{ID: itemID, Name: "Docs"}, nil
		},
	}
	r := newTestRouter(t, testConfig(), g, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodGet, "/public/download?id=folder-1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDownload_StreamsBytes(t *testing.T) {
	g := &fakeGraph{
		getItem: func(_ context.Context, itemID string) (*graph.Item, error) {
			return &graph.Item{
				ID:          itemID,
				Name:        "notes.txt",
				Size:        11,
				MimeType:    "text/plain",
				DownloadURL: "https://download.example/abc",
			}, nil
		},
		openDownload: func(_ context.Context, downloadURL string) (*http.Response, error) {
			require.Equal(t, "https://download.example/abc", downloadURL)
			return downloadResponse("text/plain", "hello world"), nil
		},
	}
	r := newTestRouter(t, testConfig(), g, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodGet, "/public/download?id=item-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notes.txt"`, rec.Header().Get("Content-Disposition"))
}

func TestHandleDownload_KeepsUpstreamDisposition(t *testing.T) {
	g := &fakeGraph{
		getItem: func(_ context.Context, itemID string) (*graph.Item, error) {
			return &graph.Item{ID: itemID, Name: "x.bin", DownloadURL: "https://download.example/x"}, nil
		},
		openDownload: func(_ context.Context, _ string) (*http.Response, error) {
			resp := downloadResponse("application/octet-stream", "bytes")
			resp.Header.Set("Content-Disposition", `attachment; filename="upstream-name.bin"`)
			return resp, nil
		},
	}
	r := newTestRouter(t, testConfig(), g, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodGet, "/public/download?id=item-2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="upstream-name.bin"`, rec.Header().Get("Content-Disposition"))
}

func TestHandleDownload_DefaultsContentType(t *testing.T) {
	g := &fakeGraph{
		getItem: func(_ context.Context, itemID string) (*graph.Item, error) {
			return &graph.Item{ID: itemID, Name: "blob", DownloadURL: "https://download.example/b"}, nil
		},
		openDownload: func(_ context.Context, _ string) (*http.Response, error) {
			return downloadResponse("", "data"), nil
		},
	}
	r := newTestRouter(t, testConfig(), g, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodGet, "/public/download?id=item-3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}
