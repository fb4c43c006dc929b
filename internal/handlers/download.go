package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sdko-org/graph-proxy/internal/storage"
	"github.com/sirupsen/logrus"
)

// HandleDownload streams the bytes of a drive item. Metadata is fetched
// first to resolve the pre-authenticated download URL; items without one
// (folders, some packages) yield 404. Small files pass through the optional
// S3 cache keyed by item id and eTag.
func (h *ProxyHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("id")
	if itemID == "" {
		http.Error(w, "Missing required parameter: id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	log := h.log.WithFields(logrus.Fields{
		"operation": "download",
		"item_id":   itemID,
	})

	item, err := h.graph.GetItem(ctx, itemID)
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}

	if item.DownloadURL == "" {
		log.Warn("Item has no download URL")
		http.Error(w, "No downloadable content for item", http.StatusNotFound)
		return
	}

	var cacheKey string
	if h.storage != nil && item.ETag != "" {
		cacheKey = fmt.Sprintf("downloads/%s/%s", itemID, safeFilename(item.ETag))
		if obj, err := h.storage.Get(ctx, cacheKey); err == nil {
			log.WithField("source", "s3").Info("Serving download from cache")
			serveObject(w, obj)
			return
		}
	}

	resp, err := h.graph.OpenDownload(ctx, item.DownloadURL)
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = item.MimeType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		disposition = fmt.Sprintf(`attachment; filename="%s"`, safeFilename(item.Name))
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)

	if cacheKey != "" && item.Size > 0 && item.Size <= h.cfg.DownloadCacheMaxBytes {
		h.serveAndCache(w, resp.Body, item.ID, item.ETag, cacheKey, contentType, item.Name, log)
		return
	}

	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	log.WithField("source", "graph").Info("Streaming download from upstream")
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.WithError(err).Warn("Download stream aborted")
	}
}

func serveObject(w http.ResponseWriter, obj *storage.Object) {
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, safeFilename(obj.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Content)
}

// serveAndCache buffers a small download, serves it, then stores it in the
// cache off the request path.
func (h *ProxyHandler) serveAndCache(w http.ResponseWriter, body io.Reader, itemID, eTag, cacheKey, contentType, filename string, log *logrus.Entry) {
	content, err := io.ReadAll(io.LimitReader(body, h.cfg.DownloadCacheMaxBytes+1))
	if err != nil {
		log.WithError(err).Error("Reading download body failed")
		http.Error(w, "Download failed", http.StatusBadGateway)
		return
	}

	if int64(len(content)) > h.cfg.DownloadCacheMaxBytes {
		// Upstream size metadata lied; too big to cache after all.
		w.Write(content)
		io.Copy(w, body)
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)

	obj := &storage.Object{Content: content, ContentType: contentType, Filename: filename}
	ttl := h.cfg.DownloadCacheTTL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.storage.Put(ctx, cacheKey, obj, itemID, eTag, ttl); err != nil {
			log.WithError(err).Warn("Failed to cache download")
			return
		}
		log.WithField("source", "s3").Info("Stored download in cache")
	}()
}
