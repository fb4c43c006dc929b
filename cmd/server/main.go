package main

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/sdko-org/graph-proxy/internal/auth"
	"github.com/sdko-org/graph-proxy/internal/cache"
	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/database"
	"github.com/sdko-org/graph-proxy/internal/graph"
	"github.com/sdko-org/graph-proxy/internal/handlers"
	"github.com/sdko-org/graph-proxy/internal/httpserver"
	"github.com/sdko-org/graph-proxy/internal/onesignal"
	"github.com/sdko-org/graph-proxy/internal/sharepoint"
	"github.com/sdko-org/graph-proxy/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var db *gorm.DB
	if cfg.AccessLogEnabled() {
		var err error
		db, err = database.NewPostgresDB(logger, cfg)
		if err != nil {
			logger.WithError(err).Fatal("Database setup failed")
		}
	}

	var store storage.Storage
	if cfg.DownloadCacheEnabled() {
		s3Store := storage.NewS3Storage(logger, cfg, db)
		store = s3Store

		purger := cache.NewPurger(logger, db, s3Store)
		go purger.Start(context.Background())
	}

	tokens := auth.NewProvider(logger, cfg)
	graphClient := graph.NewClient(logger, cfg, tokens.Source(auth.AudienceGraph))
	spClient := sharepoint.NewClient(logger, cfg, tokens.Source(auth.AudienceSharePoint))
	pushClient := onesignal.NewClient(logger, cfg)

	handler := handlers.NewProxyHandler(logger, cfg, graphClient, spClient, pushClient, store)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger, db))
	r.Use(handlers.RateLimitMiddleware(cfg))
	handlers.RegisterRoutes(r, handler)

	if err := httpserver.Run(logger, ":"+cfg.Port, r); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
