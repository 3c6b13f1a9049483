// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package main is the entry point for the NGO portal server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/cache"
	"github.com/olegiv/ngo-portal/internal/config"
	"github.com/olegiv/ngo-portal/internal/handler"
	"github.com/olegiv/ngo-portal/internal/imaging"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/richtext"
	"github.com/olegiv/ngo-portal/internal/scheduler"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/store"
	"github.com/olegiv/ngo-portal/internal/version"
	"github.com/olegiv/ngo-portal/web"
)

const (
	shutdownTimeout    = 30 * time.Second
	requestTimeout     = 30 * time.Second
	staticMaxAge       = 7 * 24 * time.Hour
	submitRatePerSec   = 0.2
	submitBurst        = 5
	eventRetentionCron = "@daily"
	cacheWarmupCron    = "*/15 * * * *"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.BoolVar(showVersion, "v", false, "Show version information and exit (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message and exit")
	flag.BoolVar(showHelp, "h", false, "Show help message and exit (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "NGO Portal - public site and admin back-office\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_API_BASE_URL          Backend REST API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_SESSION_SECRET        Session encryption key, 32+ bytes (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_API_TIMEOUT           Backend request timeout (default: 15s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_DB_PATH               SQLite database path (default: ./data/ngo.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_SERVER_HOST           Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_ENV                   Environment: development, production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_LOG_LEVEL             Log level: debug, info, warn, error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_SITE_NAME             Organisation name shown on every page\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_SITE_URL              Public base URL used in sitemap.xml\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_PAYMENT_KEY_ID        Payment gateway public key (enables donations)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_EMAIL_SERVICE_ID      Email widget service id\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_EMAIL_TEMPLATE_ID     Email widget template id\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_EMAIL_PUBLIC_KEY      Email widget public key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_REDIS_URL             Redis URL for a shared response cache\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_CACHE_TTL             Public response cache TTL in seconds (default: 0, off)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NGO_EVENT_RETENTION_DAYS  Days of event log to keep (default: 30)\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("ngoportal %s\n", version.Get().String())
		os.Exit(0)
	}
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logLevel slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	slog.Info("starting ngo portal",
		"version", version.Get().Version,
		"env", cfg.Env,
		"api", cfg.APIBaseURL,
	)

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	// From here on warnings and errors also land in the event log.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	isDev := cfg.IsDevelopment()

	var appCache cache.Cache
	if cfg.CacheEnabled() {
		appCache = cache.New(cache.Config{
			RedisURL:   cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
			MaxSize:    cfg.CacheMaxSize,
		})
		defer func() {
			if err := appCache.Close(); err != nil {
				slog.Error("error closing cache", "error", err)
			}
		}()
	}

	api := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger),
	)
	var backendOpts []backend.Option
	if appCache != nil {
		backendOpts = append(backendOpts, backend.WithCache(appCache, time.Duration(cfg.CacheTTL)*time.Second))
	}
	b := backend.New(api, backendOpts...)

	sm := session.New(db, isDev)
	sessions := session.NewStore(sm, b)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          isDev,
		Widgets: render.Widgets{
			PaymentKeyID:     cfg.PaymentKeyID,
			PaymentScriptURL: cfg.PaymentScriptURL,
			EmailServiceID:   cfg.EmailServiceID,
			EmailTemplateID:  cfg.EmailTemplateID,
			EmailPublicKey:   cfg.EmailPublicKey,
			EmailScriptURL:   cfg.EmailScriptURL,
		},
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	sched := scheduler.New(logger)
	if err := sched.Add(scheduler.JobEventRetention, "Delete old event log entries", eventRetentionCron,
		scheduler.EventRetention(store.New(db), cfg.EventRetentionDays, logger)); err != nil {
		return fmt.Errorf("scheduling %s: %w", scheduler.JobEventRetention, err)
	}
	if appCache != nil {
		if err := sched.Add(scheduler.JobCacheWarmup, "Refill cached public collections", cacheWarmupCron,
			scheduler.CacheWarmup(b)); err != nil {
			return fmt.Errorf("scheduling %s: %w", scheduler.JobCacheWarmup, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	rt := richtext.New()
	images := imaging.NewProcessor()

	frontendHandler := handler.NewFrontendHandler(renderer, b, rt)
	formsHandler := handler.NewFormsHandler(renderer, b, cfg.PaymentsEnabled())
	authHandler := handler.NewAuthHandler(renderer, sessions, b, loginProtection)
	eventsHandler := handler.NewEventsHandler(db, renderer)
	adminHandler := handler.NewAdminHandler(renderer, sessions, b, eventsHandler, sched)
	blogsHandler := handler.NewBlogsHandler(renderer, sessions, b, rt)
	programsHandler := handler.NewProgramsHandler(renderer, sessions, b)
	galleryHandler := handler.NewGalleryHandler(renderer, sessions, b, images)
	boardHandler := handler.NewBoardHandler(renderer, sessions, b)
	submissionsHandler := handler.NewSubmissionsHandler(renderer, sessions, b)
	donationsHandler := handler.NewDonationsHandler(renderer, sessions, b)
	schedulerHandler := handler.NewSchedulerHandler(renderer, sched)
	cacheHandler := handler.NewCacheHandler(renderer, appCache, b)

	var cachePinger handler.Pinger
	if rc, ok := appCache.(*cache.RedisCache); ok {
		cachePinger = rc
	}
	seoHandler := handler.NewSEOHandler(b, cfg.SiteURL, isDev)
	healthHandler := handler.NewHealthHandler(db, sessions, b, cachePinger, version.Get().Version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev, cfg.ThirdPartyOrigins()...)))
	r.Use(middleware.RequestPath)
	r.Use(sm.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), isDev, cfg.ServerPort)))
	r.Use(sessions.Resolve)
	r.Use(middleware.SiteName(cfg.SiteName))
	r.Use(middleware.LoadMember(sessions))

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}

	handler.MountRoutes(r, handler.Handlers{
		Frontend:    frontendHandler,
		Forms:       formsHandler,
		Auth:        authHandler,
		Admin:       adminHandler,
		Blogs:       blogsHandler,
		Programs:    programsHandler,
		Gallery:     galleryHandler,
		Board:       boardHandler,
		Submissions: submissionsHandler,
		Donations:   donationsHandler,
		Events:      eventsHandler,
		Scheduler:   schedulerHandler,
		Cache:       cacheHandler,
		SEO:         seoHandler,
		Health:      healthHandler,
	}, handler.RouteConfig{
		Sessions:        sessions,
		LoginProtection: loginProtection,
		Static: middleware.StaticCache(staticMaxAge)(
			http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS)))),
		SubmitRate:  submitRatePerSec,
		SubmitBurst: submitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
