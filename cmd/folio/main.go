// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/config"
	"github.com/olegiv/folio/internal/generator"
	"github.com/olegiv/folio/internal/geoip"
	"github.com/olegiv/folio/internal/handler"
	"github.com/olegiv/folio/internal/imaging"
	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/legacy"
	"github.com/olegiv/folio/internal/logging"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/scheduler"
	"github.com/olegiv/folio/internal/session"
	"github.com/olegiv/folio/internal/site"
	"github.com/olegiv/folio/internal/snapshot"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/version"
	"github.com/olegiv/folio/internal/visit"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Scheduled job names.
const (
	jobAutoSnapshot = "auto-snapshot"
	jobPruneEvents  = "prune-events"
	jobGeoIPReload  = "geoip-reload"
	jobLoginCleanup = "login-cleanup"
)

type scheduledJob struct {
	name, spec string
	job        scheduler.Job
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "folio - portfolio site document service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "       %s hash-password [password]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SESSION_SECRET        Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH               SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_STORE                 sqlite|mysql|redis|memory (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ENV                   development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ADMIN_PASSWORD_HASH   argon2id or bcrypt hash of the admin password\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_OPENAI_API_KEY        Enables the chat widget and demo generator\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("folio %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if flag.Arg(0) == "hash-password" {
		if err := hashPassword(flag.Args()[1:], os.Stdin, os.Stdout); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// hashPassword prints the argon2id hash for FOLIO_ADMIN_PASSWORD_HASH. The
// password is taken from args or, when absent, from the first line of in.
func hashPassword(args []string, in io.Reader, out io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The SQLite database always holds sessions and the event log.
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer closeDB(db, "sqlite")

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	queries := store.New(db)

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, queries))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	docStore, closeStore, err := openStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	var legacyStore legacy.Store = legacy.Nop{}
	if cfg.LegacyDir != "" {
		legacyStore = legacy.NewDirStore(cfg.LegacyDir)
	}

	ctx := context.Background()
	loader := site.NewLoader(docStore, legacyStore, logger, cfg.VisitBaseline)
	repo := loader.Open(ctx, legacyStore)
	if repo.Provisional() {
		slog.Warn("durable store unreadable at startup; serving defaults until it can be read",
			"category", model.EventCategoryStorage)
	}
	snapshots := snapshot.NewManager()

	sessionManager := session.New(db, cfg.IsDevelopment())
	visits := visit.NewCounter(docStore, session.NewVisitMarker(sessionManager), cfg.VisitBaseline)

	gate, err := auth.NewGate(cfg.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("admin password hash: %w", err)
	}
	if gate.ParityMode() {
		slog.Warn("FOLIO_ADMIN_PASSWORD_HASH is not set; the admin password is read from the site document",
			"category", model.EventCategoryAuth)
	}
	logins := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	gen := generator.New(generator.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.GeneratorTimeout,
	}, logger)
	if !cfg.GeneratorEnabled() {
		slog.Info("content generator disabled", "reason", "FOLIO_OPENAI_API_KEY not set")
	}

	imgOpts := imaging.DefaultOptions()
	imgOpts.MaxWidth = cfg.MaxImageWidth
	imgOpts.MaxHeight = cfg.MaxImageWidth
	imgOpts.MaxInputBytes = cfg.MaxImageBytes
	images := imaging.NewProcessor(imgOpts)

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP database unavailable", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	sched := scheduler.New(logger)
	jobs := []scheduledJob{
		{jobAutoSnapshot, config.JobSchedule(cfg.AutoSnapshotSchedule), scheduler.NewAutoSnapshot(repo, snapshots, logger).Run},
		{jobPruneEvents, config.JobSchedule(cfg.PruneEventsSchedule), scheduler.PruneEvents(queries, cfg.EventRetention(), logger)},
		{jobLoginCleanup, "@every 10m", func(context.Context) error { logins.Cleanup(); return nil }},
	}
	if cfg.GeoIPEnabled() {
		jobs = append(jobs, scheduledJob{jobGeoIPReload, config.JobSchedule(cfg.GeoIPReloadSchedule), scheduler.Reload(geo)})
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.spec, j.job); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	h := handler.New(handler.Deps{
		Repo:             repo,
		Loader:           loader,
		Store:            docStore,
		Snapshots:        snapshots,
		Visits:           visits,
		Sessions:         sessionManager,
		Gate:             gate,
		Logins:           logins,
		Generator:        gen,
		Images:           images,
		GeoIP:            geo,
		Events:           queries,
		Jobs:             sched,
		Logger:           logger,
		Version:          versionInfo,
		GeneratorTimeout: cfg.GeneratorTimeout,
	})

	router := handler.NewRouter(h, handler.RouterConfig{
		IsDev:          cfg.IsDevelopment(),
		CSRFKey:        []byte(cfg.SessionSecret)[:config.MinSessionSecretLength],
		TrustedOrigins: cfg.TrustedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.GeneratorTimeout + 30*time.Second, // chat and demo wait on the generator
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env,
			"store", cfg.Store, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Edits whose save failed get a last chance before exit.
	if flushed, err := repo.Flush(shutdownCtx); err != nil {
		slog.Error("final save of site document failed", "category", model.EventCategoryStorage, "error", err)
	} else if flushed {
		slog.Info("pending site document changes saved")
	}

	slog.Info("server stopped")
	return nil
}

// openStore creates and opens the durable document store. The returned
// function closes the store and any database opened for it.
func openStore(cfg *config.Config, sqliteDB *sql.DB) (kv.Store, func(), error) {
	db := sqliteDB
	closeExtra := func() {}
	if cfg.Store == kv.BackendMySQL {
		mysqlDB, err := store.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to mysql: %w", err)
		}
		db = mysqlDB
		closeExtra = func() { closeDB(mysqlDB, "mysql") }
	}

	st, err := kv.New(kv.Config{
		Backend:       cfg.Store,
		DB:            db,
		RedisURL:      cfg.RedisURL,
		Prefix:        cfg.RedisPrefix,
		Partition:     cfg.Partition,
		MaxValueBytes: cfg.MaxDocumentBytes,
	})
	if err != nil {
		closeExtra()
		return nil, nil, fmt.Errorf("creating %s store: %w", cfg.Store, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Open(ctx); err != nil {
		// The service still starts: the loader falls back to the legacy
		// store or the defaults and saves report a warning.
		slog.Error("opening document store failed", "category", model.EventCategoryStorage,
			"backend", cfg.Store, "error", err)
	}
	slog.Info("document store ready", "backend", cfg.Store, "partition", cfg.Partition)

	return st, func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing document store", "error", err)
		}
		closeExtra()
	}, nil
}

func closeDB(db *sql.DB, name string) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database connection", "db", name, "error", err)
	}
}
