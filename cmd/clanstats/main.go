// Command clanstats exports clan, war and war-execution reports from the
// game API and can serve the exported documents over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/okian/clanstats/internal/adapters/cache"
	"github.com/okian/clanstats/internal/adapters/coc"
	"github.com/okian/clanstats/internal/adapters/http/api"
	"github.com/okian/clanstats/internal/adapters/http/swagger"
	"github.com/okian/clanstats/internal/app"
	"github.com/okian/clanstats/internal/config"
	"github.com/okian/clanstats/pkg/logger"
	"github.com/okian/clanstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	sentryFlush       = 2 * time.Second
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: clanstats [-config file] <command>

commands:
  snapshot    export clan_snapshot.json
  war         export war_active.json
  execution   export war_execution.json
  all         export every report
  serve       serve exported reports, /healthz, /metrics and /api-docs
`

var errUnknownCommand = errors.New("unknown command")

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("clanstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "YAML or JSON config file (defaults to $CLANSTATS_CONFIG)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	command := fs.Arg(0)
	reports, err := reportsFor(command)
	if err != nil && command != "serve" {
		fmt.Fprintf(stderr, "%v: %s\n", err, command)
		fs.Usage()
		return exitUsage
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		// logger isn't available yet
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("clanstats")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if initSentry(ctx, cfg, log) {
		defer sentry.Flush(sentryFlush)
	}

	if command == "serve" {
		err = serve(ctx, cfg, log)
	} else {
		err = export(ctx, cfg, log, reports)
	}
	if err != nil {
		log.Error(ctx, "run failed", logger.String("command", command), logger.Error(err))
		sentry.CaptureException(err)
		return exitError
	}
	return exitOK
}

func reportsFor(command string) ([]string, error) {
	switch command {
	case "snapshot":
		return []string{app.ReportClanSnapshot}, nil
	case "war":
		return []string{app.ReportWarActive}, nil
	case "execution":
		return []string{app.ReportWarExecution}, nil
	case "all":
		return app.Reports, nil
	}
	return nil, errUnknownCommand
}

func initSentry(ctx context.Context, cfg *config.Config, log logger.Logger) bool {
	if cfg.SentryDSN == "" {
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}
			event.Tags["app"] = "clanstats"
			event.Tags["clan"] = cfg.ClanTag
			return event
		},
	}); err != nil {
		log.Warn(ctx, "sentry disabled", logger.Error(err))
		return false
	}
	return true
}

func export(ctx context.Context, cfg *config.Config, log logger.Logger, reports []string) error {
	token, err := coc.ReadToken(cfg.TokenEnvVar)
	if err != nil {
		return err
	}

	store := cache.NewDiskStore(cfg.CacheDir, cache.WithLogger(logger.Named("cache")))
	client, err := coc.New(token,
		coc.WithBaseURL(cfg.APIBaseURL),
		coc.WithTimeout(cfg.RequestTimeout()),
		coc.WithCache(store),
		coc.WithTTL(cfg.CacheTTL()),
		coc.WithSleep(cfg.Sleep()),
		coc.WithRateLimit(cfg.MaxRequestsPerSecond),
		coc.WithWarlogLimit(cfg.WarlogLimit),
		coc.WithLogger(logger.Named("coc")),
	)
	if err != nil {
		return err
	}

	exporter, err := app.New(client, cfg.ClanTag,
		app.WithOutputDir(cfg.OutputDir),
		app.WithIncludeWarlog(cfg.IncludeWarlog),
		app.WithLogger(logger.Named("export")),
	)
	if err != nil {
		return err
	}

	log.Info(ctx, "export started",
		logger.String("clan", cfg.ClanTag),
		logger.String("runId", exporter.RunID()),
		logger.Any("reports", reports))

	err = exporter.Export(ctx, reports...)
	if err == nil {
		metrics.UpdateLastRun(float64(time.Now().Unix()))
	}
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			log.Warn(ctx, "failed to write metrics textfile", logger.Error(werr))
		}
	}
	return err
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	mux := http.NewServeMux()
	api.NewServer(cfg.OutputDir).Register(mux)
	swagger.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("reports", cfg.OutputDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
