package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/blocksentry/sentry/app/services/monitor/handlers"
	"github.com/blocksentry/sentry/business/core/activity"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/blocksentry/sentry/business/core/report"
	"github.com/blocksentry/sentry/foundation/etherscan"
	"github.com/blocksentry/sentry/foundation/events"
	"github.com/blocksentry/sentry/foundation/gemini"
	"github.com/blocksentry/sentry/foundation/logger"
	"github.com/blocksentry/sentry/foundation/nameservice"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("MONITOR")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// Development keys live in .env files. Values already set in the
	// environment win, and missing files are not an error.
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:40s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:4000"`
			PublicHost      string        `conf:"default:0.0.0.0:3000"`
			CORSOrigin      string        `conf:"default:*"`
		}
		Etherscan struct {
			APIKey  string        `conf:"mask"`
			BaseURL string        `conf:"default:https://api.etherscan.io/api"`
			Timeout time.Duration `conf:"default:10s"`
		}
		Gemini struct {
			APIKey  string        `conf:"mask"`
			BaseURL string        `conf:"default:https://generativelanguage.googleapis.com/v1beta"`
			Model   string        `conf:"default:gemini-1.5-flash"`
			Timeout time.Duration `conf:"default:30s"`
		}
		Monitor struct {
			PollInterval time.Duration `conf:"default:30s"`
			Profile      string        `conf:"default:token"`
			Location     string        `conf:"default:Local"`
		}
		Activity struct {
			Interval time.Duration `conf:"default:3s"`
		}
		NameService struct {
			Folder string
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "ethereum gas price monitor",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "MONITOR"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	if cfg.Etherscan.APIKey == "" {
		log.Infow("startup", "status", "etherscan api key not set, requests will be rate limited")
	}

	loc, err := time.LoadLocation(cfg.Monitor.Location)
	if err != nil {
		return fmt.Errorf("loading location %q: %w", cfg.Monitor.Location, err)
	}

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for well known
	// addresses shown in reports. The names come from the file names in the
	// configured folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account.Hex())
	}

	// =========================================================================
	// Upstream Support

	esc := etherscan.New(etherscan.Config{
		APIKey:  cfg.Etherscan.APIKey,
		BaseURL: cfg.Etherscan.BaseURL,
		Timeout: cfg.Etherscan.Timeout,
	})

	chat := gemini.New(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})

	// =========================================================================
	// Monitor Support

	// The core packages accept a function of this signature to allow the
	// application to log.
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
	}

	// Every monitor state change is pushed to the gas websocket clients and
	// every activity payload to the activity websocket clients.
	gasEvts := events.New()
	activityEvts := events.New()

	mon, err := monitor.New(monitor.Config{
		Source:    esc,
		Interval:  cfg.Monitor.PollInterval,
		Profile:   cfg.Monitor.Profile,
		Location:  loc,
		Publisher: gasEvts,
		EvHandler: ev,
	})
	if err != nil {
		return fmt.Errorf("constructing monitor: %w", err)
	}
	mon.Start()
	defer mon.Stop()

	feed := activity.Run(activityEvts, cfg.Activity.Interval, ev)
	defer feed.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, mon)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:     shutdown,
		Log:          log,
		Origin:       cfg.Web.CORSOrigin,
		Monitor:      mon,
		Report:       report.NewCore(esc, ns),
		Chat:         chat,
		GasEvts:      gasEvts,
		ActivityEvts: activityEvts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Stop producing events before the channels are closed.
		log.Infow("shutdown", "status", "stopping monitor and activity feed")
		mon.Stop()
		feed.Shutdown()

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		gasEvts.Shutdown()
		activityEvts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
