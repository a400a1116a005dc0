package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/config"
	"MiniStoreConsole/internal/console"
	"MiniStoreConsole/internal/session"
	"MiniStoreConsole/pkg/kit"
)

const (
	service      = "console"
	checkTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "ministore-console",
		Usage: "point-of-sale and admin console for the MiniStore backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the console HTTP host",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:   "check",
				Usage:  "validate configuration and probe the backend",
				Action: check,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "listen port (overrides CONSOLE_PORT)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "backend-url", Usage: "retail backend base URL"},
		&cli.DurationFlag{Name: "search-debounce", Usage: "search debounce delay"},
	}
}

// loadConfig reads the environment and applies any flags set on c.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	changed := false
	if c.IsSet("port") {
		cfg.Port = c.String("port")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("backend-url") {
		cfg.Backend = config.Backend{URL: c.String("backend-url")}.WithDefaults()
		changed = true
	}
	if c.IsSet("search-debounce") {
		cfg.SearchDebounce = c.Duration("search-debounce")
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	anon := backend.New(cfg.Backend.Endpoints(),
		backend.WithLogger(log.Named("backend")),
		backend.WithTimeout(cfg.HTTPTimeout),
	)

	spaces := console.NewRegistry(anon, console.DeskOptions{
		Debounce:        cfg.SearchDebounce,
		NotificationTTL: cfg.NotificationTTL,
		Metrics:         console.NewMetrics(reg),
		Log:             log,
	})

	h := console.NewHandler(console.Deps{
		Backend:      anon,
		Spaces:       spaces,
		Tokens:       session.NewTokenMaker(cfg.SessionSecret),
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		SignInLimit:  cfg.SignInLimit,
		SignInWindow: cfg.SignInLimitWindow,
	}, console.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	log.Info("console starting",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.Backend.URL),
		zap.Duration("search_debounce", cfg.SearchDebounce),
	)

	g, gctx := errgroup.WithContext(c.Context)
	g.Go(func() error {
		spaces.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return kit.RunHTTPServer(gctx, ":"+cfg.Port, h, log)
	})

	if err := g.Wait(); err != nil {
		log.Error("console stopped", zap.Error(err))
		return err
	}
	return nil
}

func check(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(c.Context, checkTimeout)
	defer cancel()

	if err := backend.New(cfg.Backend.Endpoints(), backend.WithLogger(log)).Ping(ctx); err != nil {
		log.Error("backend not reachable", zap.String("backend", cfg.Backend.URL), zap.Error(err))
		return err
	}

	log.Info("configuration ok", zap.String("backend", cfg.Backend.URL))
	return nil
}
