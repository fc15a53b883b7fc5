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

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/config"
	"github.com/Skotchmaster/feedback_web/internal/db"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/handlers"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/middleware"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
	httpserver "github.com/Skotchmaster/feedback_web/internal/transport/http"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.EnvFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides LISTEN_ADDR")

	return cmd
}

// app is a fully wired server plus the resources it must release.
type app struct {
	echo   *echo.Echo
	db     *gorm.DB
	events events.Publisher
	logger zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	a := &app{logger: logger, events: events.Nop{}}

	client := apiclient.NewClient(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
	)

	cookieOpts := session.CookieOptions{Secure: cfg.CookieSecure}
	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionDB:
		gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db = gdb
		dbStore, err := session.NewDBStore(gdb, cookieOpts)
		if err != nil {
			a.close()
			return nil, err
		}
		store = dbStore
	default:
		cookieStore, err := session.NewCookieStore(cfg.SessionSecret, cookieOpts)
		if err != nil {
			return nil, err
		}
		store = cookieStore
	}

	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			a.close()
			return nil, err
		}
		a.events = prod
	} else {
		logger.Info().Msg("KAFKA_BROKERS not set, events are dropped")
	}

	renderer, err := render.New(render.Options{HTMXSrc: cfg.HTMXSrc})
	if err != nil {
		a.close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Renderer = renderer
	e.Debug = cfg.Development()
	e.Pre(ecM.RemoveTrailingSlash())
	e.Use(middleware.Common(logger)...)

	httpserver.Register(e, &httpserver.Deps{
		Handlers: &handlers.Handlers{API: client, Sessions: store, Events: a.events},
		Sessions: store,
		Metrics:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	})

	a.echo = e
	return a, nil
}

func (a *app) close() {
	if err := a.events.Close(); err != nil {
		a.logger.Error().Err(err).Msg("kafka close error")
	}
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Error().Err(err).Msg("db close error")
		}
	} else {
		a.logger.Error().Err(err).Msg("db() error")
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.AppEnv)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.IntoContext(ctx, logger)

	a, err := newApp(ctx, cfg, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("api", cfg.APIBaseURL).Str("sessions", cfg.SessionBackend).Msg("listening")
		if err := a.echo.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("start: %w", err)
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
