package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"github.com/uttaradit-pharmacy/edextemp/internal/api"
	"github.com/uttaradit-pharmacy/edextemp/internal/config"
	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/i18n"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/printing"
	"github.com/uttaradit-pharmacy/edextemp/internal/session"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	// Avatars may be 5 MB before base64 inflation.
	requestBodyLimit = 8 * 1024 * 1024
)

type server struct {
	app      *fiber.App
	sessions *session.Manager
	closers  []func() error
}

func (srv *server) close() {
	for index := len(srv.closers) - 1; index >= 0; index-- {
		if err := srv.closers[index](); err != nil {
			logger.Warnf(context.Background(), "release resource: %v", err)
		}
	}
}

func newServeCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), state.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	srv, err := buildServer(sigCtx, cfg)
	if err != nil {
		return err
	}
	defer srv.close()

	go srv.sessions.RunJanitor(sigCtx, cfg.Session.SweepInterval)

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Errorf(shutdownCtx, "server shutdown failed: %v", err)
		}
	}()

	logger.Infof(ctx, "ED-Extemp listening on http://0.0.0.0:%s (db: %s, sessions: %s, tz: %s)",
		cfg.Server.Port, cfg.Database.Driver, cfg.Session.Store, cfg.Location().String())
	if err := srv.app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func buildServer(ctx context.Context, cfg *config.Config) (*server, error) {
	srv := &server{}
	fail := func(err error) (*server, error) {
		srv.close()
		return nil, err
	}

	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return fail(fmt.Errorf("database init failed: %w", err))
	}
	srv.closers = append(srv.closers, func() error { return db.Close(database) })

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	srv.closers = append(srv.closers, closeStore)
	srv.sessions = session.NewManager(store, cfg.Session.IdleTimeout)

	i18nManager, err := i18n.NewManager(cfg.Print.Language)
	if err != nil {
		return fail(fmt.Errorf("i18n init failed: %w", err))
	}

	location := cfg.Location()
	renderer, err := printing.NewRenderer(
		i18nManager,
		printing.NewRemoteImages(cfg.Print.InlineImages, cfg.Print.FetchTimeout),
		printing.Options{
			Language:       cfg.Print.Language,
			Location:       location,
			QRBaseURL:      cfg.Print.QRBaseURL,
			BarcodeBaseURL: cfg.Print.BarcodeBaseURL,
		},
	)
	if err != nil {
		return fail(fmt.Errorf("print templates init failed: %w", err))
	}

	var metrics *api.Metrics
	if cfg.Metrics.Enabled {
		metrics = api.NewMetrics()
	}

	handler, err := api.NewHandler(api.Dependencies{
		Database:     database,
		SecretKey:    cfg.Server.SecretKey,
		Location:     location,
		CookieSecure: cfg.Server.CookieSecure,
		TokenTTL:     cfg.Session.TokenTTL,
		I18n:         i18nManager,
		Sessions:     srv.sessions,
		Renderer:     renderer,
		Metrics:      metrics,
		MetricsPath:  cfg.Metrics.Path,
	})
	if err != nil {
		return fail(fmt.Errorf("handler init failed: %w", err))
	}

	srv.app = newFiberApp(handler, metrics, cfg.IsDevelopment())
	return srv, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return session.NewMemoryStore(), func() error { return nil }, nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("redis init failed: %w", err)
	}
	return session.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Session.IdleTimeout), client.Close, nil
}

func newFiberApp(handler *api.Handler, metrics *api.Metrics, development bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ED-Extemp",
		DisableStartupMessage: true,
		BodyLimit:             requestBodyLimit,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: development}))
	app.Use(requestid.New())
	app.Use(api.RequestContext)
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(logger.L()).Writer(),
	}))
	app.Use(compress.New())
	if metrics != nil {
		app.Use(metrics.Middleware)
	}

	api.RegisterRoutes(app, handler)
	return app
}
