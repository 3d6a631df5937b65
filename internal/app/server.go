package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/homebite/orderdesk/internal/auth"
	"github.com/homebite/orderdesk/internal/importer"
	"github.com/homebite/orderdesk/internal/menu"
	"github.com/homebite/orderdesk/internal/observability"
	"github.com/homebite/orderdesk/internal/offers"
	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/cache"
	"github.com/homebite/orderdesk/internal/platform/objectstore"
	"github.com/homebite/orderdesk/internal/reports"
	reporthttp "github.com/homebite/orderdesk/internal/reports/http"
	"github.com/homebite/orderdesk/internal/settings"
	"github.com/homebite/orderdesk/jobs"
)

// Server is the wired API.
type Server struct {
	Handler  http.Handler
	Orders   *orders.Service
	Reports  *reports.Service
	Settings *settings.Service
	Archive  *objectstore.Store
	Metrics  *observability.Metrics

	cfg     *Config
	logger  *slog.Logger
	closers []func()
}

// Close releases every connection opened by Build.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build connects the stores, Redis and the job queue and wires every handler.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	srv := &Server{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			srv.Close()
		}
	}()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		return nil, err
	}
	srv.closers = append(srv.closers, func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	})

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	srv.closers = append(srv.closers, stores.Close)

	queueOpts := cfg.Queue()
	jobClient, err := jobs.NewClient(queueOpts)
	if err != nil {
		return nil, err
	}
	inspector := asynq.NewInspector(queueOpts)
	srv.closers = append(srv.closers, func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	})

	var archive *objectstore.Store
	if cfg.ObjectStore().Enabled() {
		archive, err = objectstore.New(ctx, cfg.ObjectStore())
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("object store not configured; uploads are not archived")
	}

	metrics := observability.NewMetrics()
	srv.Archive, srv.Metrics = archive, metrics
	services := wireServices(cfg, logger, redisClient, stores, jobClient, archive, metrics)
	srv.Orders = services.orders
	srv.Reports = services.reports
	srv.Settings = services.settings

	checks := map[string]HealthCheck{"redis": func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}}
	for name, check := range stores.Checks {
		checks[name] = check
	}

	srv.Handler = NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		Admin:           services.auth.RequireAdmin,
		AuthHandler:     auth.NewHandler(logger, services.auth),
		OrdersHandler:   orders.NewHandler(logger, services.orders),
		ImportHandler:   importer.NewHandler(logger, services.importer, services.orders, cfg.MaxUploadBytes),
		ReportsHandler:  reporthttp.NewHandler(logger, services.reports),
		MenuHandler:     menu.NewHandler(logger, services.menu),
		OffersHandler:   offers.NewHandler(logger, services.offers),
		SettingsHandler: settings.NewHandler(logger, services.settings),
		JobHandler:      jobs.NewHandler(inspector, logger).WithClient(jobClient),
		HealthChecks:    checks,
	})
	ok = true
	return srv, nil
}

type services struct {
	orders   *orders.Service
	importer *importer.Service
	reports  *reports.Service
	settings *settings.Service
	menu     *menu.Service
	offers   *offers.Service
	auth     *auth.Service
}

// wireServices builds the domain services. queue and archive may be nil.
func wireServices(cfg *Config, logger *slog.Logger, redisClient *redis.Client, stores *Stores, queue jobs.TaskEnqueuer, archive *objectstore.Store, metrics *observability.Metrics) services {
	loc := cfg.Location()

	orderService := orders.NewService(
		stores.Orders,
		cache.NewVersioned(redisClient, "orderdesk:orders", cfg.CacheTTL),
		orders.NewValidator(loc),
		logger,
	)
	settingsService := settings.NewService(stores.Docs, logger)
	reportService := reports.NewService(
		orderService,
		settingsService,
		cache.NewVersioned(redisClient, "orderdesk:reports", cfg.CacheTTL),
		logger,
	)

	notifier := jobs.NewNotifier(reportService, queue, logger)
	orderService.SetNotifier(notifier)
	settingsService.SetNotifier(notifier)

	var archiver importer.Archiver
	if archive != nil {
		archiver = archive
	}

	return services{
		orders:   orderService,
		importer: importer.NewService(orderService, archiver, metrics, logger),
		reports:  reportService,
		settings: settingsService,
		menu:     menu.NewService(stores.Docs, logger),
		offers:   offers.NewService(stores.Docs, loc, logger),
		auth: auth.NewService(
			auth.Credentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
			auth.NewSessionStore(redisClient),
			cfg.JWTSecret,
			cfg.SessionTTL,
			logger,
		),
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.AppAddr,
		Handler:           s.Handler,
		ReadTimeout:       s.cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", slog.String("addr", s.cfg.AppAddr), slog.String("store", s.cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
