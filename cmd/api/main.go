package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/api"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/availability"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/config"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/database"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/jobs"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/logging"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/metrics"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/repository"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/service"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.Open(cfg.Database.Path, database.Options{BusyTimeoutMS: cfg.Database.BusyTimeoutMS}, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	bus := events.NewEventBus()
	bus.OnError(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event", event.Type).Msg("event handler failed")
	})

	svc := buildServices(cfg, db, bus, redisClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	outbox := worker.NewOutboxWorker(db, publisher, redisClient, worker.RetryPolicy{MaxRetries: cfg.Broker.MaxRetries}, logging.Component(logger, "outbox")).
		WithPolling(cfg.Broker.PollInterval, cfg.Broker.BatchSize)
	go outbox.Start(ctx)

	scheduler, err := initScheduler(cfg, db, svc.Reservations, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	httpServer := api.NewHTTPServer(cfg.API, svc, logging.Component(logger, "http"))
	return serve(ctx, httpServer, scheduler, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(client)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initCache picks the projection cache: Redis with an in-memory fallback, memory
// only without Redis, or none when caching is off.
func initCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ProjectionCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	memory := repository.NewMemoryProjectionCache()
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisProjectionCache(redisClient, cfg.Cache.KeyPrefix)
	return repository.NewFailoverProjectionCache(primary, memory, logging.Component(logger, "cache"))
}

func buildServices(cfg *config.Config, db *database.DB, bus *events.EventBus, redisClient *redis.Client, logger *zerolog.Logger) api.Services {
	loc := cfg.App.Location()

	rooms := service.NewRoomService(db, bus, cfg.Reservations.AllowOverrideWhenOccupied, logging.Component(logger, "rooms"))
	customers := service.NewCustomerService(db, bus, logging.Component(logger, "customers"))
	reservations := service.NewReservationService(db, bus, service.ReservationOptions{
		Policy: availability.Policy{
			PendingBlocks:    cfg.Reservations.PendingBlocksAvailability,
			IgnoreRoomStatus: cfg.Reservations.AllowUnbookableRooms,
		},
		CheckoutRoomStatus: models.RoomStatus(cfg.Reservations.CheckoutRoomStatus),
		Location:           loc,
	}, logging.Component(logger, "reservations"))

	queries := service.NewQueryService(db, initCache(cfg, redisClient, logger), cfg.Cache.TTL, loc, logging.Component(logger, "queries"))
	queries.SubscribeInvalidation(bus)

	return api.Services{
		Rooms:        rooms,
		Customers:    customers,
		Reservations: reservations,
		Queries:      queries,
		Store:        db,
	}
}

func newPublisher(cfg *config.Config, logger *zerolog.Logger) (worker.Publisher, error) {
	pubLogger := logging.Component(logger, "publisher")
	if !cfg.Broker.Enabled {
		logger.Info().Msg("broker disabled, outbox events are written to the log")
		return worker.NewLogPublisher(pubLogger), nil
	}
	p, err := worker.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Queue, pubLogger)
	if err != nil {
		return nil, fmt.Errorf("init broker publisher: %w", err)
	}
	return p, nil
}

func initScheduler(cfg *config.Config, db *database.DB, reservations *service.ReservationService, logger *zerolog.Logger) (*jobs.Scheduler, error) {
	jobLogger := logging.Component(logger, "jobs")
	scheduler := jobs.NewScheduler(cfg.App.Location(), jobLogger)

	if cfg.Jobs.NoShowSweep.Enabled {
		if err := scheduler.Register(jobs.NoShowSweepJob, cfg.Jobs.NoShowSweep.Schedule, jobs.NoShowSweep(reservations, jobLogger)); err != nil {
			return nil, err
		}
	}
	if cfg.Backup.Enabled {
		backups := database.NewBackupService(db.Path(), cfg.Backup, logging.Component(logger, "backup"))
		if err := scheduler.Register(jobs.BackupJob, cfg.Backup.Schedule, jobs.Backup(backups)); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, scheduler *jobs.Scheduler, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Strs("jobs", scheduler.Jobs()).Msg("API server started")

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("jobs did not finish before shutdown")
	}

	logger.Info().Msg("API server stopped")
	return serveErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
