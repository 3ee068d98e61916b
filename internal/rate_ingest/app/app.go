package app

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/adapter/storage/postgres"
	"github.com/langowen/converter/internal/adapter/storage/redis"
	"github.com/langowen/converter/internal/catalog"
	"github.com/langowen/converter/internal/rate_ingest/adapter/api_client/coinbase"
	"github.com/langowen/converter/internal/rate_ingest/adapter/api_client/exchangerate_api"
	"github.com/langowen/converter/internal/rate_ingest/ingest"
	"github.com/langowen/converter/internal/rate_ingest/ports/http/public"
	"github.com/langowen/converter/internal/rate_ingest/service"
	redisPack "github.com/redis/go-redis/v9"
)

type App struct {
	cfg *config.Config
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Start wires storage, the ingestor and the HTTP port. The returned channel
// closes once the server and the scheduler have stopped after ctx ends.
func (a *App) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	a.migrate()

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	rdStorage := a.initRedis(ctx)

	ingestor := a.initIngestor(pgStorage, rdStorage)
	slog.Info("Ingestor initialized")

	readService := a.initService(pgStorage, rdStorage)
	slog.Info("Service initialized")

	schedulerDone := ingestor.StartScheduler(ctx, a.cfg.Ingest.Interval)

	serverDone := public.StartServer(ctx, readService, ingestor, a.cfg)
	slog.Info("server started", "port", a.cfg.HTTPServer.Port)

	done := make(chan struct{})
	go func() {
		<-serverDone
		<-schedulerDone

		pgStorage.Close()
		if rdStorage != nil {
			_ = rdStorage.Close()
		}

		close(done)
	}()

	return done
}

func (a *App) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *App) migrate() {
	if !a.cfg.Ingest.Migrate {
		return
	}

	if err := postgres.Migrate(a.cfg.Storage.URL("pgx5")); err != nil {
		log.Fatalln("Failed to apply migrations", "error", err)
	}
	slog.Info("Migrations applied")
}

func (a *App) initDatabase(ctx context.Context) *postgres.Storage {
	pgStorage, err := postgres.InitStorage(ctx, a.cfg.Storage.DSN(), a.cfg.Storage.Timeout)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

// initRedis returns nil when no redis host is configured.
func (a *App) initRedis(ctx context.Context) *redis.Storage {
	if a.cfg.Redis.Host == "" {
		slog.Warn("Redis host not configured, update notifications disabled")
		return nil
	}

	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options, a.cfg.Redis.TTL)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}
	slog.Info("Redis client initialized")

	return rdStorage
}

func (a *App) initIngestor(storage *postgres.Storage, rdStorage *redis.Storage) *ingest.Ingestor {
	httpClient := &http.Client{Timeout: a.cfg.Ingest.Timeout}

	var publisher ingest.RedisStorage
	if rdStorage != nil {
		publisher = rdStorage
	}

	return ingest.NewIngestor(
		storage,
		exchangerate_api.NewHTTPClient(httpClient, a.cfg.Ingest.FiatURL),
		coinbase.NewHTTPClient(httpClient, a.cfg.Ingest.CryptoURL),
		publisher,
		ingest.Options{
			Base:           a.cfg.Ingest.Base,
			CryptoCode:     a.cfg.Ingest.CryptoCode,
			CryptoFallback: a.cfg.Ingest.CryptoFallback,
			Timeout:        a.cfg.Ingest.Timeout,
		},
	)
}

func (a *App) initService(storage *postgres.Storage, rdStorage *redis.Storage) *service.Service {
	var cache service.RedisStorage
	if rdStorage != nil {
		cache = rdStorage
	}

	return service.NewService(storage, cache, catalog.New(storage))
}
