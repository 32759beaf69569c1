package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-tripline/internal/config"
	"backend-tripline/internal/db"
	"backend-tripline/internal/logging"
	"backend-tripline/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	connectMongo    func(config.Config) (*mongo.Client, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, Backends, <-chan os.Signal, ListenFunc) error
}

// Backends are the connections handed to the server. Any of them may be nil.
type Backends struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	Mongo    *mongo.Client
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		connectMongo:    db.ConnectMongo,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	slog.SetDefault(logging.New(cfg.LogLevel, os.Stdout))

	var backends Backends
	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		slog.Error("postgres connection failed", slog.String("error", err.Error()))
	}
	backends.Postgres = pg
	backends.Redis = deps.connectRedis(cfg)

	if cfg.LegStore == config.LegStoreMongo {
		mc, err := deps.connectMongo(cfg)
		if err != nil {
			slog.Error("mongo connection failed", slog.String("error", err.Error()))
		}
		backends.Mongo = mc
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, backends, signals, nil); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, b Backends, signals <-chan os.Signal, listen ListenFunc) error {
	srv, err := server.NewServer(cfg, b.Postgres, b.Redis, b.Mongo)
	if err != nil {
		return err
	}

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	srv.Stream.Close()
	if b.Postgres != nil {
		b.Postgres.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.Mongo != nil {
		_ = b.Mongo.Disconnect(shutdownCtx)
	}
	slog.Info("server stopped")
	return nil
}
