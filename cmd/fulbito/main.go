package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ozzus/fulbito/internal/app/httpapp"
	"github.com/ozzus/fulbito/internal/application/service"
	"github.com/ozzus/fulbito/internal/config"
	"github.com/ozzus/fulbito/internal/domain/balance"
	"github.com/ozzus/fulbito/internal/infrastructures/auth"
	"github.com/ozzus/fulbito/internal/infrastructures/db/postgres/migrations"
	postgres "github.com/ozzus/fulbito/internal/infrastructures/db/postgres/repo"
	cacheredis "github.com/ozzus/fulbito/internal/infrastructures/db/redis"
	"github.com/ozzus/fulbito/internal/infrastructures/db/tracing"
	httptransport "github.com/ozzus/fulbito/internal/transport/http"
	"github.com/ozzus/fulbito/internal/transport/http/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := tracing.InitTracer("fulbito", cfg.Env, cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	log.Info("fulbito starting", zap.String("env", cfg.Env), zap.String("http_addr", cfg.HTTP.Addr()))

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.New(startCtx, cfg.DB.DatabaseURL())
	cancelStart()
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.MigrateOnStart {
		n, err := migrations.Apply(db.Pool(), cfg.DB.MigrationsTable, migrations.Up, 0)
		if err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("migrations applied", zap.Int("count", n))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}()

	clubCache := cacheredis.NewClubCache(redisClient)
	tokens := cacheredis.NewTokenRepository(redisClient)
	issuer := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var rnd balance.RandomSource
	if cfg.Teams.Seed != 0 {
		rnd = service.NewSeededSource(cfg.Teams.Seed)
		log.Info("team generation seeded", zap.Uint64("seed", cfg.Teams.Seed))
	}

	playerService := service.NewPlayerService(log, db, clubCache, cfg.Cache.PlayersTTL)
	matchService := service.NewMatchService(log, db, clubCache, cfg.Cache.MatchesTTL)
	teamService := service.NewTeamService(log, playerService, matchService, rnd)
	statsService := service.NewStatsService(log, playerService, matchService)
	authService := service.NewAuthService(log, db, tokens, issuer, cfg.Auth.BcryptCost)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	timeout := cfg.HTTP.RequestTimeout
	router := httptransport.NewRouter(httptransport.Deps{
		Log:      log,
		Auth:     authService,
		Players:  handlers.NewPlayerHandler(log, playerService, timeout),
		Matches:  handlers.NewMatchHandler(log, matchService, timeout),
		Teams:    handlers.NewTeamHandler(log, teamService, timeout),
		Stats:    handlers.NewStatsHandler(log, statsService, timeout),
		Accounts: handlers.NewAuthHandler(log, authService, timeout),
		Upload:   handlers.NewUploadHandler(log, cfg.HTTP.MaxUploadBytes),
		Metrics:  httptransport.NewMetrics(registry),
		Gatherer: registry,
		Health: func(ctx context.Context) error {
			if err := db.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	app := httpapp.New(log, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(shutdownCtx); err != nil {
			log.Error("http shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}
}

// setupLogger writes JSON to stderr and, when a file is configured, to a
// rotated log file as well.
func setupLogger(cfg config.LogConfig) *zap.Logger {
	level := zap.NewAtomicLevelAt(parseLogLevel(cfg.Level))

	if strings.TrimSpace(cfg.File) == "" {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = level

		log, err := zcfg.Build()
		if err != nil {
			panic(err)
		}
		return log
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(encoder, zapcore.AddSync(rotated), level),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
