package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/auth"
	"github.com/gokatarajesh/coupsurcoup/internal/auth/jwt"
	"github.com/gokatarajesh/coupsurcoup/internal/config"
	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
	"github.com/gokatarajesh/coupsurcoup/internal/game"
	"github.com/gokatarajesh/coupsurcoup/internal/game/rewards"
	"github.com/gokatarajesh/coupsurcoup/internal/logging"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
	"github.com/gokatarajesh/coupsurcoup/internal/realtime"
	"github.com/gokatarajesh/coupsurcoup/internal/server"
	ws "github.com/gokatarajesh/coupsurcoup/pkg/http/ws"
)

const prefetchQueueSize = 64

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	games    *game.Service
	prefetch *question.PrefetchWorker
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := sqlcgen.New(pool)

	questionRepo := repository.NewQuestionRepository(queries)
	gameRepo := repository.NewGameRepository(queries, pool)
	playerRepo := repository.NewPlayerRepository(queries)
	coinRepo := repository.NewCoinRepository(queries)

	// Question bank, cache and cache warmer
	questionSvc := question.NewService(
		question.NewPostgresBank(questionRepo),
		question.NewCache(redisClient, cfg.Game.QuestionCacheTTL),
		logger,
		question.ServiceOptions{},
	)
	prefetchQueue := make(chan question.PrefetchRequest, prefetchQueueSize)
	prefetchWorker := question.NewPrefetchWorker(questionSvc, prefetchQueue, logger, 0)

	// Core gameplay services
	gameSvc := game.NewService(
		questionSvc,
		game.NewPostgresStore(gameRepo, playerRepo, coinRepo),
		game.NewStateManager(redisClient, cfg.Game.SnapshotTTL, logger),
		realtime.NewRedisChannel(redisClient, logger),
		game.NewRoomManager(logger),
		game.ServiceOptions{
			Settings:      game.SettingsFromConfig(cfg.Game, cfg.Bot),
			Rewards:       rewards.NewEngine(rewards.FromConfig(cfg.Rewards)),
			MinPlayers:    cfg.Game.MinPlayers,
			MaxPlayers:    cfg.Game.MaxPlayers,
			ChannelPrefix: cfg.Realtime.ChannelPrefix,
			Prefetch:      prefetchQueue,
		},
		logger,
	)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		TTL:    cfg.Security.SessionTTL,
		Issuer: cfg.Name,
	})

	wsHub := ws.NewHub(logger)
	roomHandlers := game.NewHTTPHandlers(gameSvc, tokens, logger)
	gameWSHandler := game.NewHandler(gameSvc, wsHub, tokens, logger)

	apiServer := server.NewHTTPServer(
		cfg,
		logger,
		[]server.Pinger{server.PostgresPinger(pool), server.RedisPinger(redisClient)},
		auth.AuthMiddleware(tokens, logger),
		roomHandlers,
		gameWSHandler,
	)

	return &Application{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		redis:    redisClient,
		http:     apiServer,
		games:    gameSvc,
		prefetch: prefetchWorker,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.prefetch.Run()

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	// Engines stop before the stores they persist to close.
	if err := a.games.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("game service shutdown error")
	}
	a.prefetch.Stop()

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}
