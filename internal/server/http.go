package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/config"
	"github.com/gokatarajesh/coupsurcoup/internal/logging"
)

// WSUpgrader handles WebSocket upgrades. Session tokens, not cookies,
// authenticate sockets, so any origin may connect.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Routes mounts a group of handlers on the API mux.
type Routes interface {
	Register(mux *http.ServeMux)
}

// Pinger is a dependency checked by /v1/ping.
type Pinger struct {
	Name string
	Ping func(ctx context.Context) error
}

// PostgresPinger checks the pool.
func PostgresPinger(pool *pgxpool.Pool) Pinger {
	return Pinger{Name: "postgres", Ping: pool.Ping}
}

// RedisPinger checks the redis client.
func RedisPinger(client *redis.Client) Pinger {
	return Pinger{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// NewHTTPServer wires base routes (health, metrics, ping) and the game
// routes. middleware wraps the whole mux and may be nil.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pingers []Pinger, middleware func(http.Handler) http.Handler, routes ...Routes) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(logger, pingers, middleware, routes...),
	}
}

// NewHandler builds the API handler without binding it to an address.
func NewHandler(logger zerolog.Logger, pingers []Pinger, middleware func(http.Handler) http.Handler, routes ...Routes) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pingers); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	for _, r := range routes {
		r.Register(mux)
	}

	if middleware == nil {
		return mux
	}
	return middleware(mux)
}

func pingDependencies(ctx context.Context, pingers []Pinger) error {
	logger := logging.FromContext(ctx)
	for _, p := range pingers {
		if err := p.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("dependency", p.Name).Msg("dependency unreachable")
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}
