// Package server 组装 HTTP 传输层：中间件、健康检查与路由挂载。
package server

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/controllers"
	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	cfg loader.ServerConfig,
	pictures *controllers.PictureHandler,
	media *controllers.MediaHandler,
	pool *pgxpool.Pool,
	logger log.Logger,
) *http.Server {
	opts := []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if cfg.Addr != "" {
		opts = append(opts, http.Address(cfg.Addr))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.Timeout(cfg.Timeout))
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))

	srv.Handle("/readyz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			stdhttp.Error(w, "database unavailable", stdhttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(stdhttp.StatusOK)
	}))

	api := srv.Route("/api")
	pictures.Register(api)
	media.Register(api)
	return srv
}
