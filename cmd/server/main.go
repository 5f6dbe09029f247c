// Package main boots the Kratos HTTP entrypoint for the picture service.
package main

import (
	"context"
	"flag"
	"os"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	loginfra "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/logger"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Version is the version of the compiled software.
	Version string

	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf configs")
}

func newApp(meta loader.ServiceMetadata, logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(meta.InstanceID),
		kratos.Name(meta.Name),
		kratos.Version(meta.Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
		),
	)
}

func main() {
	flag.Parse()

	if Version != "" {
		_ = os.Setenv("SERVICE_VERSION", Version)
	}

	// Load bootstrap configuration (config file + .env + env overrides).
	bundle, err := loader.Build(loader.Params{ConfPath: flagconf})
	if err != nil {
		panic(err)
	}

	// Build the structured logger used by the entire application.
	logger := loginfra.NewLogger(bundle.Service)

	// Assemble all dependencies (pool, repositories, services, handlers) via Wire.
	app, cleanup, err := wireApp(context.Background(), bundle, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// Start the application and block until a stop signal is received.
	if err := app.Run(); err != nil {
		panic(err)
	}
}
