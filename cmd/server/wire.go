//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/khosokawa0716/family-album-sub000/internal/controllers"
	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/database"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/storage"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/txmanager"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"
	"github.com/khosokawa0716/family-album-sub000/internal/server"
	"github.com/khosokawa0716/family-album-sub000/internal/services"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(context.Context, *loader.Bundle, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		wire.FieldsOf(new(*loader.Bundle), "Server", "Database", "Storage", "Upload", "Auth", "Service"),
		database.NewPgxPool,
		txmanager.NewManager,
		provideStore,
		provideSigner,
		provideAuthenticator,
		repositories.NewPictureRepository,
		repositories.NewCategoryRepository,
		wire.Bind(new(services.PictureRepoContract), new(*repositories.PictureRepository)),
		wire.Bind(new(services.CategoryRepoContract), new(*repositories.CategoryRepository)),
		wire.Bind(new(services.FileStoreContract), new(*storage.Store)),
		wire.Bind(new(services.URLSignerContract), new(*urlsigner.Signer)),
		services.ProviderSet,
		controllers.ProviderSet,
		server.ProviderSet,
		newApp,
	))
}
