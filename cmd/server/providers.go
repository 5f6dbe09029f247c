package main

import (
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/authn"
	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/storage"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"

	"github.com/go-kratos/kratos/v2/log"
)

// provideStore 将配置片段映射为文件存储组件。
func provideStore(cfg loader.StorageConfig, logger log.Logger) (*storage.Store, error) {
	return storage.NewStore(storage.Config{
		PhotosPath:     cfg.PhotosPath,
		ThumbnailsPath: cfg.ThumbnailsPath,
		AutoCreateDirs: cfg.AutoCreateDirs,
	}, logger)
}

// provideSigner 从认证配置构造 URL 签名器。
func provideSigner(cfg loader.AuthConfig) (*urlsigner.Signer, error) {
	return urlsigner.NewSigner(cfg.SecretKey)
}

// provideAuthenticator 从认证配置构造 JWT 认证器。
func provideAuthenticator(cfg loader.AuthConfig) (authn.Authenticator, error) {
	return authn.NewJWTAuthenticator(cfg.SecretKey)
}
