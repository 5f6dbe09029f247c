// Package loader 负责从配置文件与环境变量构建强类型配置 Bundle。
package loader

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envConfPath       = "CONF_PATH"
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envSecretKey      = "SECRET_KEY"
	envPhotosPath     = "PHOTOS_STORAGE_PATH"
	envThumbnailsPath = "THUMBNAILS_STORAGE_PATH"
	envMaxUploadSize  = "MAX_UPLOAD_SIZE"
	envAllowedTypes   = "ALLOWED_IMAGE_TYPES"

	defaultConfPath = "configs"
)

var envFileNames = []string{".env.local", ".env"}

// Params 包含构造配置 Bundle 所需的运行时输入参数。
type Params struct {
	ConfPath string // 配置文件路径（可为空，使用默认值）
}

// ServerConfig 描述 HTTP 服务监听配置。
type ServerConfig struct {
	Addr    string        `json:"addr"`
	Timeout time.Duration `json:"timeout"`
}

// DatabaseConfig 描述 PostgreSQL 连接池配置。
type DatabaseConfig struct {
	DSN             string        `json:"dsn"`
	MaxConns        int32         `json:"max_conns"`
	MinConns        int32         `json:"min_conns"`
	MaxConnLifetime time.Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `json:"max_conn_idle_time"`
}

// StorageConfig 描述本地文件存储配置。
type StorageConfig struct {
	PhotosPath     string `json:"photos_path"`
	ThumbnailsPath string `json:"thumbnails_path"`
	AutoCreateDirs bool   `json:"auto_create_dirs"`
}

// UploadConfig 描述上传校验配置。
type UploadConfig struct {
	MaxUploadSize     int64    `json:"max_upload_size"`     // 单文件最大字节数
	MaxFilesPerUpload int      `json:"max_files_per_upload"` // 单次上传文件数上限
	AllowedImageTypes []string `json:"allowed_image_types"`  // 客户端声明 Content-Type 白名单
}

// AuthConfig 描述签名与认证密钥配置。
// 密钥为启动时注入的不可变值，运行期不变更。
type AuthConfig struct {
	SecretKey    string        `json:"secret_key"`
	SignedURLTTL time.Duration `json:"signed_url_ttl"`
}

// ServiceMetadata 保存服务标识信息，供日志组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// Bundle 聚合强类型的配置片段，供下游 Wire 注入使用。
type Bundle struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Auth     AuthConfig
	Service  ServiceMetadata
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口，提供包含上下文的错误信息。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// bootstrap 是配置文件的扫描目标结构。
type bootstrap struct {
	Server struct {
		HTTP struct {
			Addr    string `json:"addr"`
			Timeout string `json:"timeout"`
		} `json:"http"`
	} `json:"server"`
	Data struct {
		Postgres struct {
			DSN             string `json:"dsn"`
			MaxConns        int32  `json:"max_conns"`
			MinConns        int32  `json:"min_conns"`
			MaxConnLifetime string `json:"max_conn_lifetime"`
			MaxConnIdleTime string `json:"max_conn_idle_time"`
		} `json:"postgres"`
	} `json:"data"`
	Storage struct {
		PhotosPath     string `json:"photos_path"`
		ThumbnailsPath string `json:"thumbnails_path"`
		AutoCreateDirs bool   `json:"auto_create_dirs"`
	} `json:"storage"`
	Upload struct {
		MaxUploadSize     int64    `json:"max_upload_size"`
		MaxFilesPerUpload int      `json:"max_files_per_upload"`
		AllowedImageTypes []string `json:"allowed_image_types"`
	} `json:"upload"`
	Auth struct {
		SecretKey    string `json:"secret_key"`
		SignedURLTTL string `json:"signed_url_ttl"`
	} `json:"auth"`
}

// Build 从配置文件构建 Bundle，包含配置对象和服务元信息。
//
// 流程：
//  1. 解析配置路径（应用回退规则）并加载 .env 文件
//  2. 加载并扫描配置文件
//  3. 应用环境变量覆盖（DATABASE_URL、PORT、SECRET_KEY、存储路径等）
//  4. 填充默认值并校验必填项
func Build(params Params) (*Bundle, error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	bc, err := loadBootstrap(confPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(bc)

	bundle, err := toBundle(bc)
	if err != nil {
		return nil, err
	}
	bundle.Service = buildServiceMetadata()
	return bundle, nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// loadEnvFiles 依次加载配置目录同级的 .env.local / .env（存在才加载）。
// 已设置的环境变量不被覆盖。
func loadEnvFiles(confPath string) {
	base := filepath.Dir(filepath.Clean(confPath))
	for _, name := range envFileNames {
		for _, dir := range []string{".", base} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				_ = godotenv.Load(path)
			}
		}
	}
}

// loadBootstrap 从指定路径加载并扫描配置。
func loadBootstrap(confPath string) (*bootstrap, error) {
	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var bc bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	return &bc, nil
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段。
// 敏感信息（DSN、签名密钥）优先从环境变量读取，保持配置文件可提交。
func applyEnvOverrides(bc *bootstrap) {
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		bc.Data.Postgres.DSN = dsn
	}
	if secret := os.Getenv(envSecretKey); secret != "" {
		bc.Auth.SecretKey = secret
	}
	if p := os.Getenv(envPhotosPath); p != "" {
		bc.Storage.PhotosPath = p
	}
	if p := os.Getenv(envThumbnailsPath); p != "" {
		bc.Storage.ThumbnailsPath = p
	}
	if v := os.Getenv(envMaxUploadSize); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			bc.Upload.MaxUploadSize = size
		}
	}
	if v := os.Getenv(envAllowedTypes); v != "" {
		parts := strings.Split(v, ",")
		types := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				types = append(types, t)
			}
		}
		if len(types) > 0 {
			bc.Upload.AllowedImageTypes = types
		}
	}
	if port := os.Getenv(envPort); port != "" {
		host, _, err := net.SplitHostPort(bc.Server.HTTP.Addr)
		if err != nil {
			host = "0.0.0.0"
		}
		bc.Server.HTTP.Addr = net.JoinHostPort(host, port)
	}
}

// toBundle 将扫描结构转换为强类型 Bundle，填充默认值并校验必填项。
func toBundle(bc *bootstrap) (*Bundle, error) {
	b := &Bundle{
		Server: ServerConfig{
			Addr:    bc.Server.HTTP.Addr,
			Timeout: parseDurationOr(bc.Server.HTTP.Timeout, 30*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             bc.Data.Postgres.DSN,
			MaxConns:        bc.Data.Postgres.MaxConns,
			MinConns:        bc.Data.Postgres.MinConns,
			MaxConnLifetime: parseDurationOr(bc.Data.Postgres.MaxConnLifetime, 0),
			MaxConnIdleTime: parseDurationOr(bc.Data.Postgres.MaxConnIdleTime, 0),
		},
		Storage: StorageConfig{
			PhotosPath:     bc.Storage.PhotosPath,
			ThumbnailsPath: bc.Storage.ThumbnailsPath,
			AutoCreateDirs: bc.Storage.AutoCreateDirs,
		},
		Upload: UploadConfig{
			MaxUploadSize:     bc.Upload.MaxUploadSize,
			MaxFilesPerUpload: bc.Upload.MaxFilesPerUpload,
			AllowedImageTypes: bc.Upload.AllowedImageTypes,
		},
		Auth: AuthConfig{
			SecretKey:    bc.Auth.SecretKey,
			SignedURLTTL: parseDurationOr(bc.Auth.SignedURLTTL, 30*time.Minute),
		},
	}

	if b.Server.Addr == "" {
		b.Server.Addr = "0.0.0.0:8000"
	}
	if b.Storage.PhotosPath == "" {
		b.Storage.PhotosPath = "./storage/photos"
	}
	if b.Storage.ThumbnailsPath == "" {
		b.Storage.ThumbnailsPath = "./storage/thumbnails"
	}
	if b.Upload.MaxUploadSize <= 0 {
		b.Upload.MaxUploadSize = 20 * 1024 * 1024 // 20MB
	}
	if b.Upload.MaxFilesPerUpload <= 0 {
		b.Upload.MaxFilesPerUpload = 5
	}
	if len(b.Upload.AllowedImageTypes) == 0 {
		b.Upload.AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}

	if b.Auth.SecretKey == "" {
		return nil, BuildError{Stage: "validate", Err: fmt.Errorf("auth secret key is required (set SECRET_KEY)")}
	}
	return b, nil
}

// buildServiceMetadata 从环境变量推导服务元信息（带默认值）。
func buildServiceMetadata() ServiceMetadata {
	name := os.Getenv(envServiceName)
	if name == "" {
		name = "family-album"
	}
	version := os.Getenv(envServiceVersion)
	if version == "" {
		version = "dev"
	}
	env := os.Getenv(envAppEnv)
	if env == "" {
		env = "development"
	}
	host, _ := os.Hostname()
	return ServiceMetadata{Name: name, Version: version, Environment: env, InstanceID: host}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
