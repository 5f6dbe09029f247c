package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const minimalConfig = `
server:
  http:
    addr: 127.0.0.1:9000
    timeout: 45s
data:
  postgres:
    dsn: postgres://file-user@localhost/db
    max_conns: 8
upload:
  max_upload_size: 1048576
  allowed_image_types:
    - image/jpeg
auth:
  signed_url_ttl: 15m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func TestBuildFromFileWithDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	confPath := writeConfig(t, minimalConfig)

	bundle, err := Build(Params{ConfPath: confPath})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", bundle.Server.Addr)
	require.Equal(t, 45*time.Second, bundle.Server.Timeout)
	require.Equal(t, "postgres://file-user@localhost/db", bundle.Database.DSN)
	require.Equal(t, int32(8), bundle.Database.MaxConns)
	require.Equal(t, int64(1048576), bundle.Upload.MaxUploadSize)
	require.Equal(t, []string{"image/jpeg"}, bundle.Upload.AllowedImageTypes)
	require.Equal(t, 15*time.Minute, bundle.Auth.SignedURLTTL)
	require.Equal(t, "unit-test-secret", bundle.Auth.SecretKey)

	// 未配置项得到默认值
	require.Equal(t, 5, bundle.Upload.MaxFilesPerUpload)
	require.Equal(t, "./storage/photos", bundle.Storage.PhotosPath)
	require.Equal(t, "./storage/thumbnails", bundle.Storage.ThumbnailsPath)
}

func TestBuildEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	t.Setenv("DATABASE_URL", "postgres://env-user@localhost/envdb")
	t.Setenv("PORT", "8123")
	t.Setenv("PHOTOS_STORAGE_PATH", "/data/photos")
	t.Setenv("THUMBNAILS_STORAGE_PATH", "/data/thumbnails")
	t.Setenv("MAX_UPLOAD_SIZE", "2097152")
	t.Setenv("ALLOWED_IMAGE_TYPES", "image/png, image/gif")
	confPath := writeConfig(t, minimalConfig)

	bundle, err := Build(Params{ConfPath: confPath})
	require.NoError(t, err)

	require.Equal(t, "postgres://env-user@localhost/envdb", bundle.Database.DSN)
	require.Equal(t, "127.0.0.1:8123", bundle.Server.Addr) // 主机保留，端口覆盖
	require.Equal(t, "/data/photos", bundle.Storage.PhotosPath)
	require.Equal(t, "/data/thumbnails", bundle.Storage.ThumbnailsPath)
	require.Equal(t, int64(2097152), bundle.Upload.MaxUploadSize)
	require.Equal(t, []string{"image/png", "image/gif"}, bundle.Upload.AllowedImageTypes)
}

func TestBuildRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	confPath := writeConfig(t, minimalConfig)

	_, err := Build(Params{ConfPath: confPath})
	require.Error(t, err)

	var be BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "validate", be.Stage)
}

func TestBuildMissingConfigPath(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")

	_, err := Build(Params{ConfPath: filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)

	var be BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "load", be.Stage)
}

func TestResolveConfPathPrecedence(t *testing.T) {
	t.Setenv("CONF_PATH", "/from/env")
	require.Equal(t, "/explicit", ResolveConfPath("/explicit"))
	require.Equal(t, "/from/env", ResolveConfPath(""))

	t.Setenv("CONF_PATH", "")
	require.Equal(t, defaultConfPath, ResolveConfPath(""))
}
