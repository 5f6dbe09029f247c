package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store, err := NewStore(Config{
		PhotosPath:     filepath.Join(root, "photos"),
		ThumbnailsPath: filepath.Join(root, "thumbnails"),
		AutoCreateDirs: true,
	}, log.NewStdLogger(io.Discard))
	require.NoError(t, err)
	return store
}

func TestNewStoreRequiresPaths(t *testing.T) {
	logger := log.NewStdLogger(io.Discard)
	_, err := NewStore(Config{PhotosPath: "", ThumbnailsPath: "x"}, logger)
	require.Error(t, err)
	_, err = NewStore(Config{PhotosPath: "x", ThumbnailsPath: ""}, logger)
	require.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	path, err := store.WritePhoto("abc.jpg", []byte("photo-bytes"))
	require.NoError(t, err)
	require.Equal(t, store.PhotoPath("abc.jpg"), path)

	data, err := store.Read(path)
	require.NoError(t, err)
	require.Equal(t, []byte("photo-bytes"), data)

	thumbPath, err := store.WriteThumbnail("thumb_abc.jpg", []byte("thumb-bytes"))
	require.NoError(t, err)
	require.Equal(t, store.ThumbnailPath("thumb_abc.jpg"), thumbPath)

	data, err = store.Read(thumbPath)
	require.NoError(t, err)
	require.Equal(t, []byte("thumb-bytes"), data)
}

func TestWriteLeavesNoTempFilesBehind(t *testing.T) {
	store := newTestStore(t)

	_, err := store.WritePhoto("abc.jpg", []byte("data"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(store.PhotoPath("abc.jpg")))
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.Contains(e.Name(), ".tmp"), "leftover temp file: %s", e.Name())
	}
}

func TestReadMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Read(store.PhotoPath("missing.jpg"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestRemoveToleratesMissing(t *testing.T) {
	store := newTestStore(t)

	path, err := store.WritePhoto("abc.jpg", []byte("data"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(path)) // 二次删除不报错

	_, err = store.Read(path)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestPathsConfineToStorageDirs(t *testing.T) {
	store := newTestStore(t)

	// 路径成分被剥到单段文件名，逃不出存储目录
	base := filepath.Dir(store.PhotoPath("x"))
	require.Equal(t, filepath.Join(base, "passwd"), store.PhotoPath("../../etc/passwd"))
}

func TestSafeFilename(t *testing.T) {
	for _, ok := range []string{"abc.jpg", "thumb_abc.png", "d41d8cd98f00b204.gif"} {
		require.True(t, SafeFilename(ok), "name=%q", ok)
	}
	for _, bad := range []string{"", ".", "..", "a/b.jpg", `a\b.jpg`, "../evil.jpg", "/etc/passwd"} {
		require.False(t, SafeFilename(bad), "name=%q", bad)
	}
}
