// Package storage 负责本地文件存储的初始化与读写封装。
// 包括：目录自动创建、临时文件写入 + 原子改名、按端点类型定位文件。
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
)

// ErrFileNotFound 表示目标文件在磁盘上不存在。
var ErrFileNotFound = errors.New("file not found on storage")

// Config 描述存储根路径配置。
type Config struct {
	PhotosPath     string // 原图保存目录
	ThumbnailsPath string // 缩略图保存目录
	AutoCreateDirs bool   // 启动时自动创建目录
}

// Store 封装写真与缩略图的本地文件存取。
//
// 写入采用「临时文件 + 原子改名」：并发读取方不会观察到写了一半的文件，
// 清理路径上残留的只可能是 .tmp 临时文件。
type Store struct {
	photosDir     string
	thumbnailsDir string
	log           *log.Helper
}

// NewStore 创建 Store 并按配置确保目录存在。
//
// 返回：
//   - *Store: 可用的存储实例
//   - error: 目录创建失败时返回错误
func NewStore(cfg Config, logger log.Logger) (*Store, error) {
	helper := log.NewHelper(logger)

	if cfg.PhotosPath == "" || cfg.ThumbnailsPath == "" {
		return nil, errors.New("storage: photos and thumbnails paths are required")
	}

	s := &Store{
		photosDir:     cfg.PhotosPath,
		thumbnailsDir: cfg.ThumbnailsPath,
		log:           helper,
	}

	if cfg.AutoCreateDirs {
		for _, dir := range []string{s.photosDir, s.thumbnailsDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage: create directory %s: %w", dir, err)
			}
			helper.Infof("ensured storage directory exists: %s", dir)
		}
	}
	return s, nil
}

// PhotoPath 返回原图文件的绝对存储路径。
func (s *Store) PhotoPath(filename string) string {
	return filepath.Join(s.photosDir, filepath.Base(filename))
}

// ThumbnailPath 返回缩略图文件的绝对存储路径。
func (s *Store) ThumbnailPath(filename string) string {
	return filepath.Join(s.thumbnailsDir, filepath.Base(filename))
}

// WritePhoto 将原图字节写入存储，返回最终路径。
func (s *Store) WritePhoto(filename string, data []byte) (string, error) {
	return s.write(s.PhotoPath(filename), data)
}

// WriteThumbnail 将缩略图字节写入存储，返回最终路径。
func (s *Store) WriteThumbnail(filename string, data []byte) (string, error) {
	return s.write(s.ThumbnailPath(filename), data)
}

// write 先写入同目录下的临时文件，再原子改名到最终路径。
// 任何一步失败都会清掉临时文件，不在最终路径留下半成品。
func (s *Store) write(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("storage: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("storage: rename into place %s: %w", path, err)
	}
	return path, nil
}

// Read 读取指定路径的文件字节。
// 文件不存在映射为 ErrFileNotFound，读取失败原样返回（上层区分 404/500）。
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Remove 尽力删除指定路径的文件；文件不存在不视为错误。
// 用于上传失败时回滚清单中已写入的文件。
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

// SafeFilename 判断文件名是否为不含路径成分的单段名。
// 存储文件名由服务端生成；请求侧出现路径分隔符即视为非法。
func SafeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
