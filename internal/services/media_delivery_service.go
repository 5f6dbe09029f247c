package services

import (
	"context"
	"errors"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/storage"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// Media 是一次配信的载荷与响应头素材。
type Media struct {
	Data        []byte
	ContentType string
	FileName    string
	Kind        urlsigner.EndpointKind
}

// MediaDeliveryService 校验签名 URL 并读取文件字节流。
//
// 校验顺序刻意保持「签名在前、存在性在后」：签名不合法时不触碰数据库，
// 未认证请求无法用响应差异探测文件名是否存在。
type MediaDeliveryService struct {
	repo  PictureRepoContract
	store FileStoreContract
	views viewSigner
	log   *log.Helper
}

// NewMediaDeliveryService 创建 MediaDeliveryService。
func NewMediaDeliveryService(
	repo PictureRepoContract,
	store FileStoreContract,
	signer URLSignerContract,
	authCfg loader.AuthConfig,
	logger log.Logger,
) *MediaDeliveryService {
	return &MediaDeliveryService{
		repo:  repo,
		store: store,
		views: viewSigner{signer: signer, ttl: authCfg.SignedURLTTL},
		log:   log.NewHelper(logger),
	}
}

// Fetch 处理一次签名 URL 配信。
//
// 流程：
//  1. 文件名安全校验（路径穿越按未找到处理，不提示存在性）
//  2. HMAC 签名与有效期校验——失败一律 403，不区分原因
//  3. 按文件名列查 Active 记录（thumbnails 查 thumbnail_name，photos 查 file_name）
//  4. 从磁盘读取字节流
func (s *MediaDeliveryService) Fetch(ctx context.Context, kind urlsigner.EndpointKind, filename, signature string, expires int64) (*Media, error) {
	if !storage.SafeFilename(filename) {
		return nil, kerrors.NotFound(ReasonPictureNotFound, "Picture not found")
	}

	if !s.views.signer.Verify(filename, kind, signature, expires) {
		return nil, kerrors.Forbidden(ReasonSignatureInvalid, "Invalid or expired signature")
	}

	column := repositories.ByFileName
	path := s.store.PhotoPath(filename)
	if kind == urlsigner.KindThumbnails {
		column = repositories.ByThumbnailName
		path = s.store.ThumbnailPath(filename)
	}

	pic, err := s.repo.FindActiveByFileName(ctx, column, filename)
	if err != nil {
		if errors.Is(err, repositories.ErrPictureNotFound) {
			return nil, kerrors.NotFound(ReasonPictureNotFound, "Picture not found")
		}
		s.log.WithContext(ctx).Errorf("Fetch lookup failed: kind=%s filename=%s err=%v", kind, filename, err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to look up picture").WithCause(err)
	}

	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			// 记录存在但文件缺失：存储与数据库漂移，按文件未找到上报
			s.log.WithContext(ctx).Warnf("Fetch file missing: kind=%s filename=%s", kind, filename)
			return nil, kerrors.NotFound(ReasonFileNotFound, "File not found")
		}
		s.log.WithContext(ctx).Errorf("Fetch read failed: kind=%s filename=%s err=%v", kind, filename, err)
		return nil, kerrors.InternalServer(ReasonStorageFailed, "Failed to read file")
	}

	contentType := pic.MimeType
	if kind == urlsigner.KindThumbnails {
		contentType = "image/jpeg" // 缩略图一律以 JPEG 存储
	}
	return &Media{Data: data, ContentType: contentType, FileName: filename, Kind: kind}, nil
}

// Download 通过写真 ID 取得原图字节流（认证路由，无需签名）。
func (s *MediaDeliveryService) Download(ctx context.Context, familyID, id int64) (*Media, error) {
	pic, err := s.repo.FindActiveByID(ctx, familyID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPictureNotFound) {
			return nil, kerrors.NotFound(ReasonPictureNotFound, "Picture not found")
		}
		s.log.WithContext(ctx).Errorf("Download lookup failed: id=%d err=%v", id, err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to look up picture").WithCause(err)
	}

	data, err := s.store.Read(s.store.PhotoPath(pic.FileName))
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, kerrors.NotFound(ReasonFileNotFound, "File not found")
		}
		s.log.WithContext(ctx).Errorf("Download read failed: id=%d err=%v", id, err)
		return nil, kerrors.InternalServer(ReasonStorageFailed, "Failed to read file")
	}
	return &Media{Data: data, ContentType: pic.MimeType, FileName: pic.FileName, Kind: urlsigner.KindPhotos}, nil
}

// CacheControl 返回配信响应应携带的 Cache-Control 值。
// 缩略图可被共享缓存保存一天；原图仅限私有缓存一小时。
func (m *Media) CacheControl() string {
	if m.Kind == urlsigner.KindThumbnails {
		return "public, max-age=86400"
	}
	return "private, max-age=3600"
}
