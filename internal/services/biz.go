// Package services 实现业务用例层：上传编排、生命周期迁移、签名配信与一览查询。
// 对外依赖（仓储、存储、签名器）以接口注入，便于测试替换。
package services

import (
	"context"
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/txmanager"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"
	"github.com/khosokawa0716/family-album-sub000/internal/models/po"
	"github.com/khosokawa0716/family-album-sub000/internal/models/vo"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	"github.com/google/uuid"
	"github.com/google/wire"
)

// ProviderSet is services providers.
var ProviderSet = wire.NewSet(
	NewPictureUploadService,
	NewPictureLifecycleService,
	NewMediaDeliveryService,
	NewPictureQueryService,
)

// 错误原因常量。HTTP 状态码由 kerrors 携带，原因串用于客户端与日志判别。
const (
	ReasonValidationFailed  = "VALIDATION_FAILED"
	ReasonDecodeFailed      = "DECODE_FAILED"
	ReasonPictureNotFound   = "PICTURE_NOT_FOUND"
	ReasonFileNotFound      = "FILE_NOT_FOUND"
	ReasonSignatureInvalid  = "SIGNATURE_INVALID"
	ReasonStorageFailed     = "STORAGE_FAILED"
	ReasonPersistenceFailed = "PERSISTENCE_FAILED"
)

// PictureRepoContract 抽象写真持久化操作，便于测试。
type PictureRepoContract interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreatePictureInput) (*po.Picture, error)
	FindActiveByID(ctx context.Context, familyID, id int64) (*po.Picture, error)
	FindActiveByFileName(ctx context.Context, column repositories.FileNameColumn, filename string) (*po.Picture, error)
	SoftDelete(ctx context.Context, familyID, id int64) error
	Restore(ctx context.Context, familyID, id int64) error
	List(ctx context.Context, familyID int64, filter repositories.ListFilter) ([]*po.Picture, int64, error)
	ListGroupIDs(ctx context.Context, familyID int64, limit, offset int32) ([]uuid.UUID, int64, error)
	FindByGroupID(ctx context.Context, familyID int64, groupID uuid.UUID) ([]*po.Picture, error)
	FindByGroupIDs(ctx context.Context, familyID int64, groupIDs []uuid.UUID) ([]*po.Picture, error)
}

// CategoryRepoContract 抽象分类归属校验。
type CategoryRepoContract interface {
	FindByID(ctx context.Context, familyID, id int64) (*po.Category, error)
}

// FileStoreContract 抽象本地文件存取。
type FileStoreContract interface {
	WritePhoto(filename string, data []byte) (string, error)
	WriteThumbnail(filename string, data []byte) (string, error)
	PhotoPath(filename string) string
	ThumbnailPath(filename string) string
	Read(path string) ([]byte, error)
	Remove(path string) error
}

// URLSignerContract 抽象签名 URL 的签发与验证。
type URLSignerContract interface {
	SignedURL(filename string, kind urlsigner.EndpointKind, ttl time.Duration) (string, error)
	Verify(filename string, kind urlsigner.EndpointKind, signature string, expires int64) bool
}

// viewSigner 为写真记录签发一对配信 URL，组装读取模型。
type viewSigner struct {
	signer URLSignerContract
	ttl    time.Duration
}

// view 组装附带签名 URL 的 PictureView。
func (v viewSigner) view(p *po.Picture) (vo.PictureView, error) {
	thumbURL, err := v.signer.SignedURL(p.ThumbnailName, urlsigner.KindThumbnails, v.ttl)
	if err != nil {
		return vo.PictureView{}, err
	}
	photoURL, err := v.signer.SignedURL(p.FileName, urlsigner.KindPhotos, v.ttl)
	if err != nil {
		return vo.PictureView{}, err
	}
	return vo.PictureView{Picture: p, ThumbnailURL: thumbURL, PhotoURL: photoURL}, nil
}

// views 批量组装读取模型。
func (v viewSigner) views(pics []*po.Picture) ([]vo.PictureView, error) {
	out := make([]vo.PictureView, 0, len(pics))
	for _, p := range pics {
		pv, err := v.view(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, nil
}
