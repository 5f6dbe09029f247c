package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/imageproc"
	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/txmanager"
	"github.com/khosokawa0716/family-album-sub000/internal/models/po"
	"github.com/khosokawa0716/family-album-sub000/internal/models/vo"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// UploadFile 是一个待上传的文件载荷。
type UploadFile struct {
	FileName    string // 客户端原始文件名（仅用于日志，绝不用于存储路径）
	ContentType string // 客户端声明的 Content-Type（仅作白名单预检）
	Size        int64
	Data        []byte
}

// UploadBatchInput 是一次上传调用的输入：1-5 个文件与组内共享的元数据。
type UploadBatchInput struct {
	FamilyID    int64
	UploadedBy  int64
	Title       *string
	Description *string
	CategoryID  *int64
	Files       []UploadFile
}

// processedFile 聚合单个文件经校验、归一化与缩略图生成后的产物。
type processedFile struct {
	fileName      string
	thumbnailName string
	mimeType      string
	width         int32
	height        int32
	takenDate     *time.Time
	normalized    []byte
	thumbnail     []byte
}

// PictureUploadService 是上传组事务协调器。
//
// 一次调用的原子性保证：
//   - 全部文件对写入成功后，才开启一个数据库事务插入 N 行并一次提交
//   - 文件写入或事务中的任何失败，都会按清单尽力删除本批已写入的全部文件
//   - 失败批次的记录对外永不可见，也不残留孤儿文件
type PictureUploadService struct {
	repo       PictureRepoContract
	categories CategoryRepoContract
	store      FileStoreContract
	txManager  txmanager.Manager
	views      viewSigner

	maxFiles    int
	maxSize     int64
	allowedMIME map[string]struct{}

	log *log.Helper
}

// NewPictureUploadService 创建 PictureUploadService。
func NewPictureUploadService(
	repo PictureRepoContract,
	categories CategoryRepoContract,
	store FileStoreContract,
	txm txmanager.Manager,
	signer URLSignerContract,
	cfg loader.UploadConfig,
	authCfg loader.AuthConfig,
	logger log.Logger,
) *PictureUploadService {
	allowed := make(map[string]struct{}, len(cfg.AllowedImageTypes))
	for _, t := range cfg.AllowedImageTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &PictureUploadService{
		repo:        repo,
		categories:  categories,
		store:       store,
		txManager:   txm,
		views:       viewSigner{signer: signer, ttl: authCfg.SignedURLTTL},
		maxFiles:    cfg.MaxFilesPerUpload,
		maxSize:     cfg.MaxUploadSize,
		allowedMIME: allowed,
		log:         log.NewHelper(logger),
	}
}

// Upload 处理一次上传调用。
//
// 流程：
//  1. 校验（件数 / Content-Type 白名单 / 大小 / 分类归属）——任何写入之前
//  2. 解码校验 + 归一化 + 缩略图生成（纯内存）
//  3. 生成组 ID 与各文件的存储文件名对，写入全部文件并记录清单
//  4. 单一数据库事务插入 N 行并提交
//  5. 签发配信 URL，返回上传回执
//
// 第 3、4 步的任何失败都会触发清单回滚后再上报。
func (s *PictureUploadService) Upload(ctx context.Context, input UploadBatchInput) (*vo.UploadReceipt, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	processed, err := s.process(input.Files)
	if err != nil {
		return nil, err
	}

	groupID := uuid.New()

	// 文件写入清单：回滚时逆序删除其中全部路径
	var manifest []string
	unwind := func() {
		for i := len(manifest) - 1; i >= 0; i-- {
			if rmErr := s.store.Remove(manifest[i]); rmErr != nil {
				s.log.WithContext(ctx).Warnf("rollback cleanup failed: path=%s err=%v", manifest[i], rmErr)
			}
		}
	}

	for _, p := range processed {
		path, writeErr := s.store.WritePhoto(p.fileName, p.normalized)
		if writeErr != nil {
			unwind()
			s.log.WithContext(ctx).Errorf("upload photo write failed: group_id=%s err=%v", groupID, writeErr)
			return nil, kerrors.InternalServer(ReasonStorageFailed, "failed to store uploaded file").WithCause(writeErr)
		}
		manifest = append(manifest, path)

		path, writeErr = s.store.WriteThumbnail(p.thumbnailName, p.thumbnail)
		if writeErr != nil {
			unwind()
			s.log.WithContext(ctx).Errorf("upload thumbnail write failed: group_id=%s err=%v", groupID, writeErr)
			return nil, kerrors.InternalServer(ReasonStorageFailed, "failed to store thumbnail").WithCause(writeErr)
		}
		manifest = append(manifest, path)
	}

	created := make([]*po.Picture, 0, len(processed))
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		for _, p := range processed {
			pic, repoErr := s.repo.Create(txCtx, sess, repositories.CreatePictureInput{
				FamilyID:      input.FamilyID,
				UploadedBy:    input.UploadedBy,
				GroupID:       groupID,
				Title:         input.Title,
				Description:   input.Description,
				CategoryID:    input.CategoryID,
				FileName:      p.fileName,
				ThumbnailName: p.thumbnailName,
				FileSize:      int64(len(p.normalized)),
				MimeType:      p.mimeType,
				Width:         p.width,
				Height:        p.height,
				TakenDate:     p.takenDate,
			})
			if repoErr != nil {
				return repoErr
			}
			created = append(created, pic)
		}
		return nil
	})
	if err != nil {
		unwind()
		s.log.WithContext(ctx).Errorf("upload persist failed: group_id=%s files=%d err=%v", groupID, len(processed), err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to persist pictures").WithCause(err)
	}

	views, err := s.views.views(created)
	if err != nil {
		// 记录已提交；签名失败只是无法返回配信 URL，视为服务端错误
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to sign picture urls").WithCause(err)
	}

	s.log.WithContext(ctx).Infof(
		"Upload: group_id=%s family_id=%d uploaded_by=%d files=%d",
		groupID, input.FamilyID, input.UploadedBy, len(created),
	)
	return &vo.UploadReceipt{GroupID: groupID, Pictures: views}, nil
}

// validate 执行写入前校验；全部失败都发生在任何副作用之前。
func (s *PictureUploadService) validate(ctx context.Context, input UploadBatchInput) error {
	if len(input.Files) == 0 {
		return kerrors.BadRequest(ReasonValidationFailed, "at least one file is required")
	}
	if len(input.Files) > s.maxFiles {
		return kerrors.BadRequest(ReasonValidationFailed,
			fmt.Sprintf("too many files: at most %d files per upload", s.maxFiles))
	}

	for _, f := range input.Files {
		if _, ok := s.allowedMIME[strings.ToLower(f.ContentType)]; !ok {
			return kerrors.BadRequest(ReasonValidationFailed,
				fmt.Sprintf("content type %q is not allowed", f.ContentType))
		}
		if f.Size > s.maxSize || int64(len(f.Data)) > s.maxSize {
			return kerrors.BadRequest(ReasonValidationFailed,
				fmt.Sprintf("file %q is too large: limit is %d bytes", f.FileName, s.maxSize))
		}
		if len(f.Data) == 0 {
			return kerrors.BadRequest(ReasonValidationFailed, fmt.Sprintf("file %q is empty", f.FileName))
		}
	}

	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, input.FamilyID, *input.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrCategoryNotFound) {
				return kerrors.BadRequest(ReasonValidationFailed, "invalid category")
			}
			return kerrors.InternalServer(ReasonPersistenceFailed, "failed to verify category").WithCause(err)
		}
	}
	return nil
}

// process 对每个文件执行解码校验、归一化与缩略图生成，并生成存储文件名对。
// 文件名由服务端随机生成，与客户端文件名无关（防碰撞与路径穿越）。
func (s *PictureUploadService) process(files []UploadFile) ([]processedFile, error) {
	out := make([]processedFile, 0, len(files))
	for _, f := range files {
		decoded, err := imageproc.Decode(f.Data)
		if err != nil {
			return nil, kerrors.BadRequest(ReasonDecodeFailed,
				fmt.Sprintf("file %q is an invalid image", f.FileName))
		}

		img, normalized, err := imageproc.Normalize(decoded)
		if err != nil {
			return nil, kerrors.InternalServer(ReasonStorageFailed, "failed to normalize image").WithCause(err)
		}
		thumb, err := imageproc.Thumbnail(img)
		if err != nil {
			return nil, kerrors.InternalServer(ReasonStorageFailed, "failed to generate thumbnail").WithCause(err)
		}

		name := strings.ReplaceAll(uuid.New().String(), "-", "") + decoded.Format.Ext
		bounds := img.Bounds()
		out = append(out, processedFile{
			fileName:      name,
			thumbnailName: "thumb_" + name,
			mimeType:      decoded.Format.MIME,
			width:         int32(bounds.Dx()),
			height:        int32(bounds.Dy()),
			takenDate:     decoded.TakenAt,
			normalized:    normalized,
			thumbnail:     thumb,
		})
	}
	return out, nil
}
