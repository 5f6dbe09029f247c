package services

import (
	"context"
	"errors"

	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// PictureLifecycleService 管理写真的软删除与恢复。
//
// 状态迁移守卫内嵌在仓储的 UPDATE 语句中：并发下同一迁移只有一方生效，
// 落败方得到 0 行更新并按「未找到」处理。
type PictureLifecycleService struct {
	repo PictureRepoContract
	log  *log.Helper
}

// NewPictureLifecycleService 创建 PictureLifecycleService。
func NewPictureLifecycleService(repo PictureRepoContract, logger log.Logger) *PictureLifecycleService {
	return &PictureLifecycleService{repo: repo, log: log.NewHelper(logger)}
}

// SoftDelete 将 Active 写真迁移为 Deleted。文件保留在磁盘上，仅记录不可见。
// 对象不存在、属于其他家族、或已删除时同样返回未找到，不泄露状态差异。
func (s *PictureLifecycleService) SoftDelete(ctx context.Context, familyID, id int64) error {
	if err := s.repo.SoftDelete(ctx, familyID, id); err != nil {
		if errors.Is(err, repositories.ErrPictureNotFound) {
			return kerrors.NotFound(ReasonPictureNotFound, "Picture not found")
		}
		s.log.WithContext(ctx).Errorf("SoftDelete failed: id=%d err=%v", id, err)
		return kerrors.InternalServer(ReasonPersistenceFailed, "failed to delete picture").WithCause(err)
	}
	s.log.WithContext(ctx).Infof("SoftDelete: id=%d family_id=%d", id, familyID)
	return nil
}

// Restore 将 Deleted 写真迁移回 Active。
// 对象不存在或本就处于 Active 时返回未找到。
func (s *PictureLifecycleService) Restore(ctx context.Context, familyID, id int64) error {
	if err := s.repo.Restore(ctx, familyID, id); err != nil {
		if errors.Is(err, repositories.ErrPictureNotFound) {
			return kerrors.NotFound(ReasonPictureNotFound, "Picture not found or already restored")
		}
		s.log.WithContext(ctx).Errorf("Restore failed: id=%d err=%v", id, err)
		return kerrors.InternalServer(ReasonPersistenceFailed, "failed to restore picture").WithCause(err)
	}
	s.log.WithContext(ctx).Infof("Restore: id=%d family_id=%d", id, familyID)
	return nil
}
