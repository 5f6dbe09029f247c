package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/models/vo"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListQuery 携带一览接口的未解析查询参数；解析与校验集中在服务层。
type ListQuery struct {
	Category    string // 逗号分隔的分类 ID，命中任一即可（OR）
	CategoryAnd string // 逗号分隔的分类 ID，要求同组内全部命中（AND）
	Year        string
	Month       string // 需要与 Year 同时指定
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD（含当日 23:59:59）
	Limit       string
	Offset      string
}

// PictureQueryService 提供家族内写真的一览与组查询。
type PictureQueryService struct {
	repo  PictureRepoContract
	views viewSigner
	log   *log.Helper
}

// NewPictureQueryService 创建 PictureQueryService。
func NewPictureQueryService(
	repo PictureRepoContract,
	signer URLSignerContract,
	authCfg loader.AuthConfig,
	logger log.Logger,
) *PictureQueryService {
	return &PictureQueryService{
		repo:  repo,
		views: viewSigner{signer: signer, ttl: authCfg.SignedURLTTL},
		log:   log.NewHelper(logger),
	}
}

// List 返回按过滤条件筛选的 Active 写真一览。
// 排序固定为拍摄时间降序（空值最后）、创建时间降序。
func (s *PictureQueryService) List(ctx context.Context, familyID int64, query ListQuery) (*vo.PictureList, error) {
	filter, err := parseListFilter(query)
	if err != nil {
		return nil, err
	}

	pics, total, err := s.repo.List(ctx, familyID, filter)
	if err != nil {
		s.log.WithContext(ctx).Errorf("List failed: family_id=%d err=%v", familyID, err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to list pictures").WithCause(err)
	}

	views, err := s.views.views(pics)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to sign picture urls").WithCause(err)
	}
	return &vo.PictureList{
		Pictures: views,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
		HasMore:  int64(filter.Offset)+int64(len(views)) < total,
	}, nil
}

// Groups 返回按「组内最新一张」降序排列的上传组一览。
func (s *PictureQueryService) Groups(ctx context.Context, familyID int64, limitRaw, offsetRaw string) (*vo.GroupList, error) {
	limit, offset, err := parsePage(limitRaw, offsetRaw)
	if err != nil {
		return nil, err
	}

	groupIDs, total, err := s.repo.ListGroupIDs(ctx, familyID, limit, offset)
	if err != nil {
		s.log.WithContext(ctx).Errorf("Groups failed: family_id=%d err=%v", familyID, err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to list groups").WithCause(err)
	}

	groups := make([]vo.PictureGroup, 0, len(groupIDs))
	if len(groupIDs) > 0 {
		pics, findErr := s.repo.FindByGroupIDs(ctx, familyID, groupIDs)
		if findErr != nil {
			s.log.WithContext(ctx).Errorf("Groups members failed: family_id=%d err=%v", familyID, findErr)
			return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to load group members").WithCause(findErr)
		}

		byGroup := make(map[uuid.UUID][]vo.PictureView, len(groupIDs))
		latest := make(map[uuid.UUID]time.Time, len(groupIDs))
		for _, p := range pics {
			pv, viewErr := s.views.view(p)
			if viewErr != nil {
				return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to sign picture urls").WithCause(viewErr)
			}
			byGroup[p.GroupID] = append(byGroup[p.GroupID], pv)
			if ts := sortTime(p.TakenDate, p.CreateDate); ts.After(latest[p.GroupID]) {
				latest[p.GroupID] = ts
			}
		}
		// 保持 ListGroupIDs 的排序
		for _, gid := range groupIDs {
			groups = append(groups, vo.PictureGroup{GroupID: gid, Latest: latest[gid], Pictures: byGroup[gid]})
		}
	}

	return &vo.GroupList{
		Groups:  groups,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset)+int64(len(groups)) < total,
	}, nil
}

// GroupDetail 返回指定组的全部 Active 写真；组为空或不存在时返回未找到。
func (s *PictureQueryService) GroupDetail(ctx context.Context, familyID int64, groupIDRaw string) (*vo.PictureGroup, error) {
	groupID, err := uuid.Parse(groupIDRaw)
	if err != nil {
		return nil, kerrors.NotFound(ReasonPictureNotFound, "Group not found")
	}

	pics, err := s.repo.FindByGroupID(ctx, familyID, groupID)
	if err != nil {
		s.log.WithContext(ctx).Errorf("GroupDetail failed: group_id=%s err=%v", groupID, err)
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to load group").WithCause(err)
	}
	if len(pics) == 0 {
		return nil, kerrors.NotFound(ReasonPictureNotFound, "Group not found")
	}

	views, err := s.views.views(pics)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonPersistenceFailed, "failed to sign picture urls").WithCause(err)
	}
	group := &vo.PictureGroup{GroupID: groupID, Pictures: views}
	for _, p := range pics {
		if ts := sortTime(p.TakenDate, p.CreateDate); ts.After(group.Latest) {
			group.Latest = ts
		}
	}
	return group, nil
}

// sortTime 返回组排序键：拍摄时间优先，缺失时回退到创建时间。
func sortTime(taken *time.Time, created time.Time) time.Time {
	if taken != nil {
		return *taken
	}
	return created
}

// parseListFilter 解析查询参数。任何畸形值都报 400，不做静默忽略。
func parseListFilter(q ListQuery) (repositories.ListFilter, error) {
	var f repositories.ListFilter

	var err error
	if f.CategoryIDs, err = parseIDList("category", q.Category); err != nil {
		return f, err
	}
	if f.CategoryAndIDs, err = parseIDList("category_and", q.CategoryAnd); err != nil {
		return f, err
	}

	if q.Year != "" {
		year, convErr := strconv.Atoi(q.Year)
		if convErr != nil || year < 1 {
			return f, kerrors.BadRequest(ReasonValidationFailed, "year must be a positive integer")
		}
		f.Year = &year
	}
	if q.Month != "" {
		if f.Year == nil {
			return f, kerrors.BadRequest(ReasonValidationFailed, "month requires year")
		}
		month, convErr := strconv.Atoi(q.Month)
		if convErr != nil || month < 1 || month > 12 {
			return f, kerrors.BadRequest(ReasonValidationFailed, "month must be between 1 and 12")
		}
		f.Month = &month
	}

	if q.StartDate != "" {
		t, parseErr := time.Parse("2006-01-02", q.StartDate)
		if parseErr != nil {
			return f, kerrors.BadRequest(ReasonValidationFailed, "start_date must be YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, parseErr := time.Parse("2006-01-02", q.EndDate)
		if parseErr != nil {
			return f, kerrors.BadRequest(ReasonValidationFailed, "end_date must be YYYY-MM-DD")
		}
		// 含当日整天
		end := t.Add(24*time.Hour - time.Second)
		f.EndDate = &end
	}

	if f.Limit, f.Offset, err = parsePage(q.Limit, q.Offset); err != nil {
		return f, err
	}
	return f, nil
}

// parseIDList 解析逗号分隔的正整数 ID 串。
func parseIDList(name, raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id < 1 {
			return nil, kerrors.BadRequest(ReasonValidationFailed,
				fmt.Sprintf("%s must be a comma-separated list of positive integers", name))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parsePage 解析分页参数并施加上限。
func parsePage(limitRaw, offsetRaw string) (limit, offset int32, err error) {
	limit = defaultListLimit
	if limitRaw != "" {
		v, convErr := strconv.Atoi(limitRaw)
		if convErr != nil || v < 1 {
			return 0, 0, kerrors.BadRequest(ReasonValidationFailed, "limit must be a positive integer")
		}
		if v > maxListLimit {
			v = maxListLimit
		}
		limit = int32(v)
	}
	if offsetRaw != "" {
		v, convErr := strconv.Atoi(offsetRaw)
		if convErr != nil || v < 0 {
			return 0, 0, kerrors.BadRequest(ReasonValidationFailed, "offset must be a non-negative integer")
		}
		offset = int32(v)
	}
	return limit, offset, nil
}
