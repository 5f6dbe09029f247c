// Package repositories 实现数据访问层，封装 pictures / categories 表的 pgx 查询。
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/txmanager"
	"github.com/khosokawa0716/family-album-sub000/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// 数据层错误。上层据此映射 404 / 400。
var (
	ErrPictureNotFound  = errors.New("picture not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// querier 抽象 pgxpool.Pool 与 pgx.Tx 的公共查询能力。
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// pictureColumns 是 pictures 表的完整选择列表（与 scanPicture 对应）。
const pictureColumns = `id, family_id, uploaded_by, group_id, title, description, category_id,
	file_name, thumbnail_name, file_size, mime_type, width, height, taken_date,
	status, create_date, update_date, deleted_at`

// PictureRepository 封装 pictures 表的访问逻辑。
type PictureRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewPictureRepository 构造 PictureRepository。
func NewPictureRepository(db *pgxpool.Pool, logger log.Logger) *PictureRepository {
	return &PictureRepository{db: db, log: log.NewHelper(logger)}
}

// q 返回绑定到事务（如有）的查询执行器。
func (r *PictureRepository) q(sess txmanager.Session) querier {
	if sess != nil {
		return sess.Tx()
	}
	return r.db
}

// CreatePictureInput 描述插入一条写真记录所需的字段。
// 同一上传组内的记录共享 GroupID / Title / Description / CategoryID。
type CreatePictureInput struct {
	FamilyID      int64
	UploadedBy    int64
	GroupID       uuid.UUID
	Title         *string
	Description   *string
	CategoryID    *int64
	FileName      string
	ThumbnailName string
	FileSize      int64
	MimeType      string
	Width         int32
	Height        int32
	TakenDate     *time.Time
}

// Create 插入一条写真记录并返回完整实体。
// 上传组的原子性由调用方的事务会话保证：N 条 Create 在同一事务中提交。
func (r *PictureRepository) Create(ctx context.Context, sess txmanager.Session, input CreatePictureInput) (*po.Picture, error) {
	row := r.q(sess).QueryRow(ctx, `
		INSERT INTO pictures (
			family_id, uploaded_by, group_id, title, description, category_id,
			file_name, thumbnail_name, file_size, mime_type, width, height, taken_date,
			status, create_date, update_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING `+pictureColumns,
		input.FamilyID, input.UploadedBy, input.GroupID,
		input.Title, input.Description, input.CategoryID,
		input.FileName, input.ThumbnailName, input.FileSize, input.MimeType,
		input.Width, input.Height, input.TakenDate, po.PictureStatusActive,
	)

	pic, err := scanPicture(row)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert picture failed: group_id=%s file=%s err=%v", input.GroupID, input.FileName, err)
		return nil, fmt.Errorf("insert picture: %w", err)
	}
	return pic, nil
}

// FindActiveByID 按 ID 查询家族范围内的有效写真。
//
// 错误处理：
//   - pgx.ErrNoRows → ErrPictureNotFound（含范围外与已删除，外部不区分）
//   - 其他数据库错误原样返回
func (r *PictureRepository) FindActiveByID(ctx context.Context, familyID, id int64) (*po.Picture, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+pictureColumns+`
		FROM pictures
		WHERE id = $1 AND family_id = $2 AND status = $3`,
		id, familyID, po.PictureStatusActive,
	)
	pic, err := scanPicture(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPictureNotFound
		}
		return nil, fmt.Errorf("find picture by id: %w", err)
	}
	return pic, nil
}

// FindActiveByFileName 按存储文件名查询有效写真。
// kind 对应配信端点：thumbnails 匹配 thumbnail_name，photos 匹配 file_name。
// 配信经由能力 URL 授权，不附带家族范围。
func (r *PictureRepository) FindActiveByFileName(ctx context.Context, column FileNameColumn, filename string) (*po.Picture, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+pictureColumns+`
		FROM pictures
		WHERE `+string(column)+` = $1 AND status = $2`,
		filename, po.PictureStatusActive,
	)
	pic, err := scanPicture(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPictureNotFound
		}
		return nil, fmt.Errorf("find picture by filename: %w", err)
	}
	return pic, nil
}

// FileNameColumn 限定文件名匹配列，防止任意列名进入 SQL。
type FileNameColumn string

// 可用的文件名匹配列。
const (
	ByFileName      FileNameColumn = "file_name"
	ByThumbnailName FileNameColumn = "thumbnail_name"
)

// SoftDelete 执行 ACTIVE → DELETED 状态迁移。
// 状态守卫在 WHERE 子句中：记录不存在、范围外或已删除时影响 0 行 → ErrPictureNotFound。
func (r *PictureRepository) SoftDelete(ctx context.Context, familyID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE pictures
		SET status = $1, deleted_at = now(), update_date = now()
		WHERE id = $2 AND family_id = $3 AND status = $4`,
		po.PictureStatusDeleted, id, familyID, po.PictureStatusActive,
	)
	if err != nil {
		return fmt.Errorf("soft delete picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPictureNotFound
	}
	return nil
}

// Restore 执行 DELETED → ACTIVE 状态迁移。
// 记录不存在、范围外或未删除时影响 0 行 → ErrPictureNotFound。
func (r *PictureRepository) Restore(ctx context.Context, familyID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE pictures
		SET status = $1, deleted_at = NULL, update_date = now()
		WHERE id = $2 AND family_id = $3 AND status = $4`,
		po.PictureStatusActive, id, familyID, po.PictureStatusDeleted,
	)
	if err != nil {
		return fmt.Errorf("restore picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPictureNotFound
	}
	return nil
}

// ListFilter 描述写真一览的过滤与分页条件（均为可选）。
type ListFilter struct {
	CategoryIDs    []int64    // OR 检索
	CategoryAndIDs []int64    // AND 检索（每个 ID 都必须命中）
	Year           *int       // 拍摄年
	Month          *int       // 拍摄月（需与 Year 同时指定，由 Service 层校验）
	StartDate      *time.Time // 拍摄日下界（含）
	EndDate        *time.Time // 拍摄日上界（含，已补齐到当日末尾）
	Limit          int32
	Offset         int32
}

// List 返回家族范围内有效写真的过滤分页结果与总件数。
// 排序：拍摄日降序（无拍摄日的排在后面），同日内按创建时间降序。
func (r *PictureRepository) List(ctx context.Context, familyID int64, filter ListFilter) ([]*po.Picture, int64, error) {
	where, args := buildListWhere(familyID, filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM pictures WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pictures: %w", err)
	}

	query := `SELECT ` + pictureColumns + `
		FROM pictures
		WHERE ` + where + `
		ORDER BY taken_date DESC NULLS LAST, create_date DESC
		LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pictures: %w", err)
	}
	defer rows.Close()

	pics, err := collectPictures(rows)
	if err != nil {
		return nil, 0, err
	}
	return pics, total, nil
}

// buildListWhere 组装一览查询的 WHERE 子句与参数。
func buildListWhere(familyID int64, filter ListFilter) (string, []any) {
	conds := []string{"family_id = $1", "status = $2"}
	args := []any{familyID, po.PictureStatusActive}

	next := func() int { return len(args) + 1 }

	if len(filter.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d)", next()))
		args = append(args, filter.CategoryIDs)
	}
	// AND 检索：每个分类都必须由组内某条记录命中，借助同组子查询实现
	for _, cid := range filter.CategoryAndIDs {
		conds = append(conds, fmt.Sprintf(
			"group_id IN (SELECT group_id FROM pictures WHERE family_id = $1 AND status = $2 AND category_id = $%d)", next()))
		args = append(args, cid)
	}
	if filter.Year != nil {
		conds = append(conds, fmt.Sprintf("EXTRACT(YEAR FROM taken_date) = $%d", next()))
		args = append(args, *filter.Year)
	}
	if filter.Month != nil {
		conds = append(conds, fmt.Sprintf("EXTRACT(MONTH FROM taken_date) = $%d", next()))
		args = append(args, *filter.Month)
	}
	if filter.StartDate != nil {
		conds = append(conds, fmt.Sprintf("taken_date >= $%d", next()))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, fmt.Sprintf("taken_date <= $%d", next()))
		args = append(args, *filter.EndDate)
	}
	return strings.Join(conds, " AND "), args
}

// ListGroupIDs 返回按最新写真排序的分页组 ID 一览与组总数。
func (r *PictureRepository) ListGroupIDs(ctx context.Context, familyID int64, limit, offset int32) ([]uuid.UUID, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT count(DISTINCT group_id) FROM pictures WHERE family_id = $1 AND status = $2`,
		familyID, po.PictureStatusActive,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count picture groups: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT group_id
		FROM pictures
		WHERE family_id = $1 AND status = $2
		GROUP BY group_id
		ORDER BY max(coalesce(taken_date, create_date)) DESC
		LIMIT $3 OFFSET $4`,
		familyID, po.PictureStatusActive, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list picture groups: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate group ids: %w", err)
	}
	return ids, total, nil
}

// FindByGroupID 返回指定组内家族范围的全部有效写真（创建顺）。
// 组为空（不存在、范围外或全部已删除）返回空切片，由 Service 层映射 NotFound。
func (r *PictureRepository) FindByGroupID(ctx context.Context, familyID int64, groupID uuid.UUID) ([]*po.Picture, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pictureColumns+`
		FROM pictures
		WHERE family_id = $1 AND status = $2 AND group_id = $3
		ORDER BY id`,
		familyID, po.PictureStatusActive, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("find pictures by group: %w", err)
	}
	defer rows.Close()
	return collectPictures(rows)
}

// FindByGroupIDs 批量返回多个组的有效写真，保持创建顺。
func (r *PictureRepository) FindByGroupIDs(ctx context.Context, familyID int64, groupIDs []uuid.UUID) ([]*po.Picture, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+pictureColumns+`
		FROM pictures
		WHERE family_id = $1 AND status = $2 AND group_id = ANY($3)
		ORDER BY id`,
		familyID, po.PictureStatusActive, groupIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("find pictures by groups: %w", err)
	}
	defer rows.Close()
	return collectPictures(rows)
}

// scanPicture 将单行扫描为 po.Picture（列顺序与 pictureColumns 一致）。
func scanPicture(row pgx.Row) (*po.Picture, error) {
	var p po.Picture
	err := row.Scan(
		&p.ID, &p.FamilyID, &p.UploadedBy, &p.GroupID, &p.Title, &p.Description, &p.CategoryID,
		&p.FileName, &p.ThumbnailName, &p.FileSize, &p.MimeType, &p.Width, &p.Height, &p.TakenDate,
		&p.Status, &p.CreateDate, &p.UpdateDate, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// collectPictures 扫描多行结果。
func collectPictures(rows pgx.Rows) ([]*po.Picture, error) {
	var pics []*po.Picture
	for rows.Next() {
		pic, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan picture: %w", err)
		}
		pics = append(pics, pic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pictures: %w", err)
	}
	return pics, nil
}
