package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khosokawa0716/family-album-sub000/internal/models/po"
)

// CategoryRepository 封装 categories 表的访问逻辑。
// 本服务只做上传时的归属校验，不承担分类 CRUD。
type CategoryRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewCategoryRepository 构造 CategoryRepository。
func NewCategoryRepository(db *pgxpool.Pool, logger log.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, log: log.NewHelper(logger)}
}

// FindByID 按 ID 查询家族范围内的有效分类。
//
// 错误处理：
//   - pgx.ErrNoRows → ErrCategoryNotFound（含范围外分类）
//   - 其他数据库错误原样返回
func (r *CategoryRepository) FindByID(ctx context.Context, familyID, id int64) (*po.Category, error) {
	var c po.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, family_id, name, status
		FROM categories
		WHERE id = $1 AND family_id = $2 AND status = 1`,
		id, familyID,
	).Scan(&c.ID, &c.FamilyID, &c.Name, &c.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &c, nil
}
