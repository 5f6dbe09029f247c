// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// PictureStatus 表示写真记录的生命周期状态（软删除モデル）。
type PictureStatus int16

// 写真状态常量定义
const (
	PictureStatusDeleted PictureStatus = 0 // 软删除：deleted_at 非空
	PictureStatusActive  PictureStatus = 1 // 有效：deleted_at 为空
)

// Picture 表示 pictures 表的数据库实体。
// 同一次上传产生的 N 条记录共享同一 group_id，构成一个原子可见的组。
type Picture struct {
	ID            int64         `db:"id"`             // 主键（自增）
	FamilyID      int64         `db:"family_id"`      // 家族范围（租户分区）
	UploadedBy    int64         `db:"uploaded_by"`    // 上传者用户 ID
	GroupID       uuid.UUID     `db:"group_id"`       // 上传组 ID（同一次调用共享）
	Title         *string       `db:"title"`          // 标题（可选，组内共享）
	Description   *string       `db:"description"`    // 描述（可选，组内共享）
	CategoryID    *int64        `db:"category_id"`    // 分类 ID（可选，家族范围内校验）
	FileName      string        `db:"file_name"`      // 原图存储文件名（服务端生成）
	ThumbnailName string        `db:"thumbnail_name"` // 缩略图存储文件名（thumb_ 前缀）
	FileSize      int64         `db:"file_size"`      // 归一化后原图字节数
	MimeType      string        `db:"mime_type"`      // 规范化 MIME（由解码格式推导，非客户端声明）
	Width         int32         `db:"width"`          // 方向校正后的像素宽度
	Height        int32         `db:"height"`         // 方向校正后的像素高度
	TakenDate     *time.Time    `db:"taken_date"`     // EXIF 拍摄时间（缺失或非法时为空）
	Status        PictureStatus `db:"status"`         // 生命周期状态
	CreateDate    time.Time     `db:"create_date"`    // 记录创建时间
	UpdateDate    time.Time     `db:"update_date"`    // 最近更新时间
	DeletedAt     *time.Time    `db:"deleted_at"`     // 软删除时间（status=0 时非空）
}

// IsActive 判断记录是否处于有效状态。
func (p *Picture) IsActive() bool {
	return p.Status == PictureStatusActive
}

// Category 表示 categories 表的数据库实体。
// 仅用于上传时校验 category_id 归属；分类自身的 CRUD 不在本服务范围内。
type Category struct {
	ID       int64  `db:"id"`
	FamilyID int64  `db:"family_id"`
	Name     string `db:"name"`
	Status   int16  `db:"status"`
}
