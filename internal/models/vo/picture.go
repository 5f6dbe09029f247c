// Package vo 定义面向读取的视图对象（View Objects），由 Service 层组装、views 层序列化。
package vo

import (
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/models/po"

	"github.com/google/uuid"
)

// PictureView 是附带签名 URL 的写真读取模型。
type PictureView struct {
	Picture      *po.Picture
	ThumbnailURL string // 签名后的缩略图 URL（短时效）
	PhotoURL     string // 签名后的原图 URL（短时效）
}

// UploadReceipt 是一次上传调用的结果：组 ID 与组内全部写真。
type UploadReceipt struct {
	GroupID  uuid.UUID
	Pictures []PictureView
}

// PictureGroup 是按 group_id 聚合的写真组。
type PictureGroup struct {
	GroupID  uuid.UUID
	Latest   time.Time // 组内最新写真的排序键（taken_date 优先，缺失时 create_date）
	Pictures []PictureView
}

// PictureList 是分页后的写真一览。
type PictureList struct {
	Pictures []PictureView
	Total    int64
	Limit    int32
	Offset   int32
	HasMore  bool
}

// GroupList 是分页后的写真组一览。
type GroupList struct {
	Groups  []PictureGroup
	Total   int64
	Limit   int32
	Offset  int32
	HasMore bool
}
