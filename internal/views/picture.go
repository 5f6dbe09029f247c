// Package views 提供视图对象（VO）与 JSON 响应 DTO 之间的转换辅助函数。
// 负责将 Service 层返回的 VO 渲染为线上 JSON 形状，保持 Controller 层的精简。
package views

import (
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/models/vo"
)

// Picture 是写真记录的 JSON DTO。
type Picture struct {
	ID           int64   `json:"id"`
	FamilyID     int64   `json:"family_id"`
	UploadedBy   int64   `json:"uploaded_by"`
	GroupID      string  `json:"group_id"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CategoryID   *int64  `json:"category_id"`
	FileName     string  `json:"file_name"`
	FileSize     int64   `json:"file_size"`
	MimeType     string  `json:"mime_type"`
	Width        int32   `json:"width"`
	Height       int32   `json:"height"`
	TakenDate    *string `json:"taken_date"`
	Status       int16   `json:"status"`
	CreateDate   string  `json:"create_date"`
	UpdateDate   string  `json:"update_date"`
	ThumbnailURL string  `json:"thumbnail_url"`
	PhotoURL     string  `json:"photo_url"`
}

// UploadResponse 是上传接口的 201 响应体。
type UploadResponse struct {
	GroupID  string    `json:"group_id"`
	Pictures []Picture `json:"pictures"`
}

// ListResponse 是写真一览接口的响应体。
type ListResponse struct {
	Pictures []Picture `json:"pictures"`
	Total    int64     `json:"total"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
	HasMore  bool      `json:"has_more"`
}

// Group 是写真组的 JSON DTO。
type Group struct {
	GroupID  string    `json:"group_id"`
	Pictures []Picture `json:"pictures"`
}

// GroupListResponse 是写真组一览接口的响应体。
type GroupListResponse struct {
	Groups  []Group `json:"groups"`
	Total   int64   `json:"total"`
	Limit   int32   `json:"limit"`
	Offset  int32   `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// MessageResponse 是仅携带提示消息的响应体（恢复接口等）。
type MessageResponse struct {
	Message string `json:"message"`
}

// NewPicture 将 PictureView 转换为 JSON DTO。
func NewPicture(v vo.PictureView) Picture {
	p := v.Picture
	return Picture{
		ID:           p.ID,
		FamilyID:     p.FamilyID,
		UploadedBy:   p.UploadedBy,
		GroupID:      p.GroupID.String(),
		Title:        p.Title,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		FileName:     p.FileName,
		FileSize:     p.FileSize,
		MimeType:     p.MimeType,
		Width:        p.Width,
		Height:       p.Height,
		TakenDate:    formatOptionalTime(p.TakenDate),
		Status:       int16(p.Status),
		CreateDate:   p.CreateDate.Format(time.RFC3339),
		UpdateDate:   p.UpdateDate.Format(time.RFC3339),
		ThumbnailURL: v.ThumbnailURL,
		PhotoURL:     v.PhotoURL,
	}
}

// NewPictures 批量转换写真读取模型。
func NewPictures(views []vo.PictureView) []Picture {
	out := make([]Picture, 0, len(views))
	for _, v := range views {
		out = append(out, NewPicture(v))
	}
	return out
}

// NewUploadResponse 将上传回执转换为 201 响应体。
func NewUploadResponse(receipt *vo.UploadReceipt) *UploadResponse {
	if receipt == nil {
		return &UploadResponse{}
	}
	return &UploadResponse{
		GroupID:  receipt.GroupID.String(),
		Pictures: NewPictures(receipt.Pictures),
	}
}

// NewListResponse 将写真一览转换为响应体。
func NewListResponse(list *vo.PictureList) *ListResponse {
	if list == nil {
		return &ListResponse{Pictures: []Picture{}}
	}
	return &ListResponse{
		Pictures: NewPictures(list.Pictures),
		Total:    list.Total,
		Limit:    list.Limit,
		Offset:   list.Offset,
		HasMore:  list.HasMore,
	}
}

// NewGroup 将写真组转换为 JSON DTO。
func NewGroup(group *vo.PictureGroup) *Group {
	if group == nil {
		return &Group{}
	}
	return &Group{GroupID: group.GroupID.String(), Pictures: NewPictures(group.Pictures)}
}

// NewGroupListResponse 将写真组一览转换为响应体。
func NewGroupListResponse(list *vo.GroupList) *GroupListResponse {
	if list == nil {
		return &GroupListResponse{Groups: []Group{}}
	}
	groups := make([]Group, 0, len(list.Groups))
	for i := range list.Groups {
		groups = append(groups, *NewGroup(&list.Groups[i]))
	}
	return &GroupListResponse{
		Groups:  groups,
		Total:   list.Total,
		Limit:   list.Limit,
		Offset:  list.Offset,
		HasMore: list.HasMore,
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
