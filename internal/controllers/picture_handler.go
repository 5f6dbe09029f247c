package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"strconv"
	"strings"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/services"
	"github.com/khosokawa0716/family-album-sub000/internal/views"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// PictureHandler 实现写真的上传、一览、生命周期与认证下载接口。
type PictureHandler struct {
	*BaseHandler

	uploads   *services.PictureUploadService
	lifecycle *services.PictureLifecycleService
	queries   *services.PictureQueryService
	delivery  *services.MediaDeliveryService

	maxUploadSize int64
	maxFiles      int
	log           *log.Helper
}

// NewPictureHandler 构造 PictureHandler。
func NewPictureHandler(
	base *BaseHandler,
	uploads *services.PictureUploadService,
	lifecycle *services.PictureLifecycleService,
	queries *services.PictureQueryService,
	delivery *services.MediaDeliveryService,
	cfg loader.UploadConfig,
	logger log.Logger,
) *PictureHandler {
	return &PictureHandler{
		BaseHandler:   base,
		uploads:       uploads,
		lifecycle:     lifecycle,
		queries:       queries,
		delivery:      delivery,
		maxUploadSize: cfg.MaxUploadSize,
		maxFiles:      cfg.MaxFilesPerUpload,
		log:           log.NewHelper(logger),
	}
}

// Register 挂载认证路由。
func (h *PictureHandler) Register(r *khttp.Router) {
	r.POST("/pictures", h.Upload)
	r.GET("/pictures", h.List)
	r.GET("/pictures/groups", h.Groups)
	r.GET("/pictures/groups/{group_id}", h.GroupDetail)
	r.GET("/pictures/{id}/download", h.Download)
	r.DELETE("/pictures/{id}", h.Delete)
	r.PATCH("/pictures/{id}/restore", h.Restore)
}

// Upload 处理 multipart 上传：1-5 个 `files` 部件（兼容旧客户端的 `file`）与
// 组内共享的 title / description / category_id。成功时返回 201 与上传回执。
func (h *PictureHandler) Upload(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}

	req := ctx.Request()
	// 请求体总量上限：逐文件上限 × 最大件数，留出表单字段与分隔符的余量
	req.Body = stdhttp.MaxBytesReader(nil, req.Body, h.maxUploadSize*int64(h.maxFiles)+1<<20)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return kerrors.BadRequest(services.ReasonValidationFailed, "invalid multipart request")
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	headers := req.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = req.MultipartForm.File["file"]
	}
	files, err := h.readUploadFiles(headers)
	if err != nil {
		return err
	}

	input := services.UploadBatchInput{
		FamilyID:    identity.FamilyID,
		UploadedBy:  identity.UserID,
		Title:       optionalFormValue(req.MultipartForm, "title"),
		Description: optionalFormValue(req.MultipartForm, "description"),
		Files:       files,
	}
	if raw := optionalFormValue(req.MultipartForm, "category_id"); raw != nil {
		id, convErr := strconv.ParseInt(*raw, 10, 64)
		if convErr != nil || id < 1 {
			return kerrors.BadRequest(services.ReasonValidationFailed, "category_id must be a positive integer")
		}
		input.CategoryID = &id
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()

	receipt, err := h.uploads.Upload(reqCtx, input)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusCreated, views.NewUploadResponse(receipt))
}

// List 返回过滤分页后的写真一览。
func (h *PictureHandler) List(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}

	q := ctx.Query()
	query := services.ListQuery{
		Category:    q.Get("category"),
		CategoryAnd: q.Get("category_and"),
		Year:        q.Get("year"),
		Month:       q.Get("month"),
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		Limit:       q.Get("limit"),
		Offset:      q.Get("offset"),
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	list, err := h.queries.List(reqCtx, identity.FamilyID, query)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, views.NewListResponse(list))
}

// Groups 返回按最新写真降序排列的上传组一览。
func (h *PictureHandler) Groups(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	list, err := h.queries.Groups(reqCtx, identity.FamilyID, ctx.Query().Get("limit"), ctx.Query().Get("offset"))
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, views.NewGroupListResponse(list))
}

// GroupDetail 返回指定上传组的全部写真。
func (h *PictureHandler) GroupDetail(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	group, err := h.queries.GroupDetail(reqCtx, identity.FamilyID, ctx.Vars().Get("group_id"))
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, views.NewGroup(group))
}

// Download 返回原图字节流（附件形式）。认证路由，不走签名 URL。
func (h *PictureHandler) Download(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	media, err := h.delivery.Download(reqCtx, identity.FamilyID, id)
	if err != nil {
		return err
	}
	ctx.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.FileName))
	return ctx.Blob(stdhttp.StatusOK, media.ContentType, media.Data)
}

// Delete 软删除一条写真记录。成功时返回 204。
func (h *PictureHandler) Delete(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()

	if err := h.lifecycle.SoftDelete(reqCtx, identity.FamilyID, id); err != nil {
		return err
	}
	ctx.Response().WriteHeader(stdhttp.StatusNoContent)
	return nil
}

// Restore 恢复一条软删除的写真记录。
func (h *PictureHandler) Restore(ctx khttp.Context) error {
	identity, err := h.RequireIdentity(ctx, ctx.Header().Get("Authorization"))
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()

	if err := h.lifecycle.Restore(reqCtx, identity.FamilyID, id); err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, &views.MessageResponse{Message: "Picture restored successfully"})
}

// readUploadFiles 读取 multipart 文件部件。逐文件大小上限在此处先行施加，
// 避免超限载荷进入图像解码。
func (h *PictureHandler) readUploadFiles(headers []*multipart.FileHeader) ([]services.UploadFile, error) {
	if len(headers) == 0 {
		return nil, kerrors.BadRequest(services.ReasonValidationFailed, "at least one file is required")
	}
	if len(headers) > h.maxFiles {
		return nil, kerrors.BadRequest(services.ReasonValidationFailed,
			fmt.Sprintf("too many files: at most %d files per upload", h.maxFiles))
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxUploadSize {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed,
				fmt.Sprintf("file %q is too large: limit is %d bytes", fh.Filename, h.maxUploadSize))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed, "failed to read uploaded file")
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
		_ = f.Close()
		if err != nil {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed, "failed to read uploaded file")
		}
		if int64(len(data)) > h.maxUploadSize {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed,
				fmt.Sprintf("file %q is too large: limit is %d bytes", fh.Filename, h.maxUploadSize))
		}
		files = append(files, services.UploadFile{
			FileName:    fh.Filename,
			ContentType: strings.ToLower(fh.Header.Get("Content-Type")),
			Size:        int64(len(data)),
			Data:        data,
		})
	}
	return files, nil
}

// optionalFormValue 返回表单字段的首个值；字段缺失时返回空。
func optionalFormValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// pathID 解析路径中的写真 ID。
func pathID(ctx khttp.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Vars().Get("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, kerrors.BadRequest(services.ReasonValidationFailed, "picture id must be a positive integer")
	}
	return id, nil
}
