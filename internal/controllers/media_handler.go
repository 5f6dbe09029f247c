package controllers

import (
	"fmt"
	stdhttp "net/http"
	"strconv"

	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"
	"github.com/khosokawa0716/family-album-sub000/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// MediaHandler 实现签名 URL 配信接口。路由本身不做 JWT 认证：
// 访问能力完全由 URL 中的 HMAC 签名与有效期承载。
type MediaHandler struct {
	*BaseHandler

	delivery *services.MediaDeliveryService
	log      *log.Helper
}

// NewMediaHandler 构造 MediaHandler。
func NewMediaHandler(base *BaseHandler, delivery *services.MediaDeliveryService, logger log.Logger) *MediaHandler {
	return &MediaHandler{BaseHandler: base, delivery: delivery, log: log.NewHelper(logger)}
}

// Register 挂载配信路由。
func (h *MediaHandler) Register(r *khttp.Router) {
	r.GET("/thumbnails/{filename}", h.Thumbnail)
	r.GET("/photos/{filename}", h.Photo)
}

// Thumbnail 配信缩略图字节流。
func (h *MediaHandler) Thumbnail(ctx khttp.Context) error {
	return h.serve(ctx, urlsigner.KindThumbnails)
}

// Photo 配信原图字节流（附件形式）。
func (h *MediaHandler) Photo(ctx khttp.Context) error {
	return h.serve(ctx, urlsigner.KindPhotos)
}

func (h *MediaHandler) serve(ctx khttp.Context, kind urlsigner.EndpointKind) error {
	filename := ctx.Vars().Get("filename")
	signature := ctx.Query().Get("signature")
	expiresRaw := ctx.Query().Get("expires")

	// 参数缺失或畸形与签名不合法同样对待，不提示失败原因
	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil || signature == "" {
		return kerrors.Forbidden(services.ReasonSignatureInvalid, "Invalid or expired signature")
	}

	reqCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	media, err := h.delivery.Fetch(reqCtx, kind, filename, signature, expires)
	if err != nil {
		return err
	}

	header := ctx.Response().Header()
	header.Set("Cache-Control", media.CacheControl())
	if kind == urlsigner.KindPhotos {
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.FileName))
	}
	return ctx.Blob(stdhttp.StatusOK, media.ContentType, media.Data)
}
