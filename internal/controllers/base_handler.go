// Package controllers 实现 HTTP Handler 层：请求解析、认证边界与响应渲染。
// 业务判断全部下沉到 Service 层，Handler 只做协议适配。
package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/authn"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/wire"
)

// ProviderSet is controllers providers.
var ProviderSet = wire.NewSet(
	NewBaseHandler,
	NewPictureHandler,
	NewMediaHandler,
)

const reasonUnauthenticated = "UNAUTHENTICATED"

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写模型命令 Handler（上传、删除、恢复）。
	HandlerTypeCommand
	// HandlerTypeQuery 表示读模型查询与配信 Handler。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 10 * time.Second
	fallbackCommandTimeout = 30 * time.Second // 上传含图像处理与多文件落盘
	fallbackQueryTimeout   = 5 * time.Second
)

// BaseHandler 提供公共的超时与认证能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
	auth     authn.Authenticator
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(auth authn.Authenticator) *BaseHandler {
	return &BaseHandler{
		timeouts: HandlerTimeouts{
			Default: fallbackDefaultTimeout,
			Command: fallbackCommandTimeout,
			Query:   fallbackQueryTimeout,
		},
		auth: auth,
	}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// RequireIdentity 校验 Authorization 头并返回调用者身份。
// 凭证缺失与凭证非法刻意返回不同状态（403 / 401），保持既有客户端行为。
func (h *BaseHandler) RequireIdentity(ctx context.Context, authorization string) (*authn.Identity, error) {
	identity, err := h.auth.Authenticate(ctx, authorization)
	if err != nil {
		if errors.Is(err, authn.ErrMissingCredentials) {
			return nil, kerrors.Forbidden(reasonUnauthenticated, "Not authenticated")
		}
		return nil, kerrors.Unauthorized(reasonUnauthenticated, "Could not validate credentials")
	}
	return identity, nil
}
