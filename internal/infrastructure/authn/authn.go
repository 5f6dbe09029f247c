// Package authn 定义 JSON 端点的认证边界。
// 核心组件只依赖「调用者身份 + 家族范围」契约；JWT 实现是该契约的默认提供者。
// 配信端点（签名 URL）不经过本层。
package authn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 认证失败错误。缺失凭据与非法凭据对外状态码不同（403 / 401）。
var (
	ErrMissingCredentials = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("could not validate credentials")
)

// Identity 表示一次已认证调用的主体：用户与其家族范围。
type Identity struct {
	UserID   int64
	FamilyID int64
}

// Authenticator 抽象认证能力，便于在测试中以桩替换。
type Authenticator interface {
	// Authenticate 校验 Authorization 头的值，返回调用者身份。
	// 头缺失 → ErrMissingCredentials；令牌非法/过期/主体不完整 → ErrInvalidCredentials。
	Authenticate(ctx context.Context, authorization string) (*Identity, error)
}

// claims 是访问令牌的载荷：sub 为用户 ID，family_id 为家族范围。
type claims struct {
	FamilyID int64 `json:"family_id"`
	jwt.RegisteredClaims
}

// JWTAuthenticator 基于 HS256 JWT 实现 Authenticator。
type JWTAuthenticator struct {
	secret []byte
	now    func() time.Time
}

// Option 定义可选配置。
type Option func(*JWTAuthenticator)

// WithClock 覆盖时间获取函数，便于测试过期令牌。
func WithClock(clock func() time.Time) Option {
	return func(a *JWTAuthenticator) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewJWTAuthenticator 创建 JWTAuthenticator。密钥为空时返回错误。
func NewJWTAuthenticator(secret string, opts ...Option) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("authenticator: secret is required")
	}
	a := &JWTAuthenticator{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate 实现 Authenticator 接口。
func (a *JWTAuthenticator) Authenticate(_ context.Context, authorization string) (*Identity, error) {
	if authorization == "" {
		return nil, ErrMissingCredentials
	}
	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, ErrMissingCredentials
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}

	if c.Subject == "" || c.FamilyID <= 0 {
		return nil, ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidCredentials
	}

	return &Identity{UserID: userID, FamilyID: c.FamilyID}, nil
}

type identityKey struct{}

// NewContext 将已认证身份注入上下文。
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext 取出上下文中的已认证身份。
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
