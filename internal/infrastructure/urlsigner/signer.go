// Package urlsigner 提供图像配信用的签名 URL 基础设施封装。
// 方案为无状态 HMAC 能力令牌：令牌从不落库，自然过期前无法吊销，
// 以较短的默认有效期（30 分钟）约束该权衡。
package urlsigner

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// EndpointKind 表示签名 URL 指向的配信端点类型。
type EndpointKind string

// 受支持的端点类型。
const (
	KindThumbnails EndpointKind = "thumbnails"
	KindPhotos     EndpointKind = "photos"
)

// Valid 判断端点类型是否受支持。
func (k EndpointKind) Valid() bool {
	return k == KindThumbnails || k == KindPhotos
}

// ParseEndpointKind 解析路径段为端点类型。
func ParseEndpointKind(s string) (EndpointKind, error) {
	k := EndpointKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unsupported endpoint kind %q", s)
	}
	return k, nil
}

// DefaultTTL 是签名 URL 的默认有效期。
const DefaultTTL = 30 * time.Minute

// Signer 负责签发与验证时限性能力 URL。
// 密钥为启动时注入的不可变配置值，运行期不变更。
type Signer struct {
	secret []byte
	now    func() time.Time
}

// Option 定义可选配置。
type Option func(*Signer)

// WithClock 覆盖时间获取函数，便于测试。
func WithClock(clock func() time.Time) Option {
	return func(s *Signer) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewSigner 创建 Signer。密钥为空时返回错误。
func NewSigner(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("url signer: secret is required")
	}
	s := &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignedURL 为指定文件签发形如
// /api/{kind}/{filename}?signature={hex}&expires={unix} 的签名 URL。
//
// 签名对象为 "filename:kind:expires"，HMAC-SHA256，十六进制编码。
func (s *Signer) SignedURL(filename string, kind EndpointKind, ttl time.Duration) (string, error) {
	if filename == "" {
		return "", errors.New("filename is required")
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unsupported endpoint kind %q", kind)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	expires := s.now().Add(ttl).Unix()
	sig := s.compute(filename, kind, expires)

	return fmt.Sprintf(
		"/api/%s/%s?signature=%s&expires=%d",
		kind, url.PathEscape(filename), sig, expires,
	), nil
}

// Verify 验证签名与有效期。
//
// 验证项：
//  1. 基于提示的 filename/kind/expires 重算 HMAC，常数时间比较
//  2. 当前时间不得晚于 expires
//
// 任一项不满足均返回 false；过期与签名错误不作区分（对外统一 403）。
func (s *Signer) Verify(filename string, kind EndpointKind, signature string, expires int64) bool {
	if filename == "" || signature == "" || !kind.Valid() {
		return false
	}
	if s.now().Unix() > expires {
		return false
	}
	expected := s.compute(filename, kind, expires)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// compute 计算 "filename:kind:expires" 的 HMAC-SHA256 十六进制签名。
func (s *Signer) compute(filename string, kind EndpointKind, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(filename + ":" + string(kind) + ":" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
