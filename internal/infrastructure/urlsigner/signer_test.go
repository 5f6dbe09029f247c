package urlsigner

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignedURLRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signer, err := NewSigner("test-secret", WithClock(fixedClock(now)))
	require.NoError(t, err)

	signed, err := signer.SignedURL("abc123.jpg", KindThumbnails, 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signed, "/api/thumbnails/abc123.jpg?"))

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()
	require.Len(t, q.Get("signature"), 64)

	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	require.NoError(t, err)
	require.Equal(t, now.Add(DefaultTTL).Unix(), expires)

	require.True(t, signer.Verify("abc123.jpg", KindThumbnails, q.Get("signature"), expires))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signer, err := NewSigner("test-secret", WithClock(fixedClock(now)))
	require.NoError(t, err)

	signed, err := signer.SignedURL("abc123.jpg", KindPhotos, time.Hour)
	require.NoError(t, err)
	u, _ := url.Parse(signed)
	sig := u.Query().Get("signature")
	expires, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)

	// 签名翻转一个字符后必须失败
	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	require.False(t, signer.Verify("abc123.jpg", KindPhotos, string(flipped), expires))

	// 文件名、端点、时刻任一变化也必须失败
	require.False(t, signer.Verify("other.jpg", KindPhotos, sig, expires))
	require.False(t, signer.Verify("abc123.jpg", KindThumbnails, sig, expires))
	require.False(t, signer.Verify("abc123.jpg", KindPhotos, sig, expires+1))
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	signer, err := NewSigner("test-secret", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	signed, err := signer.SignedURL("abc123.jpg", KindPhotos, 30*time.Minute)
	require.NoError(t, err)
	u, _ := url.Parse(signed)
	sig := u.Query().Get("signature")
	expires, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)

	clock = issued.Add(29 * time.Minute)
	require.True(t, signer.Verify("abc123.jpg", KindPhotos, sig, expires))

	clock = issued.Add(31 * time.Minute)
	require.False(t, signer.Verify("abc123.jpg", KindPhotos, sig, expires))
}

func TestVerifyRejectsForgedExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	signer, err := NewSigner("test-secret", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	signed, err := signer.SignedURL("abc123.jpg", KindPhotos, 30*time.Minute)
	require.NoError(t, err)
	u, _ := url.Parse(signed)
	sig := u.Query().Get("signature")
	expires, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)

	// 过期后把 expires 改到未来：签名覆盖 expires，重算必然不一致
	clock = issued.Add(time.Hour)
	require.False(t, signer.Verify("abc123.jpg", KindPhotos, sig, expires+7200))
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("")
	require.Error(t, err)
}

func TestParseEndpointKind(t *testing.T) {
	for _, valid := range []string{"thumbnails", "photos"} {
		kind, err := ParseEndpointKind(valid)
		require.NoError(t, err)
		require.Equal(t, EndpointKind(valid), kind)
	}
	for _, invalid := range []string{"", "videos", "Thumbnails", "photos/"} {
		_, err := ParseEndpointKind(invalid)
		require.Error(t, err)
	}
}
