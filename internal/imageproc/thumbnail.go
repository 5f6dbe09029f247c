package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// Thumbnail 从归一化图像生成边界框 300×300 的缩略图。
//
// 纵横比保持不变（Fit 语义），使用 Lanczos 重采样；小于边界框的图像
// 不放大。缩略图始终以 JPEG 编码（质量低于原图，约束存储成本），
// 与原图的存储格式无关。纯函数，无副作用。
func Thumbnail(img image.Image) ([]byte, error) {
	thumb := imaging.Fit(img, ThumbnailMaxEdge, ThumbnailMaxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
