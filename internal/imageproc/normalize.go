package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Normalize 将已解码图像重编码为仅含像素数据的新容器。
//
// 处理内容：
//  1. 按 EXIF Orientation 做校正变换，存储像素始终为「正立」方向
//  2. 目标格式不支持透明通道时，将带 alpha 的图像合成到不透明白色背景
//  3. 重编码：原始元数据段（EXIF/ICC 等）一律不保留
//
// 返回校正后的图像（供缩略图生成复用）与编码后的字节。
// 对相同输入字节与相同库版本，输出是确定的；跨版本确定性不作保证。
func Normalize(d *Decoded) (image.Image, []byte, error) {
	img := applyOrientation(d.Image, d.Orientation)

	if !d.Format.HasAlpha && !isOpaque(img) {
		img = flattenOnWhite(img)
	}

	var buf bytes.Buffer
	if err := d.Format.Encode(&buf, img); err != nil {
		return nil, nil, fmt.Errorf("encode normalized image: %w", err)
	}
	return img, buf.Bytes(), nil
}

// applyOrientation 按 EXIF Orientation（1-8）施加反向变换。
// 0 或 1 表示无需变换。5-8 的变换包含 90 度旋转，宽高互换。
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// isOpaque 判断图像是否完全不透明。
func isOpaque(img image.Image) bool {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// flattenOnWhite 将带透明通道的图像合成到不透明白色背景上。
func flattenOnWhite(img image.Image) image.Image {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
