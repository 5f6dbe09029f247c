// Package imageproc 提供上传图像的解码校验、归一化重编码与缩略图生成。
// 该包是纯函数层：不访问数据库、不访问文件系统，仅处理内存中的像素数据。
package imageproc

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
)

// 编码质量常量。归一化原图与缩略图使用不同质量以控制存储成本。
const (
	// ThumbnailMaxEdge 是缩略图边界框的最大边长（像素）。
	ThumbnailMaxEdge = 300
	// normalizeQuality 是归一化原图的 JPEG 编码质量。
	normalizeQuality = 85
	// thumbnailQuality 是缩略图的 JPEG 编码质量（低于原图以节省存储）。
	thumbnailQuality = 75
)

// Format 描述一种规范化的存储格式：解码器报告的格式名经由注册表
// 映射到 {MIME, 扩展名, 编码函数}，不信任客户端声明的 Content-Type。
type Format struct {
	Name     string // 规范格式名（同 image.Decode 报告值）
	MIME     string // 存储与配信使用的规范 MIME
	Ext      string // 存储文件扩展名（含点）
	HasAlpha bool   // 目标容器是否支持透明通道
	Encode   func(w io.Writer, img image.Image) error
}

// formatRegistry 将解码器报告的格式名映射到规范存储格式。
// webp 没有 Go 编码器，归一化时落为 JPEG（透明部分合成到白色背景）。
var formatRegistry = map[string]Format{
	"jpeg": {
		Name: "jpeg", MIME: "image/jpeg", Ext: ".jpg", HasAlpha: false,
		Encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: normalizeQuality})
		},
	},
	"png": {
		Name: "png", MIME: "image/png", Ext: ".png", HasAlpha: true,
		Encode: func(w io.Writer, img image.Image) error {
			return png.Encode(w, img)
		},
	},
	"gif": {
		Name: "gif", MIME: "image/gif", Ext: ".gif", HasAlpha: true,
		Encode: func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		},
	},
	"webp": {
		// webp 解码后以 JPEG 容器存储（无 Go webp 编码器）。
		Name: "jpeg", MIME: "image/jpeg", Ext: ".jpg", HasAlpha: false,
		Encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: normalizeQuality})
		},
	},
}

// FormatByDecoderName 查询解码器格式名对应的规范存储格式。
func FormatByDecoderName(name string) (Format, bool) {
	f, ok := formatRegistry[name]
	return f, ok
}
