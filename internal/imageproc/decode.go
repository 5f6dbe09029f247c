package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	// 注册标准解码器。格式判定依据解码结果，而非客户端声明。
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable 表示字节流无法解码为受支持的图像格式。
var ErrUndecodable = errors.New("image bytes are not decodable")

// Decoded 聚合一张已校验图像的解码结果与后续处理所需的元数据。
type Decoded struct {
	Image        image.Image
	Format       Format     // 规范存储格式（经注册表映射）
	SourceFormat string     // 解码器报告的原始格式名
	Orientation  int        // EXIF Orientation（1-8；缺失时为 0）
	TakenAt      *time.Time // EXIF 拍摄时间（缺失或非法时为空）
}

// Decode 解码并校验图像字节流。
//
// 流程：
//  1. image.Decode 解码（失败即 ErrUndecodable，发生在任何写入之前）
//  2. 解码器报告的格式经注册表映射为规范存储格式
//  3. 读取 EXIF Orientation 与拍摄时间（尽力而为：EXIF 缺失不视为错误）
func Decode(data []byte) (*Decoded, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	format, ok := FormatByDecoderName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrUndecodable, name)
	}

	d := &Decoded{
		Image:        img,
		Format:       format,
		SourceFormat: name,
	}
	d.Orientation, d.TakenAt = readExif(data)
	return d, nil
}

// readExif 提取 EXIF 方向标签与拍摄时间。
// EXIF 段缺失、损坏或字段非法时返回零值，不报错：
// 方向回退为「不变换」，拍摄时间回退为空（排序时由记录创建时间兜底）。
func readExif(data []byte) (orientation int, takenAt *time.Time) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, nil
	}

	if tag, tagErr := x.Get(exif.Orientation); tagErr == nil {
		if v, intErr := tag.Int(0); intErr == nil && v >= 1 && v <= 8 {
			orientation = v
		}
	}

	if dt, dtErr := x.DateTime(); dtErr == nil && !dt.IsZero() {
		takenAt = &dt
	}
	return orientation, takenAt
}
