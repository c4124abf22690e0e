package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// PNGMimeType は PNG のメディアタイプです。
const PNGMimeType = "image/png"

// ToPNG は画像データ（JPEG, GIF, WebP等）をPNG形式に変換します。
// 既にPNGの場合はそのまま返します。
func ToPNG(data []byte, mimeType string) ([]byte, error) {
	if mimeType == PNGMimeType {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
