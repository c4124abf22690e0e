package domain

import (
	"encoding/base64"
	"strings"
)

// EncodedImage はメディアタイプとペイロードを組で保持する画像表現です。
// エンコード時に一度だけ組み立て、以降は文字列を再解析しません。
type EncodedImage struct {
	MediaType string
	Payload   []byte
}

// DataURL は data:<mediaType>;base64,<payload> 形式の文字列を返します。
// インライン表示用です。
func (e EncodedImage) DataURL() string {
	return "data:" + e.MediaType + ";base64," + base64.StdEncoding.EncodeToString(e.Payload)
}

// IsZero はペイロードを持たない画像かどうかを返します。
func (e EncodedImage) IsZero() bool {
	return len(e.Payload) == 0
}

// OriginalImage はユーザーがアップロードした商品画像です。
type OriginalImage struct {
	ID       string
	FileName string
	Image    EncodedImage
}

// GeneratedImage は生成に成功した画像と、その表示名です。
type GeneratedImage struct {
	Name  string
	Image EncodedImage
}

// FileName はダウンロード時の推奨ファイル名を返します。
// 名前中の空白はハイフンに置き換えられます。
func (g GeneratedImage) FileName() string {
	return "generated-" + strings.Join(strings.Fields(g.Name), "-") + ".png"
}

// ImageResponse はモデルから取り出した画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// Encoded は ImageResponse を EncodedImage に変換します。
func (r ImageResponse) Encoded() EncodedImage {
	return EncodedImage{MediaType: r.MimeType, Payload: r.Data}
}
