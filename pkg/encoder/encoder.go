package encoder

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shouni/product-scene-studio/pkg/domain"
)

var (
	// ErrNotImage は宣言されたメディアタイプが image/ で始まらない場合や、中身が空の場合に返ります。
	ErrNotImage = errors.New("not an image")
	// ErrMalformedDataURL は data URL の形式が不正な場合に返ります。
	ErrMalformedDataURL = errors.New("malformed data url")
)

const (
	dataScheme   = "data"
	base64Suffix = "base64"
)

// IsImageType は宣言されたメディアタイプが画像かどうかを判定します。
func IsImageType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// Encode は r から画像を読み込み、EncodedImage を組み立てます。
// declaredType が空の場合はバイト列から判定します。
func Encode(r io.Reader, declaredType string) (domain.EncodedImage, error) {
	if declaredType != "" && !IsImageType(declaredType) {
		return domain.EncodedImage{}, fmt.Errorf("%w: %s", ErrNotImage, declaredType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}

	mediaType := declaredType
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
		if !IsImageType(mediaType) {
			return domain.EncodedImage{}, fmt.Errorf("%w: %s", ErrNotImage, mediaType)
		}
	}

	img := domain.EncodedImage{MediaType: normalizeMediaType(mediaType), Payload: data}
	if img.IsZero() {
		return domain.EncodedImage{}, fmt.Errorf("%w: empty file", ErrNotImage)
	}
	return img, nil
}

// ParseDataURL は data:<mediaType>;base64,<payload> 形式の文字列を検証して分解します。
func ParseDataURL(s string) (domain.EncodedImage, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || !strings.EqualFold(scheme, dataScheme) {
		return domain.EncodedImage{}, fmt.Errorf("%w: missing data scheme", ErrMalformedDataURL)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return domain.EncodedImage{}, fmt.Errorf("%w: missing payload separator", ErrMalformedDataURL)
	}

	mediaType, encoding, ok := strings.Cut(header, ";")
	if !ok || !strings.EqualFold(encoding, base64Suffix) {
		return domain.EncodedImage{}, fmt.Errorf("%w: only base64 encoding is supported", ErrMalformedDataURL)
	}
	if mediaType == "" {
		return domain.EncodedImage{}, fmt.Errorf("%w: empty media type", ErrMalformedDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}

	return domain.EncodedImage{MediaType: normalizeMediaType(mediaType), Payload: data}, nil
}

// MediaTypeOf は data URL からメディアタイプを取り出します。
func MediaTypeOf(s string) (string, error) {
	img, err := ParseDataURL(s)
	if err != nil {
		return "", err
	}
	return img.MediaType, nil
}

// PayloadOf は data URL からデコード済みのペイロードを取り出します。
func PayloadOf(s string) ([]byte, error) {
	img, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}
	return img.Payload, nil
}

// normalizeMediaType は "image/png; charset=..." のようなパラメータを落とします。
func normalizeMediaType(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
