package encoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PNGの最小構成バイナリ（シグネチャ含む）
var validPng = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

type failingReader struct{ err error }

func (f failingReader) Read(p []byte) (int, error) { return 0, f.err }

func TestEncode(t *testing.T) {
	t.Run("宣言されたメディアタイプとバイト列をそのまま保持する", func(t *testing.T) {
		img, err := Encode(bytes.NewReader(validPng), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MediaType)
		assert.Equal(t, validPng, img.Payload)
	})

	t.Run("画像以外のメディアタイプは ErrNotImage", func(t *testing.T) {
		_, err := Encode(bytes.NewReader([]byte("hello")), "text/plain")
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("メディアタイプが空ならバイト列から判定する", func(t *testing.T) {
		img, err := Encode(bytes.NewReader(validPng), "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MediaType)

		_, err = Encode(bytes.NewReader([]byte("plain text")), "")
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("空のファイルは画像として扱わない", func(t *testing.T) {
		_, err := Encode(bytes.NewReader(nil), "image/png")
		assert.ErrorIs(t, err, ErrNotImage)

		_, err = Encode(bytes.NewReader(nil), "")
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("読み込み失敗はラップして返す", func(t *testing.T) {
		readErr := errors.New("disk gone")
		_, err := Encode(failingReader{err: readErr}, "image/jpeg")
		assert.ErrorIs(t, err, readErr)
	})

	t.Run("パラメータ付きのメディアタイプは正規化する", func(t *testing.T) {
		img, err := Encode(bytes.NewReader(validPng), "Image/PNG; foo=bar")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MediaType)
	})
}

func TestRoundTrip(t *testing.T) {
	original := []byte{0x00, 0xff, 0x10, 0x80, 'a', 'b', 0x7f}

	img, err := Encode(bytes.NewReader(original), "image/webp")
	require.NoError(t, err)

	dataURL := img.DataURL()

	mediaType, err := MediaTypeOf(dataURL)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mediaType)

	payload, err := PayloadOf(dataURL)
	require.NoError(t, err)
	assert.Equal(t, original, payload)
}

func TestParseDataURL_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"空文字", ""},
		{"スキームなし", "image/png;base64,AAAA"},
		{"別スキーム", "http:image/png;base64,AAAA"},
		{"カンマなし", "data:image/png;base64"},
		{"エンコーディングなし", "data:image/png,AAAA"},
		{"base64以外", "data:image/png;utf8,AAAA"},
		{"メディアタイプ空", "data:;base64,AAAA"},
		{"不正なbase64", "data:image/png;base64,@@@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataURL(tt.input)
			assert.ErrorIs(t, err, ErrMalformedDataURL)
		})
	}
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType(" IMAGE/jpeg"))
	assert.False(t, IsImageType("application/pdf"))
	assert.False(t, IsImageType(""))
}
