package generator

import (
	"github.com/shouni/product-scene-studio/pkg/domain"
	"google.golang.org/genai"
)

// EditInstructions はすべてのプロンプトの後ろに付与される固定の編集指示です。
const EditInstructions = "Keep the product exactly as it appears in the provided photo: " +
	"preserve its shape, proportions, colors, materials, labels and text. " +
	"Only change the background, surroundings and lighting to match the described scene, " +
	"keeping shadows and reflections consistent. Do not add any watermark, logo or caption."

// Request は画像ブロックとテキストブロックからなる1回分の生成リクエストです。
type Request struct {
	Image *genai.Blob
	Text  string
}

// BuildRequest はプロンプトと元画像から生成リクエストを組み立てます。
func BuildRequest(prompt string, img domain.EncodedImage) Request {
	return Request{
		Image: &genai.Blob{MIMEType: img.MediaType, Data: img.Payload},
		Text:  prompt + " " + EditInstructions,
	}
}

// Parts は画像、テキストの順でパーツ列を返します。
func (r Request) Parts() []*genai.Part {
	return []*genai.Part{
		{InlineData: r.Image},
		{Text: r.Text},
	}
}
