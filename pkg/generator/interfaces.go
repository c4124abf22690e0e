package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/product-scene-studio/pkg/domain"
	"google.golang.org/genai"
)

// GenerativeModel は Gemini へパーツ列を送信する通信クライアントの抽象です。
// go-gemini-client のクライアントと GenAIModel のどちらも満たします。
type GenerativeModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImageGenerator はビジネスロジック層が利用する統合窓口です。
type ImageGenerator interface {
	// Generate は1件のリクエストを1回だけ実行し、最初に見つかった画像を返します。
	Generate(ctx context.Context, req Request) (*domain.ImageResponse, error)
}
