package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/product-scene-studio/pkg/domain"
	"google.golang.org/genai"
)

// ErrNoImage はレスポンスに画像パーツが含まれていなかった場合に返ります。
var ErrNoImage = errors.New("no image returned")

// ClientOptions は生成時に毎回付与するオプションです。
type ClientOptions struct {
	AspectRatio  string
	SystemPrompt string
}

// GeminiImageClient は生成リクエストを Gemini に送り、最初の画像を取り出すクライアントです。
type GeminiImageClient struct {
	aiClient GenerativeModel
	model    string
	opts     ClientOptions
}

// NewGeminiImageClient は依存関係を注入して GeminiImageClient を初期化します。
func NewGeminiImageClient(aiClient GenerativeModel, model string, opts ClientOptions) (*GeminiImageClient, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (GenerativeModel) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &GeminiImageClient{
		aiClient: aiClient,
		model:    model,
		opts:     opts,
	}, nil
}

// Generate はリクエストを1回だけ送信します。リトライは行いません。
func (c *GeminiImageClient) Generate(ctx context.Context, req Request) (*domain.ImageResponse, error) {
	gOpts := gemini.GenerateOptions{
		AspectRatio:  c.opts.AspectRatio,
		SystemPrompt: c.opts.SystemPrompt,
	}

	resp, err := c.aiClient.GenerateWithParts(ctx, c.model, req.Parts(), gOpts)
	if err != nil {
		return nil, fmt.Errorf("Gemini画像生成エラー: %w", err)
	}

	return parseToResponse(resp)
}

// parseToResponse は Gemini のレスポンスから最初の画像パーツを取り出します。
func parseToResponse(resp *gemini.Response) (*domain.ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("%w: Geminiからの有効な応答がありませんでした", ErrNoImage)
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]
	if candidate == nil {
		return nil, fmt.Errorf("%w: 候補が空でした", ErrNoImage)
	}

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: 画像生成が異常終了しました (FinishReason: %s)", ErrNoImage, candidate.FinishReason)
	}

	return nil, ErrNoImage
}
