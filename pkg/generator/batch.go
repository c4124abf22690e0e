package generator

import (
	"context"
	"log/slog"

	"github.com/shouni/product-scene-studio/pkg/domain"
)

// BatchFailure はバッチ内で失敗した1件分の情報です。
type BatchFailure struct {
	Preset domain.Preset
	Err    error
}

// BatchResult はバッチ全体の結果です。Succeeded はプリセット順に並びます。
type BatchResult struct {
	Succeeded []domain.GeneratedImage
	Failed    []BatchFailure
}

// RunBatch はプリセットごとに1回ずつ、順番に生成を実行します。
// 同時に発行するリクエストは常に1件で、1件の失敗でバッチは止まりません。
// onProgress には成功するたびに、それまでの成功結果のコピーが渡されます。
func RunBatch(ctx context.Context, gen ImageGenerator, img domain.EncodedImage, presets []domain.Preset, onProgress func([]domain.GeneratedImage)) BatchResult {
	result := BatchResult{Succeeded: []domain.GeneratedImage{}}

	for i, preset := range presets {
		resp, err := gen.Generate(ctx, BuildRequest(preset.Prompt, img))
		if err != nil {
			slog.WarnContext(ctx, "プリセットの生成に失敗しました。次のプリセットへ進みます",
				"index", i, "preset", preset.Name, "error", err)
			result.Failed = append(result.Failed, BatchFailure{Preset: preset, Err: err})
			continue
		}

		result.Succeeded = append(result.Succeeded, domain.GeneratedImage{
			Name:  preset.Name,
			Image: resp.Encoded(),
		})

		if onProgress != nil {
			snapshot := make([]domain.GeneratedImage, len(result.Succeeded))
			copy(snapshot, result.Succeeded)
			onProgress(snapshot)
		}
	}

	slog.InfoContext(ctx, "バッチ生成が完了しました",
		"total", len(presets), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result
}
