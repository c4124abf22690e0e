package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/product-scene-studio/pkg/domain"
	"github.com/shouni/product-scene-studio/pkg/encoder"
	"github.com/shouni/product-scene-studio/pkg/generator"
)

const (
	ModeSingle = "single"
	ModeBatch  = "batch"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ErrPresetNotFound は存在しないプリセット番号が指定された場合に返ります。
var ErrPresetNotFound = errors.New("preset not found")

// Recorder は生成1回ごとの結果を記録します。
type Recorder interface {
	ObserveGeneration(mode, status string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, string, time.Duration) {}

// Option は Controller の設定を変更します。
type Option func(*Controller)

// WithPresets はバッチ生成に使うプリセットを差し替えます。
func WithPresets(presets []domain.Preset) Option {
	return func(c *Controller) {
		c.presets = append([]domain.Preset(nil), presets...)
	}
}

// WithRecorder はメトリクスの記録先を設定します。
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Controller は Store を所有し、アップロードと生成のフローを駆動します。
type Controller struct {
	store    *Store
	gen      generator.ImageGenerator
	presets  []domain.Preset
	recorder Recorder
	wg       sync.WaitGroup
}

// NewController は依存関係を注入して Controller を初期化します。
func NewController(gen generator.ImageGenerator, opts ...Option) (*Controller, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (generator.ImageGenerator) is required")
	}

	c := &Controller{
		store:    NewStore(State{}),
		gen:      gen,
		presets:  domain.Presets(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Store は状態コンテナを返します。
func (c *Controller) Store() *Store {
	return c.store
}

// Presets はプリセットのコピーを返します。
func (c *Controller) Presets() []domain.Preset {
	return append([]domain.Preset(nil), c.presets...)
}

// Upload は画像を読み込み、元画像として設定します。
// 画像以外のファイルは encoder.ErrNotImage を返し、状態は変更しません。
// 読み込みに失敗した場合はエラーメッセージだけを状態に設定します。
func (c *Controller) Upload(ctx context.Context, fileName string, r io.Reader, declaredType string) error {
	if declaredType != "" && !encoder.IsImageType(declaredType) {
		slog.InfoContext(ctx, "画像以外のファイルを無視しました", "file", fileName, "type", declaredType)
		return encoder.ErrNotImage
	}

	img, err := encoder.Encode(r, declaredType)
	if errors.Is(err, encoder.ErrNotImage) {
		slog.InfoContext(ctx, "画像以外のファイルを無視しました", "file", fileName)
		return err
	}
	if err != nil {
		slog.WarnContext(ctx, "アップロードされた画像を読み込めませんでした", "file", fileName, "error", err)
		c.store.Set(func(s *State) {
			s.Error = fmt.Sprintf("Failed to read image: %v", err)
		})
		return err
	}

	original := &domain.OriginalImage{
		ID:       uuid.NewString(),
		FileName: fileName,
		Image:    img,
	}
	c.store.Set(func(s *State) {
		s.OriginalImage = original
		s.GeneratedImages = nil
		s.Error = ""
	})

	slog.InfoContext(ctx, "元画像を設定しました", "id", original.ID, "file", fileName, "type", img.MediaType, "bytes", len(img.Payload))
	return nil
}

// SetPrompt は現在のプロンプトを置き換えます。
func (c *Controller) SetPrompt(prompt string) {
	c.store.Set(func(s *State) {
		s.Prompt = prompt
	})
}

// SelectPreset は index 番目のプリセットのプロンプトを現在のプロンプトにします。
func (c *Controller) SelectPreset(index int) error {
	if index < 0 || index >= len(c.presets) {
		return fmt.Errorf("%w: %d", ErrPresetNotFound, index)
	}
	c.SetPrompt(c.presets[index].Prompt)
	return nil
}

// Generate は現在のプロンプトで1枚生成します。完了するまで戻りません。
// 元画像が無い、プロンプトが空、または生成中の場合は何もせず false を返します。
func (c *Controller) Generate(ctx context.Context) bool {
	prompt, src, ok := c.beginSingle()
	if !ok {
		return false
	}
	c.runSingle(ctx, prompt, src)
	return true
}

// StartGenerate は Generate の開始判定だけを同期的に行い、生成自体はバックグラウンドで実行します。
func (c *Controller) StartGenerate(ctx context.Context) bool {
	prompt, src, ok := c.beginSingle()
	if !ok {
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runSingle(ctx, prompt, src)
	}()
	return true
}

// GenerateBatch はすべてのプリセットで順番に生成します。完了するまで戻りません。
// 元画像が無い、または生成中の場合は何もせず false を返します。
func (c *Controller) GenerateBatch(ctx context.Context) bool {
	src, ok := c.beginBatch()
	if !ok {
		return false
	}
	c.runBatch(ctx, src)
	return true
}

// StartGenerateBatch は GenerateBatch をバックグラウンドで実行します。
func (c *Controller) StartGenerateBatch(ctx context.Context) bool {
	src, ok := c.beginBatch()
	if !ok {
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runBatch(ctx, src)
	}()
	return true
}

// Wait はバックグラウンドで実行中の生成がすべて終わるまで待ちます。
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) beginSingle() (string, domain.OriginalImage, bool) {
	var (
		prompt string
		src    domain.OriginalImage
	)
	ok := c.store.Transition(canGenerate, func(s *State) {
		prompt = s.Prompt
		src = *s.OriginalImage
		s.IsLoading = true
		s.Error = ""
		s.GeneratedImages = nil
	})
	return prompt, src, ok
}

func (c *Controller) runSingle(ctx context.Context, prompt string, src domain.OriginalImage) {
	defer c.finish()

	gen := c.instrumented(ModeSingle)
	resp, err := gen.Generate(ctx, generator.BuildRequest(prompt, src.Image))
	if err != nil {
		slog.ErrorContext(ctx, "画像生成に失敗しました", "error", err)
		c.publish(ctx, src.ID, func(s *State) {
			s.Error = fmt.Sprintf("Failed to generate image: %v", err)
		})
		return
	}

	result := domain.GeneratedImage{Name: domain.CustomPromptName, Image: resp.Encoded()}
	c.publish(ctx, src.ID, func(s *State) {
		s.GeneratedImages = []domain.GeneratedImage{result}
	})
}

func (c *Controller) beginBatch() (domain.OriginalImage, bool) {
	var src domain.OriginalImage
	ok := c.store.Transition(canGenerateBatch, func(s *State) {
		src = *s.OriginalImage
		s.IsLoading = true
		s.Error = ""
		s.GeneratedImages = []domain.GeneratedImage{}
	})
	return src, ok
}

func (c *Controller) runBatch(ctx context.Context, src domain.OriginalImage) {
	defer c.finish()

	generator.RunBatch(ctx, c.instrumented(ModeBatch), src.Image, c.presets, func(images []domain.GeneratedImage) {
		c.publish(ctx, src.ID, func(s *State) {
			s.GeneratedImages = images
		})
	})
}

// publish は元画像 sourceID がまだ現在の元画像である場合にだけ結果を反映します。
// 生成中に別の画像がアップロードされた場合、古い画像から作られた結果は捨てます。
func (c *Controller) publish(ctx context.Context, sourceID string, mutate func(*State)) {
	current := func(s State) bool {
		return s.OriginalImage != nil && s.OriginalImage.ID == sourceID
	}
	if !c.store.Transition(current, mutate) {
		slog.InfoContext(ctx, "元画像が差し替えられたため生成結果を破棄しました", "source", sourceID)
	}
}

func (c *Controller) finish() {
	c.store.Set(func(s *State) {
		s.IsLoading = false
	})
}

func (c *Controller) instrumented(mode string) generator.ImageGenerator {
	return &recordingGenerator{next: c.gen, mode: mode, recorder: c.recorder}
}

// recordingGenerator は1回ごとの所要時間と成否を Recorder に渡します。
type recordingGenerator struct {
	next     generator.ImageGenerator
	mode     string
	recorder Recorder
}

func (g *recordingGenerator) Generate(ctx context.Context, req generator.Request) (*domain.ImageResponse, error) {
	start := time.Now()
	resp, err := g.next.Generate(ctx, req)

	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	g.recorder.ObserveGeneration(g.mode, status, time.Since(start))
	return resp, err
}
