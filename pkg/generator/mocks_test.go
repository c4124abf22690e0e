package generator

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/product-scene-studio/pkg/domain"
	"google.golang.org/genai"
)

// --- Mocks ---

// mockAIClient は GenerativeModel のテスト用モックなのだ。
type mockAIClient struct {
	generateWithPartsFunc func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
	calls                 int
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.calls++
	if m.generateWithPartsFunc != nil {
		return m.generateWithPartsFunc(ctx, model, parts, opts)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

// mockContentGenerator は *genai.Models の代わりなのだ。
type mockContentGenerator struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	resp         *genai.GenerateContentResponse
	err          error
}

func (m *mockContentGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	return m.resp, m.err
}

// mockGenerator は ImageGenerator のモックで、呼び出しの重なりを記録するのだ。
type mockGenerator struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	prompts     []string
	delay       time.Duration
	fn          func(call int, req Request) (*domain.ImageResponse, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req Request) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.prompts = append(m.prompts, req.Text)
	call := len(m.prompts)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.fn != nil {
		return m.fn(call, req)
	}
	return &domain.ImageResponse{Data: []byte("img"), MimeType: "image/png"}, nil
}

func imageResponse(mimeType string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
				},
			}},
		},
	}
}
