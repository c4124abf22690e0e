package state

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/product-scene-studio/pkg/domain"
	"github.com/shouni/product-scene-studio/pkg/generator"
)

// --- Mocks ---

// mockGenerator は generator.ImageGenerator のモックなのだ。
type mockGenerator struct {
	mu          sync.Mutex
	calls       []generator.Request
	inFlight    int
	maxInFlight int
	release     chan struct{}
	fn          func(call int, req generator.Request) (*domain.ImageResponse, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req generator.Request) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	call := len(m.calls)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.release != nil {
		<-m.release
	}

	if m.fn != nil {
		return m.fn(call, req)
	}
	return &domain.ImageResponse{Data: []byte("generated"), MimeType: "image/png"}, nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type observation struct {
	mode   string
	status string
}

type mockRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (m *mockRecorder) ObserveGeneration(mode, status string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{mode: mode, status: status})
}

// errReader は読み込みに必ず失敗する io.Reader なのだ。
type errReader struct{ err error }

func (r errReader) Read(p []byte) (int, error) { return 0, r.err }
