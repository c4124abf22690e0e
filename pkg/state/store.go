package state

import (
	"sync"

	"github.com/shouni/product-scene-studio/pkg/domain"
)

// State はアプリケーション全体で1つだけ存在する状態です。
// GeneratedImages が nil の場合は「未設定」、空スライスは「リセット済みで結果なし」を表します。
type State struct {
	OriginalImage   *domain.OriginalImage
	GeneratedImages []domain.GeneratedImage
	Prompt          string
	IsLoading       bool
	Error           string
}

func (s State) clone() State {
	out := s
	if s.GeneratedImages != nil {
		out.GeneratedImages = make([]domain.GeneratedImage, len(s.GeneratedImages))
		copy(out.GeneratedImages, s.GeneratedImages)
	}
	return out
}

// Listener は状態が変わるたびに新しい状態を受け取ります。
type Listener func(State)

// Store は State を保持し、変更のたびに購読者へ通知するコンテナです。
// 状態はその場で書き換えず、常に新しい値で置き換えます。
type Store struct {
	// notifyMu は通知の順序を変更の順序と一致させる。
	notifyMu sync.Mutex
	mu       sync.Mutex

	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore は初期状態を指定して Store を作成します。
func NewStore(initial State) *Store {
	return &Store{
		state:     initial.clone(),
		listeners: make(map[int]Listener),
	}
}

// Snapshot は現在の状態のコピーを返します。
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Set は現在の状態のコピーに mutate を適用して置き換え、購読者に通知します。
func (s *Store) Set(mutate func(*State)) {
	s.Transition(nil, mutate)
}

// Transition は guard が true を返した場合にだけ mutate を適用します。
// guard の判定と置き換えは1つのロック内で行われます。
// Listener の中から Set や Transition を呼んではいけません。
func (s *Store) Transition(guard func(State) bool, mutate func(*State)) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if guard != nil && !guard(s.state) {
		s.mu.Unlock()
		return false
	}
	next := s.state.clone()
	mutate(&next)
	s.state = next

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next.clone())
	}
	return true
}

// Subscribe は Listener を登録し、登録解除用の関数を返します。
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
