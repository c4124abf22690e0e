package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/shouni/product-scene-studio/pkg/state"
)

// Events は状態が変わるたびに View を Server-Sent Events で送ります。
// 接続直後に現在の状態を1回送ります。
func (h *StudioHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// 受け手が遅い場合は古い状態を捨てて最新だけを残す。
	updates := make(chan state.State, 1)
	unsubscribe := h.service.Store().Subscribe(func(s state.State) {
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- s
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.service.Store().Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case s := <-updates:
			if err := writeEvent(w, s); err != nil {
				slog.DebugContext(r.Context(), "SSEの送信を終了します", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, s state.State) error {
	data, err := sonic.Marshal(state.Project(s))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
