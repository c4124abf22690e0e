package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_ShutdownCancelsOpenStreams(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	srv := newServer("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		close(started)
		<-r.Context().Done()
		close(cancelled)
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()

	// 接続はテスト終了まで開いたままにする
	responses := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			responses <- resp
		}
	}()
	t.Cleanup(func() {
		select {
		case resp := <-responses:
			resp.Body.Close()
		default:
		}
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() { _ = srv.Shutdown(ctx) }()

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("request context was not cancelled on shutdown")
	}
	assert.NoError(t, ctx.Err())
}
