package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rendezvous/internal/api"
	"rendezvous/internal/config"
)

func TestNewApplication_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WebSocket.BufferSize = 0

	_, err := NewApplication(cfg)
	assert.Error(t, err)
}

func TestApplication_RunAndShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 0

	app, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-app.Ready():
	case err := <-done:
		t.Fatalf("run exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("application never became ready")
	}
	base := "http://" + app.Addr().String()

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	_ = resp.Body.Close()
	assert.Equal(t, "healthy", health.Status)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+app.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"action":"submitName","name":"Ada"}`)))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var welcome map[string]any
	require.NoError(t, ws.ReadJSON(&welcome))
	assert.Equal(t, "Welcome, Ada!", welcome["message"])
	_ = ws.Close()

	resp, err = http.Get(base + "/api/ratings/Ada")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "rendezvous_connected_sessions")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not shut down")
	}
}
