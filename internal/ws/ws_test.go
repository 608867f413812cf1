package ws

import (
	"WhatsGrapp/entity"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

func (fakeAuth) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &entity.UserAuth{Username: "monitor", Token: token}, nil
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, fakeAuth{}, log, w, r)
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestServeWsRejectsBadToken(t *testing.T) {
	_, server := startHub(t)

	_, resp, err := dial(t, server, "bad")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBroadcastWithSubscription(t *testing.T) {
	hub, server := startHub(t)

	conn, _, err := dial(t, server, "good")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastMessage(entity.ChatMessage{Phone: "+1", Text: "hello"})
	event := readEvent(t, conn)
	assert.Equal(t, "new_message", event["type"])
	assert.Equal(t, "hello", event["data"].(map[string]any)["text"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "data": map[string]string{"phone": "+65 1111 2222"}}))
	event = readEvent(t, conn)
	assert.Equal(t, "subscribed", event["type"])

	hub.BroadcastMessage(entity.ChatMessage{Phone: "+1", Text: "skipped"})
	hub.BroadcastMessage(entity.ChatMessage{Phone: "+6511112222", Text: "followed"})
	event = readEvent(t, conn)
	assert.Equal(t, "followed", event["data"].(map[string]any)["text"])
}
