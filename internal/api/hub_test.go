package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients (have %d)", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastOnMutation(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	conn := dialTestHub(t, srv)
	waitForClients(t, h.Hub(), 1)

	resp, err := http.Post(srv.URL+"/api/products", "application/json",
		strings.NewReader(`{"product_id":"p1","name":"p1","half_life_hours":24}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var notice ChangeNotice
	require.NoError(t, conn.ReadJSON(&notice))
	assert.Equal(t, "products", notice.Type)
}

func TestHub_DropsDisconnectedClients(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	conn := dialTestHub(t, srv)
	waitForClients(t, h.Hub(), 1)

	conn.Close()
	waitForClients(t, h.Hub(), 0)

	// Broadcasting with no clients must not panic.
	h.Hub().Broadcast(ChangeNotice{Type: "quantities"})
}
