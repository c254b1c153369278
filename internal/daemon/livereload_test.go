package daemon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/apiref/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type broadcastRecorder struct {
	metrics.NoopRecorder
	mu      sync.Mutex
	clients []int
}

func (r *broadcastRecorder) IncLiveReloadBroadcast(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = append(r.clients, n)
}

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readHash(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg reloadMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg.Hash
}

func TestLiveReload_InitialMessageCarriesCurrentHash(t *testing.T) {
	hub := NewLiveReloadHub(nil)
	defer hub.Shutdown()
	assert.Equal(t, 0, hub.Broadcast("abc123"), "no clients yet")

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server.URL)
	assert.Equal(t, "abc123", readHash(t, conn))
}

func TestLiveReload_BroadcastReachesClients(t *testing.T) {
	rec := &broadcastRecorder{}
	hub := NewLiveReloadHub(rec)
	defer hub.Shutdown()
	server := httptest.NewServer(hub)
	defer server.Close()

	first := dialHub(t, server.URL)
	second := dialHub(t, server.URL)
	assert.Empty(t, readHash(t, first))
	assert.Empty(t, readHash(t, second))
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, hub.Broadcast("h2"))
	assert.Equal(t, "h2", readHash(t, first))
	assert.Equal(t, "h2", readHash(t, second))

	assert.Equal(t, 0, hub.Broadcast("h2"), "repeated hash is ignored")
	assert.Equal(t, 0, hub.Broadcast(""), "empty hash is ignored")

	rec.mu.Lock()
	assert.Equal(t, []int{2}, rec.clients)
	rec.mu.Unlock()
}

func TestLiveReload_ClientDisconnectIsRemoved(t *testing.T) {
	hub := NewLiveReloadHub(nil)
	defer hub.Shutdown()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server.URL)
	readHash(t, conn)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveReload_ShutdownClosesClients(t *testing.T) {
	hub := NewLiveReloadHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server.URL)
	readHash(t, conn)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Shutdown()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)

	assert.Equal(t, 0, hub.Broadcast("after"))
	hub.Shutdown()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLiveReloadScript(t *testing.T) {
	script := string(LiveReloadScript())
	assert.Contains(t, script, "/livereload")
	assert.Contains(t, script, "location.reload()")
}
