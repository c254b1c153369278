package daemon

import (
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/metrics"
)

const (
	lrWriteWait      = 10 * time.Second
	lrPongWait       = 60 * time.Second
	lrPingPeriod     = (lrPongWait * 9) / 10
	lrMaxMessageSize = 512
)

//go:embed livereload.js
var liveReloadScript string

// LiveReloadScript returns the client snippet embedded in served pages. It
// takes the first hash it receives as the baseline and reloads on any change.
func LiveReloadScript() template.JS {
	return template.JS(liveReloadScript) // #nosec G203 -- static embedded asset
}

type reloadMessage struct {
	Hash string `json:"hash"`
}

// LiveReloadHub manages websocket clients for hash-change broadcasts.
type LiveReloadHub struct {
	mu       sync.RWMutex
	nextID   int
	clients  map[int]*lrClient
	recorder metrics.Recorder
	closed   bool
	lastHash string
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

type lrClient struct {
	id   int
	conn *websocket.Conn
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub creates a hub. A nil recorder disables broadcast metrics.
func NewLiveReloadHub(recorder metrics.Recorder) *LiveReloadHub {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &LiveReloadHub{
		clients:  map[int]*lrClient{},
		recorder: recorder,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

// ServeHTTP upgrades the request and streams hash messages until the client
// goes away or the hub shuts down.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("livereload upgrade failed", logfields.Error(err))
		return
	}

	client := &lrClient{conn: conn, ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.lastHash
	h.wg.Add(2)
	h.mu.Unlock()

	go h.readLoop(client)
	go h.writeLoop(client, current)
}

// readLoop discards client messages and detects disconnects via pong deadlines.
func (h *LiveReloadHub) readLoop(c *lrClient) {
	defer h.wg.Done()
	defer h.removeClient(c.id)

	c.conn.SetReadLimit(lrMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(lrPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(lrPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveReloadHub) writeLoop(c *lrClient, current string) {
	defer h.wg.Done()
	ticker := time.NewTicker(lrPingPeriod)
	defer func() {
		ticker.Stop()
		h.removeClient(c.id)
		_ = c.conn.Close()
	}()

	if err := h.send(c, current); err != nil {
		return
	}
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		case hash := <-c.ch:
			if err := h.send(c, hash); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(lrWriteWait)); err != nil {
				slog.Debug("livereload ping failed", logfields.Error(err))
				return
			}
		}
	}
}

func (h *LiveReloadHub) send(c *lrClient, hash string) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(lrWriteWait))
	if err := c.conn.WriteJSON(reloadMessage{Hash: hash}); err != nil {
		slog.Debug("livereload write failed", logfields.Error(err))
		return err
	}
	return nil
}

func (h *LiveReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Clients returns the number of connected clients.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends hash to every client and returns how many were notified.
// Empty or repeated hashes are ignored; clients that cannot keep up are dropped.
func (h *LiveReloadHub) Broadcast(hash string) int {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.lastHash {
		h.mu.Unlock()
		return 0
	}
	h.lastHash = hash
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	sent, dropped := 0, 0
	for _, c := range snapshot {
		select {
		case c.ch <- hash:
			sent++
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncLiveReloadBroadcast(sent)
	slog.Debug("livereload broadcast", slog.String("hash", hash), slog.Int("clients", sent), slog.Int("dropped", dropped))
	return sent
}

// Shutdown disconnects all clients, waits for their loops to exit and
// rejects later connections.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
	}
	h.wg.Wait()
}
