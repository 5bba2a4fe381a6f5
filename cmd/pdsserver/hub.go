package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kestrelcore/pds/draft"
)

// Hub broadcast tuning, grounded on the collab package's websocket_server.go
// constants for a single-process demo at a much smaller scale.
const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // demo only
}

// client is one connected WebSocket viewer of a single named collection.
type client struct {
	name string
	conn *websocket.Conn
	send chan collectionSummary
}

// hub maintains, per collection name, the set of connected viewers and
// broadcasts a diff summary to all of them after every produce call.
// Grounded on sarat-asymmetrica-genomevedic/backend/internal/collab's
// Hub (register/unregister/broadcast channels drained by one loop),
// narrowed from per-session cursor/edit messages to this demo's single
// collectionSummary message type.
type hub struct {
	mu       sync.RWMutex
	viewers  map[string]map[*client]struct{}
	register chan *client
	leave    chan *client
	notify   chan broadcastMsg
}

type broadcastMsg struct {
	name string
	sum  collectionSummary
}

func newHub() *hub {
	return &hub{
		viewers:  map[string]map[*client]struct{}{},
		register: make(chan *client),
		leave:    make(chan *client),
		notify:   make(chan broadcastMsg, 64),
	}
}

func (h *hub) run() {
	log.Println("[hub] starting broadcast loop")
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.viewers[c.name] == nil {
				h.viewers[c.name] = map[*client]struct{}{}
			}
			h.viewers[c.name][c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.leave:
			h.mu.Lock()
			delete(h.viewers[c.name], c)
			close(c.send)
			h.mu.Unlock()

		case msg := <-h.notify:
			h.mu.RLock()
			for c := range h.viewers[msg.name] {
				select {
				case c.send <- msg.sum:
				default:
					// slow viewer: drop rather than block the hub loop
				}
			}
			h.mu.RUnlock()
		}
	}
}

// broadcast queues a diff summary for name's connected viewers.
func (h *hub) broadcast(name string, v *draft.Value) {
	h.notify <- broadcastMsg{name: name, sum: collectionSummary{Name: name, Kind: v.Kind().String(), Len: v.Len()}}
}

// handleWebsocket upgrades the request to a WebSocket connection and
// registers it as a viewer of the named collection until it disconnects.
func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[hub] upgrade failed: %v", err)
		return
	}

	c := &client{name: name, conn: conn, send: make(chan collectionSummary, sendBufferSize)}
	s.hub.register <- c

	go c.writePump(s.hub)
	c.readPump(s.hub)
}

func (c *client) writePump(h *hub) {
	defer c.conn.Close()
	for sum := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(sum); err != nil {
			return
		}
	}
}

// readPump only watches for the connection closing; this demo's viewers
// are read-only subscribers, so any inbound message is ignored.
func (c *client) readPump(h *hub) {
	defer func() { h.leave <- c }()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
