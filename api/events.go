package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/abates/monoprice-hub/zone"
	"github.com/gorilla/websocket"
	"github.com/shimmeringbee/logwrap"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan zone.Event
}

// hub fans zone events out to every connected websocket client. Publishing
// never waits on the network, each client has its own writer.
type hub struct {
	logger logwrap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub(logger logwrap.Logger) *hub {
	return &hub{logger: logger, clients: map[*client]struct{}{}}
}

func (h *hub) add(conn *websocket.Conn, initial []zone.Event) *client {
	c := &client{conn: conn, send: make(chan zone.Event, sendBuffer+len(initial))}
	for _, event := range initial {
		c.send <- event
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	return c
}

// remove unregisters c and stops its writer. It is safe to call more than
// once.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with mu held.
func (h *hub) drop(c *client) {
	if _, found := h.clients[c]; found {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) writeLoop(c *client) {
	defer c.conn.Close()

	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			h.logger.LogDebug(context.Background(), "Dropping websocket client.", logwrap.Err(err))
			h.remove(c)
			return
		}
	}
}

func (h *hub) publish(event zone.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.LogWarn(context.Background(), "Dropping websocket client that fell behind.", logwrap.Datum("zone", int(event.Zone)))
			h.drop(c)
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// streamEvents sends the current state of every zone, then every change.
func (a *api) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		return
	}

	initial := []zone.Event{}
	for _, z := range a.inst.Zones() {
		initial = append(initial, zone.Event{Zone: z.ID(), Available: z.Available(), State: z.State()})
	}
	c := a.events.add(conn, initial)

	// clients only listen, reading detects the close
	go func() {
		defer a.events.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
