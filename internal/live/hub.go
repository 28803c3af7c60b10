// Package live pushes the slot grid to connected viewers.  A Projector
// rebuilds the grid after every change and hands the encoded snapshot to
// a Hub, which fans it out to every registered client.
package live

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// clientBuffer is how many snapshots may queue for one viewer before it is
// considered too slow and dropped.
const clientBuffer = 16

// Client is one registered viewer.  Messages are closed when the hub drops
// the client or shuts down.
type Client struct {
	send chan []byte
}

// Messages returns the stream of encoded snapshots for this client.
func (c *Client) Messages() <-chan []byte { return c.send }

// Hub owns the set of clients.  All membership changes and broadcasts go
// through Run, so the client map needs no lock.  Run is also the only
// writer to client streams, which keeps every viewer's snapshots in
// broadcast order.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	clients    map[*Client]struct{}
	latest     []byte // last broadcast handled by Run; owned by Run
	count      atomic.Int64
	logger     *zap.Logger
}

// NewHub returns a hub; call Run before registering clients.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 1),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     logger.Named("hub"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client stream.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			if h.latest != nil {
				c.send <- h.latest // fresh buffer, never blocks
			}
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			h.latest = msg
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("dropping slow viewer")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Register adds a new client.  The client's stream starts with the latest
// snapshot the hub has sent, if any.  It returns nil once the hub has
// stopped.
func (h *Hub) Register() *Client {
	c := &Client{send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
		return c
	case <-h.done:
		return nil
	}
}

// Unregister removes c; it is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	if c == nil {
		return
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every client.  It blocks only while the hub is
// busy with the previous broadcast.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Clients reports how many viewers are connected.
func (h *Hub) Clients() int { return int(h.count.Load()) }
