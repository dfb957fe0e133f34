package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/redisx"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	id        string
	auctionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub pushes snapshot payloads to every socket watching an auction.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*client]struct{})}
}

// Serve upgrades the request and streams auctionID's snapshots to it,
// starting with initial when it is not nil.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, auctionID string, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("auction_id", auctionID).Msg("websocket upgrade failed")
		return
	}
	c := &client{
		id:        uuid.NewString(),
		auctionID: auctionID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	if initial != nil {
		c.send <- initial
	}
	h.add(c)
	go c.writePump()
	go h.readPump(c)
}

// Broadcast never blocks; a client that cannot keep up is dropped.
func (h *Hub) Broadcast(auctionID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.watchers[auctionID] {
		select {
		case c.send <- payload:
		default:
			h.removeLocked(c)
			log.Warn().Str("client", c.id).Str("auction_id", auctionID).Msg("slow websocket client dropped")
		}
	}
}

func (h *Hub) Count(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[auctionID])
}

// Run relays every snapshot published through redis until ctx ends.
func (h *Hub) Run(ctx context.Context, rdb *redis.Client) error {
	sub := rdb.PSubscribe(ctx, redisx.PatternSnapshots)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if id := redisx.ChannelID(msg.Channel); id != "" {
				h.Broadcast(id, []byte(msg.Payload))
			}
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[c.auctionID]
	if !ok {
		set = make(map[*client]struct{})
		h.watchers[c.auctionID] = set
	}
	set[c] = struct{}{}
	log.Debug().Str("client", c.id).Str("auction_id", c.auctionID).Msg("websocket subscribed")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c.send exactly once: only the call that finds c
// registered closes it.
func (h *Hub) removeLocked(c *client) {
	set := h.watchers[c.auctionID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.watchers, c.auctionID)
	}
	close(c.send)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; clients send nothing.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client", c.id).Msg("websocket closed")
			}
			return
		}
	}
}
