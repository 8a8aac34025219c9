package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"platwatch/internal/domain"
	"platwatch/internal/infra"

	"github.com/gorilla/websocket"
)

// WSHub broadcasts alerts to connected websocket subscribers, e.g. a local
// dashboard. Implements domain.AlertSink; clients that cannot keep up are
// dropped rather than allowed to block the broadcast.
type WSHub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
}

type wsClient struct {
	hub  *WSHub
	conn *websocket.Conn
	send chan []byte
}

// NewWSHub creates a hub. Run must be started before serving connections.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    map[*wsClient]bool{},
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 256),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
				infra.GlobalMetrics.DecrementWSClients()
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			infra.GlobalMetrics.IncrementWSClients()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				infra.GlobalMetrics.DecrementWSClients()
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
					infra.GlobalMetrics.DecrementWSClients()
				}
			}
		}
	}
}

// Deliver broadcasts the alert as JSON. Never blocks the dispatcher: when
// the broadcast buffer is full the alert is dropped for websocket clients.
func (h *WSHub) Deliver(_ context.Context, alert domain.Alert) error {
	msg, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("Websocket broadcast buffer full, dropping alert",
			slog.String("alert", alert.ID))
	}
	return nil
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   4096,
	WriteBufferSize:  4096,
	CheckOrigin:      func(r *http.Request) bool { return true }, // Local dashboard only
}

// ServeWS upgrades an HTTP request to a subscriber connection.
func (h *WSHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", slog.Any("error", err))
		return
	}
	c := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(25 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
