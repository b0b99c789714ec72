// Package websocket pushes catalog-version heartbeats to connected clients.
// Clients re-fetch data only when the version number moves, so a scoring run
// costs at most one refresh per client per heartbeat.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
)

// VersionSource reads the current catalog version. Satisfied by
// repository.Cache.
type VersionSource interface {
	CatalogVersion(ctx context.Context) (int64, error)
}

// Client is one connected peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and broadcasts catalog-version changes.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	versions   VersionSource
	logger     *logrus.Logger

	mu          sync.RWMutex
	lastVersion int64
}

// CatalogUpdate is the heartbeat message sent to clients.
type CatalogUpdate struct {
	Type    string `json:"type"`
	Version int64  `json:"version"`
}

// NewHub creates a hub over the given version source.
func NewHub(versions VersionSource, logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		versions:   versions,
		logger:     logger,
	}
}

// Run owns the client set until ctx is canceled. It polls the catalog version
// on the heartbeat interval and broadcasts only when it changes.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("clients", total).Debug("websocket client connected")
			h.sendCurrentVersion(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("clients", total).Debug("websocket client disconnected")

		case <-ticker.C:
			h.broadcastIfChanged(ctx)

		case <-ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastIfChanged(ctx context.Context) {
	version, err := h.versions.CatalogVersion(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("failed to read catalog version")
		return
	}
	if version == h.lastVersion {
		return
	}
	h.lastVersion = version

	message, err := json.Marshal(CatalogUpdate{Type: "catalog_update", Version: version})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow client; drop the heartbeat, the next one catches it up.
		}
	}
}

// sendCurrentVersion greets a new client with the current version so it can
// reconcile immediately instead of waiting for the next change.
func (h *Hub) sendCurrentVersion(ctx context.Context, client *Client) {
	version, err := h.versions.CatalogVersion(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("failed to read catalog version for new client")
		return
	}
	if h.lastVersion == 0 {
		h.lastVersion = version
	}

	message, err := json.Marshal(CatalogUpdate{Type: "catalog_update", Version: version})
	if err != nil {
		return
	}
	select {
	case client.send <- message:
	case <-time.After(writeWait):
	}
}

// readPump drains the connection until the peer goes away. Clients are not
// expected to send anything; inbound messages are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump flushes the send channel to the connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS registers the connection with the hub and blocks until it closes.
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
	}
	client.hub.register <- client

	go client.writePump()
	client.readPump()
}
