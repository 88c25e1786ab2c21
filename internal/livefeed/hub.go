// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package livefeed broadcasts a best-effort stream of interaction and
// feedback events to connected operator dashboards over WebSocket. It is
// diagnostic only: nothing in the serving plane's request path depends on
// a live-feed client being connected, or on the broadcast succeeding.
package livefeed

import (
	"context"
	"sync"
)

// Event types broadcast over the live feed.
const (
	EventInteraction = "interaction"
	EventFeedback    = "feedback"
)

// Message is one live-feed frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected live-feed clients and fans out
// broadcast messages to each of them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// String satisfies suture's named-service convention for log output.
func (h *Hub) String() string {
	return "livefeed.Hub"
}

// Broadcast enqueues msg for delivery to every connected client. It never
// blocks: a full queue drops the message, since the live feed is a
// diagnostic best-effort stream, not a durable log.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Serve runs the hub's client-registration and broadcast loop until ctx is
// cancelled, at which point every connected client is closed. It
// implements suture.Service so the supervisor tree's background layer owns
// its lifecycle.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop the frame rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
