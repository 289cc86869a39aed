package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event is one board notification: a type like "order.created" plus the
// already-encoded payload the HTTP handler produced.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type restaurantEvent struct {
	RestaurantID uuid.UUID
	Event        Event
}

// Hub fans order events out to every board watching a restaurant. Each
// restaurant gets its own room; a client only ever hears about the
// restaurant it subscribed to.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *restaurantEvent

	// Guards rooms. Run is the only writer; tests read under RLock.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *restaurantEvent, 256),
	}
}

// Run drives the hub until the process exits. Call it once, as a
// goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case event := <-h.broadcast:
			h.fanout(event)
		}
	}
}

// BroadcastToRestaurant queues an event for every client in the
// restaurant's room. Safe to call from any goroutine.
func (h *Hub) BroadcastToRestaurant(restaurantID uuid.UUID, event Event) {
	h.broadcast <- &restaurantEvent{RestaurantID: restaurantID, Event: event}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[client.restaurantID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[client.restaurantID] = room
	}
	room[client] = true
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(client)
}

func (h *Hub) fanout(event *restaurantEvent) {
	message, err := json.Marshal(event.Event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[event.RestaurantID] {
		select {
		case client.send <- message:
		default:
			// Send buffer full: the client stopped draining, cut it loose
			h.drop(client)
		}
	}
}

// drop removes the client from its room and closes its send channel.
// Empty rooms are deleted so the map doesn't grow with every restaurant
// ever watched. Caller holds mu.
func (h *Hub) drop(client *Client) {
	room, ok := h.rooms[client.restaurantID]
	if !ok {
		return
	}
	if _, exists := room[client]; !exists {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.restaurantID)
	}
}
