package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/logging"
)

const directBufSize = 256

// Hub tracks connected clients per user and delivers events to them. A user
// may hold several connections (one per open tab).
type Hub struct {
	log     logging.Logger
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	direct     chan *directMsg
	done       chan struct{}
}

type directMsg struct {
	userIDs []uuid.UUID
	data    []byte
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:        log.With("component", "ws_hub"),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *directMsg, directBufSize),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.drop(client)
				}
			}
			return nil

		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			h.log.Debug(ctx, "client connected", "user_id", client.userID, "connections", len(set))
			client.sendEvent(EventTypeConnected, nil)

		case client := <-h.unregister:
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					h.drop(client)
					h.log.Debug(ctx, "client disconnected", "user_id", client.userID)
				}
			}

		case msg := <-h.direct:
			for _, userID := range msg.userIDs {
				for client := range h.clients[userID] {
					select {
					case client.send <- msg.data:
					default:
						// Client buffer full - disconnect
						h.drop(client)
					}
				}
			}
		}
	}
}

// drop removes a client and signals its pumps to stop. Only called from Run.
// The send channel stays open so late writers never panic.
func (h *Hub) drop(client *Client) {
	set := h.clients[client.userID]
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.done)
}

// Register hands a client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUsers queues an event for every connection of the given users. A
// duplicate user ID is delivered once.
func (h *Hub) SendToUsers(event *Event, userIDs ...uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "marshal event", "error", err)
		return
	}

	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	unique := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	select {
	case h.direct <- &directMsg{userIDs: unique, data: data}:
	case <-h.done:
	default:
		h.log.Warn(context.Background(), "event dropped, hub queue full", "type", event.Type)
	}
}
