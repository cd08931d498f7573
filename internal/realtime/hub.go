package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/pkg/logging"
)

// topic identifies a subscription stream: a user's notification feed, a
// post's update stream or a community's update stream
type topic struct {
	kind string // "user", "post", "community"
	id   int64
}

// Hub maintains the set of active clients and routes events to them.
// It implements Broadcaster.
type Hub struct {
	// Registered clients per topic
	clients map[topic]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	events     chan event

	logger *zap.Logger
	mu     sync.RWMutex
}

type event struct {
	topic   topic
	payload []byte
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[topic]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan event, 256),
		logger:     logging.GetLogger().With(zap.String("component", "realtime-hub")),
	}
}

// Run starts the hub's processing loop
func (h *Hub) Run() {
	h.logger.Info("Realtime hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			for _, t := range client.topics {
				if _, ok := h.clients[t]; !ok {
					h.clients[t] = make(map[*Client]bool)
				}
				h.clients[t][client] = true
			}
			h.mu.Unlock()
			h.logger.Debug("Client registered", zap.Int64("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			for _, t := range client.topics {
				if subscribers, ok := h.clients[t]; ok {
					if _, stillThere := subscribers[client]; stillThere {
						delete(subscribers, client)
						if len(subscribers) == 0 {
							delete(h.clients, t)
						}
					}
				}
			}
			h.mu.Unlock()
			close(client.send)
			h.logger.Debug("Client unregistered", zap.Int64("user_id", client.userID))

		case ev := <-h.events:
			h.mu.RLock()
			for client := range h.clients[ev.topic] {
				select {
				case client.send <- ev.payload:
				default:
					// Slow consumer; drop rather than block the hub
					h.logger.Warn("Send buffer full, dropping event",
						zap.Int64("user_id", client.userID))
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(t topic, payload []byte) {
	select {
	case h.events <- event{topic: t, payload: payload}:
	default:
		h.logger.Warn("Event queue full, dropping event",
			zap.String("topic_kind", t.kind),
			zap.Int64("topic_id", t.id))
	}
}

// NotifyUser implements Broadcaster
func (h *Hub) NotifyUser(userID int64, payload []byte) {
	h.publish(topic{kind: "user", id: userID}, payload)
}

// PublishPost implements Broadcaster
func (h *Hub) PublishPost(postID int64, payload []byte) {
	h.publish(topic{kind: "post", id: postID}, payload)
}

// PublishCommunity implements Broadcaster
func (h *Hub) PublishCommunity(communityID int64, payload []byte) {
	h.publish(topic{kind: "community", id: communityID}, payload)
}

// SubscriberCount returns the number of connections on a user's stream
func (h *Hub) SubscriberCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic{kind: "user", id: userID}])
}

// Envelope wraps a realtime payload with its event name
func Envelope(eventName string, data interface{}) []byte {
	payload, err := json.Marshal(map[string]interface{}{
		"event": eventName,
		"data":  data,
	})
	if err != nil {
		return nil
	}
	return payload
}
