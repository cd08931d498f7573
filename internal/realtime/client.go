package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound buffer per connection
	sendBufferSize = 64
)

// Client is a middleman between one websocket connection and the hub
type Client struct {
	hub    *Hub
	userID int64
	topics []topic
	conn   *websocket.Conn
	send   chan []byte
}

// Subscription names an additional stream a client wants beyond its own
// notification feed
type Subscription struct {
	kind string
	id   int64
}

// WatchPost subscribes to a post's update stream
func WatchPost(postID int64) Subscription {
	return Subscription{kind: "post", id: postID}
}

// WatchCommunity subscribes to a community's update stream
func WatchCommunity(communityID int64) Subscription {
	return Subscription{kind: "community", id: communityID}
}

// NewClient attaches a websocket connection to the hub, subscribed to the
// user's own notification stream plus any extra subscriptions. Callers must
// start both pumps.
func NewClient(hub *Hub, userID int64, conn *websocket.Conn, subs ...Subscription) *Client {
	topics := []topic{{kind: "user", id: userID}}
	for _, sub := range subs {
		topics = append(topics, topic{kind: sub.kind, id: sub.id})
	}
	client := &Client{
		hub:    hub,
		userID: userID,
		topics: topics,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	hub.register <- client
	return client
}

// ReadPump pumps control messages from the websocket connection. Clients do
// not send application data; the pump exists to detect disconnects and
// answer pings.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Websocket read error",
					zap.Int64("user_id", c.userID),
					zap.Error(err))
			}
			break
		}
	}
}

// WritePump pumps events from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
