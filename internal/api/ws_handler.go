package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// serveWebsocket upgrades the connection and subscribes the caller to their
// notification topic, plus any post or community streams named in the
// comma-separated "posts" and "communities" query params. Runs behind Auth,
// so the user id is already known.
func (r *Router) serveWebsocket(c *gin.Context) {
	if r.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "realtime channel is not enabled"})
		return
	}

	var subs []realtime.Subscription
	for _, id := range splitIDs(c.Query("posts")) {
		subs = append(subs, realtime.WatchPost(id))
	}
	for _, id := range splitIDs(c.Query("communities")) {
		subs = append(subs, realtime.WatchCommunity(id))
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(r.hub, currentUserID(c), conn, subs...)
	go client.WritePump()
	go client.ReadPump()
}

// splitIDs parses a comma-separated id list, dropping anything malformed
func splitIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
