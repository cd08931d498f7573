package realtime

// Broadcaster delivers best-effort realtime events to connected clients.
// The core never depends on a live transport: absence of listeners, or a
// NopBroadcaster, must not affect request outcomes.
type Broadcaster interface {
	// NotifyUser pushes a payload to every connection of the given user
	NotifyUser(userID int64, payload []byte)

	// PublishPost pushes a content-update event keyed by post
	PublishPost(postID int64, payload []byte)

	// PublishCommunity pushes a content-update event keyed by community
	PublishCommunity(communityID int64, payload []byte)
}

// NopBroadcaster discards all events. Used in tests and in deployments
// without a realtime transport.
type NopBroadcaster struct{}

// NotifyUser implements Broadcaster
func (NopBroadcaster) NotifyUser(int64, []byte) {}

// PublishPost implements Broadcaster
func (NopBroadcaster) PublishPost(int64, []byte) {}

// PublishCommunity implements Broadcaster
func (NopBroadcaster) PublishCommunity(int64, []byte) {}
