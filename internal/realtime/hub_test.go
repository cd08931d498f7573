package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNopBroadcaster(t *testing.T) {
	// Must be safe to call with no transport behind it
	var b Broadcaster = NopBroadcaster{}
	b.NotifyUser(1, []byte("x"))
	b.PublishPost(2, []byte("y"))
	b.PublishCommunity(3, []byte("z"))
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No listener registered; publishing must not block or panic
	hub.NotifyUser(99, []byte("hello"))
	hub.PublishPost(1, []byte("update"))
	hub.PublishCommunity(2, []byte("update"))
}

func TestHubRegisterAndDeliver(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, 7, nil)

	// Wait for the hub loop to process registration
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(7) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.NotifyUser(7, []byte("ping"))

	select {
	case payload := <-client.send:
		if string(payload) != "ping" {
			t.Errorf("Expected payload ping, got %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Event was never delivered to subscriber")
	}

	// Events for other users must not reach this client
	hub.NotifyUser(8, []byte("other"))
	select {
	case payload := <-client.send:
		t.Errorf("Unexpected delivery of other user's event: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

// A client watching a post stream receives events published to it.
func TestHubPostSubscription(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, 7, nil, WatchPost(3), WatchCommunity(11))

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(7) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.PublishPost(3, []byte("post-update"))
	select {
	case payload := <-client.send:
		if string(payload) != "post-update" {
			t.Errorf("Expected payload post-update, got %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Post event was never delivered to watcher")
	}

	hub.PublishCommunity(11, []byte("community-update"))
	select {
	case payload := <-client.send:
		if string(payload) != "community-update" {
			t.Errorf("Expected payload community-update, got %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Community event was never delivered to watcher")
	}

	// Other posts' events must not reach this client
	hub.PublishPost(4, []byte("other"))
	select {
	case payload := <-client.send:
		t.Errorf("Unexpected delivery of other post's event: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEnvelope(t *testing.T) {
	payload := Envelope("notification", map[string]interface{}{"id": 1})
	if payload == nil {
		t.Fatal("Envelope() returned nil")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Envelope() produced invalid JSON: %v", err)
	}
	if decoded["event"] != "notification" {
		t.Errorf("Expected event notification, got %v", decoded["event"])
	}
}
