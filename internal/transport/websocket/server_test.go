package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T, userFor func(r *http.Request) int64) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userFor(r))
	}))
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+query, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	return conn
}

func userOne(*http.Request) int64 { return 1 }

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, server, cancel := startHub(t, userOne)
	defer cancel()
	defer server.Close()

	conn := dial(t, server, "")
	time.Sleep(100 * time.Millisecond)

	if n := hub.ConnectionCount(1); n != 1 {
		t.Fatalf("Expected 1 connection, got %d", n)
	}
	if n := hub.UserCount(); n != 1 {
		t.Fatalf("Expected 1 user, got %d", n)
	}

	conn.Close()
	time.Sleep(100 * time.Millisecond)

	if n := hub.ConnectionCount(1); n != 0 {
		t.Fatalf("Connection should be unregistered, got %d", n)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub, server, cancel := startHub(t, userOne)
	defer cancel()
	defer server.Close()

	conn := dial(t, server, "")
	defer conn.Close()
	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(1, &Message{
		Type:    TypeCollectProgress,
		Channel: "collect_progress#1",
		Data:    map[string]interface{}{"progress": 50},
	})

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != TypeCollectProgress {
		t.Errorf("Expected type %q, got %q", TypeCollectProgress, received.Type)
	}
	if received.Channel != "collect_progress#1" {
		t.Errorf("Expected channel 'collect_progress#1', got '%s'", received.Channel)
	}
	if received.UserID != 1 {
		t.Errorf("Expected userID 1, got %d", received.UserID)
	}
}

func TestHub_MultipleConnections(t *testing.T) {
	hub, server, cancel := startHub(t, userOne)
	defer cancel()
	defer server.Close()

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conn := dial(t, server, "")
		conns = append(conns, conn)
		defer conn.Close()
	}
	time.Sleep(100 * time.Millisecond)

	if n := hub.ConnectionCount(1); n != 3 {
		t.Fatalf("Expected 3 connections, got %d", n)
	}

	hub.Broadcast(1, &Message{Type: TypeCollectComplete, Data: map[string]interface{}{"id": "collects:1"}})

	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(idx int, c *websocket.Conn) {
			defer wg.Done()
			c.SetReadDeadline(time.Now().Add(1 * time.Second))
			var received Message
			if err := c.ReadJSON(&received); err != nil {
				t.Errorf("Connection %d failed to read message: %v", idx, err)
				return
			}
			if received.Type != TypeCollectComplete {
				t.Errorf("Connection %d: Expected type %q, got %q", idx, TypeCollectComplete, received.Type)
			}
		}(i, conn)
	}
	wg.Wait()
}

func TestHub_DifferentUsers(t *testing.T) {
	hub, server, cancel := startHub(t, func(r *http.Request) int64 {
		if r.URL.Query().Get("user_id") == "2" {
			return 2
		}
		return 1
	})
	defer cancel()
	defer server.Close()

	conn1 := dial(t, server, "?user_id=1")
	defer conn1.Close()
	conn2 := dial(t, server, "?user_id=2")
	defer conn2.Close()
	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(1, &Message{Type: TypeCollectFailed, Data: map[string]interface{}{"message": "boom"}})

	conn1.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received1 Message
	if err := conn1.ReadJSON(&received1); err != nil {
		t.Fatalf("User 1 failed to read message: %v", err)
	}
	if received1.Type != TypeCollectFailed {
		t.Errorf("User 1: Expected type %q, got %q", TypeCollectFailed, received1.Type)
	}

	conn2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var received2 Message
	if err := conn2.ReadJSON(&received2); err == nil {
		t.Error("User 2 should not receive message for user 1")
	}
}

func TestHub_BroadcastChannelFull(t *testing.T) {
	hub := NewHub()
	hub.broadcast = make(chan *Message, 1)

	hub.broadcast <- &Message{Type: "fill"}

	hub.Broadcast(1, &Message{Type: "dropped"})

	msg := <-hub.broadcast
	if msg.Type != "fill" {
		t.Fatalf("expected the queued message, got %q", msg.Type)
	}
	select {
	case msg := <-hub.broadcast:
		t.Fatalf("message %q should have been dropped", msg.Type)
	default:
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub("https://collect.example.com")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, 1)
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	if _, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], header); err == nil {
		t.Fatal("expected handshake to fail for a foreign origin")
	}

	header.Set("Origin", "https://collect.example.com")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], header)
	if err != nil {
		t.Fatalf("allowed origin should connect: %v", err)
	}
	conn.Close()
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	_, server, cancel := startHub(t, userOne)
	defer server.Close()

	conn := dial(t, server, "")
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(100 * time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("Expected connection to be closed after hub shutdown")
	}
	conn.Close()
}
