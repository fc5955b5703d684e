package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tmpim/inkpack"
)

func testFrame(width int) *inkpack.Frame {
	return &inkpack.Frame{
		Width:  width,
		Height: 1,
		Mode:   inkpack.PackBW,
		Planes: [][]byte{bytes.Repeat([]byte{0xFF}, (width+7)/8)},
	}
}

func dial(t *testing.T, m *Manager) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		m.HandleConn(conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func subscribe(t *testing.T, conn *websocket.Conn, sub Subscription) {
	t.Helper()
	if err := conn.WriteJSON(WebsocketControl{ID: "test", Subscription: uint32(sub)}); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
}

func readPacket(t *testing.T, conn *websocket.Conn) (byte, []byte) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty packet")
	}
	return data[0], data[1:]
}

func readFramePacket(t *testing.T, conn *websocket.Conn) *inkpack.Frame {
	t.Helper()
	kind, payload := readPacket(t, conn)
	if kind != PacketFrame {
		t.Fatalf("packet type = %d, want %d", kind, PacketFrame)
	}
	f, err := inkpack.ReadFrame(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	return f
}

func TestIsSubscribedTo(t *testing.T) {
	tests := []struct {
		s, sub Subscription
		want   bool
	}{
		{SubscriptionFrame, SubscriptionFrame, true},
		{SubscriptionFrame, SubscriptionMetadata, false},
		{SubscriptionFrame | SubscriptionMetadata, SubscriptionMetadata, true},
		{SubscriptionFrame, SubscriptionAll, true},
		{0, SubscriptionFrame, false},
	}
	for _, tt := range tests {
		if got := tt.s.IsSubscribedTo(tt.sub); got != tt.want {
			t.Errorf("%b.IsSubscribedTo(%b) = %v, want %v", tt.s, tt.sub, got, tt.want)
		}
	}
}

func TestPublishLatest(t *testing.T) {
	m := NewManager()
	if _, _, ok := m.Latest(); ok {
		t.Fatal("new manager has a frame")
	}

	if err := m.Publish(testFrame(8)); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if err := m.Publish(testFrame(16)); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}

	data, meta, ok := m.Latest()
	if !ok {
		t.Fatal("no frame after Publish")
	}
	if meta.Sequence != 2 || meta.Width != 16 || meta.Planes != 1 || meta.Bytes != len(data) {
		t.Errorf("metadata = %+v", meta)
	}

	if err := m.Publish(&inkpack.Frame{}); err == nil {
		t.Error("expected error publishing an invalid frame")
	}
	if _, meta, _ := m.Latest(); meta.Sequence != 2 {
		t.Errorf("sequence = %d after failed publish, want 2", meta.Sequence)
	}
}

func TestSubscribeReceivesLatestThenUpdates(t *testing.T) {
	m := NewManager()
	m.Publish(testFrame(8))

	conn := dial(t, m)
	subscribe(t, conn, SubscriptionFrame)

	if f := readFramePacket(t, conn); f.Width != 8 {
		t.Errorf("first frame width = %d, want 8", f.Width)
	}

	if err := m.Publish(testFrame(24)); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if f := readFramePacket(t, conn); f.Width != 24 {
		t.Errorf("second frame width = %d, want 24", f.Width)
	}
}

func TestSubscribeMetadata(t *testing.T) {
	m := NewManager()
	m.Publish(testFrame(8))

	conn := dial(t, m)
	subscribe(t, conn, SubscriptionMetadata)

	kind, payload := readPacket(t, conn)
	if kind != PacketMetadata {
		t.Fatalf("packet type = %d, want %d", kind, PacketMetadata)
	}
	var meta Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if meta.Sequence != 1 || meta.Width != 8 || meta.Mode != inkpack.PackBW {
		t.Errorf("metadata = %+v", meta)
	}
}

func waitClients(t *testing.T, m *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for m.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Clients = %d, want %d", m.Clients(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClientRemovedOnClose(t *testing.T) {
	m := NewManager()
	conn := dial(t, m)
	subscribe(t, conn, SubscriptionFrame)
	waitClients(t, m, 1)

	conn.Close()
	waitClients(t, m, 0)
}

func TestBroadcastWhileResubscribing(t *testing.T) {
	m := NewManager()
	conn := dial(t, m)
	subscribe(t, conn, SubscriptionMetadata)
	waitClients(t, m, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			err := conn.WriteJSON(WebsocketControl{
				ID:           fmt.Sprintf("display-%d", i),
				Subscription: uint32(SubscriptionMetadata),
			})
			if err != nil {
				return
			}
		}
		conn.Close()
	}()

	for i := 0; i < 50; i++ {
		if err := m.Publish(testFrame(8)); err != nil {
			t.Fatalf("expected nil error, but got %v", err)
		}
	}
	<-done
	waitClients(t, m, 0)
}
