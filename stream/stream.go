// Package stream fans packed frames out to display clients connected over
// websockets. A client subscribes by sending a JSON control message and then
// receives binary packets: one type byte followed by the payload.
package stream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tmpim/inkpack"
)

// Subscription is a set of packet kinds a client wants to receive.
type Subscription uint32

// Possible subscription flags.
const (
	SubscriptionFrame = Subscription(1 << iota)
	SubscriptionMetadata
	// SubscriptionAll, used as a broadcast target, reaches every client.
	SubscriptionAll = Subscription(0)
)

// Possible packet types.
const (
	PacketFrame = iota + 1
	PacketMetadata
)

const writeTimeout = 5 * time.Second

// WebsocketControl is the message a client sends to (re)subscribe.
type WebsocketControl struct {
	ID           string `json:"id"`
	Subscription uint32 `json:"subscription"`
}

// IsSubscribedTo returns whether or not the client subscription is subscribed
// to the given subscription.
func (s Subscription) IsSubscribedTo(sub Subscription) bool {
	return (s & sub) == sub
}

// Metadata describes the latest published frame.
type Metadata struct {
	Sequence  uint64           `json:"sequence"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Mode      inkpack.PackMode `json:"mode"`
	Planes    int              `json:"planes"`
	Bytes     int              `json:"bytes"`
	Published time.Time        `json:"published"`
}

// Client is a websocket connected client.
type Client struct {
	mutex         sync.Mutex
	id            string
	conn          *websocket.Conn
	subscriptions Subscription
}

func (c *Client) send(data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Manager tracks connected clients and the latest published frame.
type Manager struct {
	clientsMutex sync.Mutex
	clients      []*Client

	frameMutex sync.RWMutex
	latest     []byte
	meta       Metadata
}

// NewManager returns a manager with no clients and no frame.
func NewManager() *Manager {
	return &Manager{}
}

// Publish stores f as the latest frame and broadcasts it to frame
// subscribers, followed by its metadata to metadata subscribers.
func (m *Manager) Publish(f *inkpack.Frame) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	m.frameMutex.Lock()
	m.latest = data
	m.meta = Metadata{
		Sequence:  m.meta.Sequence + 1,
		Width:     f.Width,
		Height:    f.Height,
		Mode:      f.Mode,
		Planes:    len(f.Planes),
		Bytes:     len(data),
		Published: time.Now(),
	}
	meta := m.meta
	m.frameMutex.Unlock()

	inkpack.Logger().Debug("stream: publish",
		"sequence", meta.Sequence, "bytes", meta.Bytes, "clients", m.Clients())

	m.Broadcast(SubscriptionFrame, append([]byte{PacketFrame}, data...))
	if d, err := json.Marshal(meta); err == nil {
		m.Broadcast(SubscriptionMetadata, append([]byte{PacketMetadata}, d...))
	}
	return nil
}

// Latest returns the most recently published frame encoding.
func (m *Manager) Latest() ([]byte, Metadata, bool) {
	m.frameMutex.RLock()
	defer m.frameMutex.RUnlock()
	return m.latest, m.meta, m.latest != nil
}

// Clients returns the number of connected clients.
func (m *Manager) Clients() int {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()
	return len(m.clients)
}

// Broadcast sends each payload to every client subscribed to sub. Clients
// that fail to receive are disconnected.
func (m *Manager) Broadcast(sub Subscription, data ...[]byte) {
	m.clientsMutex.Lock()
	clientCopy := make([]*Client, len(m.clients))
	copy(clientCopy, m.clients)
	m.clientsMutex.Unlock()

	for _, client := range clientCopy {
		client.mutex.Lock()
		id := client.id
		subscribed := client.subscriptions.IsSubscribedTo(sub)
		client.mutex.Unlock()
		if !subscribed {
			continue
		}

		for _, d := range data {
			if err := client.send(d); err != nil {
				inkpack.Logger().Warn("stream: dropping client", "id", id, "err", err)
				client.conn.Close()
				m.remove(client)
				break
			}
		}
	}
}

func (m *Manager) remove(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for i, c := range m.clients {
		if c == client {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return
		}
	}
}

// HandleConn serves a client until its connection closes. Subscribing to
// frames delivers the latest frame straight away.
func (m *Manager) HandleConn(conn *websocket.Conn) {
	client := &Client{conn: conn}

	m.clientsMutex.Lock()
	m.clients = append(m.clients, client)
	m.clientsMutex.Unlock()

	defer m.remove(client)
	defer conn.Close()

	inkpack.Logger().Info("stream: client connected", "remote", conn.RemoteAddr().String())

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			inkpack.Logger().Info("stream: client disconnected", "id", client.id, "err", err)
			return
		}

		if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
			continue
		}

		var control WebsocketControl
		if err := json.Unmarshal(data, &control); err != nil {
			inkpack.Logger().Warn("stream: bad control message", "err", err)
			continue
		}

		sub := Subscription(control.Subscription)
		client.mutex.Lock()
		client.id = control.ID
		client.subscriptions = sub
		client.mutex.Unlock()

		latest, meta, ok := m.Latest()
		if !ok {
			continue
		}
		if sub.IsSubscribedTo(SubscriptionFrame) {
			if err := client.send(append([]byte{PacketFrame}, latest...)); err != nil {
				return
			}
		}
		if sub.IsSubscribedTo(SubscriptionMetadata) {
			d, err := json.Marshal(meta)
			if err == nil {
				err = client.send(append([]byte{PacketMetadata}, d...))
			}
			if err != nil {
				return
			}
		}
	}
}
