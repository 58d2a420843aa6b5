package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Message defines the shape of a real-time event pushed to the admin stream.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broker is the central hub for managing SSE client connections. Clients are
// admin back-office sessions listening for new leads: contact messages,
// reviews entering the moderation queue, and meeting registrations.
type Broker struct {
	// Client channels keyed by a per-connection id, so the same admin can
	// listen from multiple tabs.
	clients map[string]chan []byte
	mu      sync.RWMutex
	log     *logrus.Logger
}

// NewBroker creates a new Broker instance.
func NewBroker(log *logrus.Logger) *Broker {
	return &Broker{
		clients: make(map[string]chan []byte),
		log:     log,
	}
}

// AddClient registers a new connection with the broker and returns its channel.
func (b *Broker) AddClient(connID string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, 10) // Buffered so a slow client doesn't block publishers
	b.clients[connID] = ch
	b.log.WithField("conn", connID).Debug("SSE client connected")
	return ch
}

// RemoveClient unregisters a connection from the broker.
func (b *Broker) RemoveClient(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[connID]; ok {
		delete(b.clients, connID)
		close(ch)
		b.log.WithField("conn", connID).Debug("SSE client disconnected")
	}
}

// Broadcast sends a message to every connected client. Sends are non-blocking:
// if a client's buffer is full the message is dropped for that client rather
// than stalling the request that produced the event.
func (b *Broker) Broadcast(message Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		b.log.WithError(err).Error("could not marshal SSE message")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for connID, ch := range b.clients {
		select {
		case ch <- jsonMsg:
		default:
			b.log.WithField("conn", connID).Warn("SSE channel full, dropping message")
		}
	}
}
