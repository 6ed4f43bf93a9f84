package hostsim

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Feed envelope types.
const (
	EnvelopeChat      = "chat"
	EnvelopeActionBar = "action_bar"
	EnvelopeOperator  = "operator"
)

// Envelope is one line pushed to feed subscribers. Player is empty for lines
// sent to everyone.
type Envelope struct {
	Type   string `json:"type"`
	Player string `json:"player,omitempty"`
	Text   string `json:"text"`
}

type subscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *subscriber) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Feed fans envelopes out to websocket subscribers. Subscribers are
// read-only; anything they send is discarded.
type Feed struct {
	upgrader websocket.Upgrader

	mu          sync.Mutex
	closed      bool
	subscribers map[*subscriber]struct{}
}

// NewFeed returns a feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: map[*subscriber]struct{}{},
	}
}

// ServeHTTP upgrades the request and streams envelopes until the client goes
// away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hostsim: feed upgrade failed: %v", err)
		return
	}
	sub := &subscriber{conn: conn}
	if !f.add(sub) {
		_ = conn.Close()
		return
	}
	defer func() {
		f.remove(sub)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends env to every subscriber. Subscribers that fail a write are
// dropped.
func (f *Feed) Publish(env Envelope) {
	f.mu.Lock()
	subs := make([]*subscriber, 0, len(f.subscribers))
	for sub := range f.subscribers {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		if err := sub.writeJSON(env); err != nil {
			log.Printf("hostsim: feed write failed: %v", err)
			_ = sub.conn.Close()
			f.remove(sub)
		}
	}
}

// Subscribers counts connected clients.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// Close disconnects every subscriber and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	subs := f.subscribers
	f.subscribers = map[*subscriber]struct{}{}
	f.mu.Unlock()
	for sub := range subs {
		_ = sub.conn.Close()
	}
}

func (f *Feed) add(sub *subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.subscribers[sub] = struct{}{}
	return true
}

func (f *Feed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, sub)
}
