// Package eventstream broadcasts JobDriver state transitions to
// connected dashboards over WebSocket. It generalizes the teacher's
// spotifysearch.ConnectionManager — a single inbound extension
// connection with a ping loop and a pending-request map — into a
// fan-out hub serving any number of subscribers, none of which send
// anything back.
package eventstream

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cronforge/chronod/internal/jobdriver"
)

const (
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// DriverEvent is one state-transition notification broadcast to every
// connected subscriber.
type DriverEvent struct {
	DriverName string          `json:"driver_name"`
	State      jobdriver.State `json:"state"`
	OccurredAt time.Time       `json:"occurred_at"`
	RunID      string          `json:"run_id,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan DriverEvent
}

// Hub fans out DriverEvents to every currently-connected subscriber. It
// satisfies jobdriver.EventSink.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// Publish satisfies jobdriver.EventSink: it fans the event out to every
// connected subscriber, dropping it for any subscriber whose send buffer
// is full rather than blocking the caller (a JobDriver's own goroutine).
func (h *Hub) Publish(driverName string, state jobdriver.State, occurredAt time.Time, runID string) {
	event := DriverEvent{DriverName: driverName, State: state, OccurredAt: occurredAt, RunID: runID}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- event:
		default:
			log.Printf("eventstream: dropping event for slow subscriber")
		}
	}
}

// Serve upgrades conn's ownership to the Hub: it registers a subscriber,
// starts its write loop and ping loop, and blocks reading (and
// discarding) inbound frames until the connection closes, at which
// point it deregisters and returns. Callers run Serve in its own
// goroutine per accepted connection.
func (h *Hub) Serve(conn *websocket.Conn) {
	sub := &subscriber{conn: conn, send: make(chan DriverEvent, sendBuffer)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	stopPing := make(chan struct{})
	go h.writeLoop(sub, stopPing)

	defer func() {
		close(stopPing)
		h.mu.Lock()
		delete(h.subscribers, sub)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-sub.send:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("eventstream: marshal event: %v", err)
				continue
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// SubscriberCount reports how many clients are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
