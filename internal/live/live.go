// Package live streams tournament progress to WebSocket subscribers. The
// runner stays unaware of the transport; the command wires its completion
// callback to BroadcastPair.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

// EventType represents the type of a tournament event broadcast via WebSockets.
type EventType string

// Constants defining the Event types used for WebSocket communication.
const (
	EventRunStart   EventType = "run_start"   // A tournament run began; includes the roster.
	EventPairResult EventType = "pair_result" // One pairing finished all six modes.
	EventRunEnd     EventType = "run_end"     // The run finished; includes final standings.
)

// Event is the standard structure for broadcasting tournament progress.
type Event struct {
	Type      EventType              `json:"type"`
	RunID     string                 `json:"run_id,omitempty"`
	Players   []string               `json:"players,omitempty"`
	Pair      *tournament.PairResult `json:"pair,omitempty"`
	Standings []tournament.Standing  `json:"standings,omitempty"`
}

const (
	defaultSubscriberBuffer = 16
	writeWait               = 5 * time.Second
)

type subscriber struct {
	events    chan []byte
	closeSlow func()
}

// Hub fans events out to connected subscribers. A subscriber that cannot
// keep up with the broadcast rate is disconnected rather than allowed to
// stall the rest.
type Hub struct {
	// SubscriberBuffer is the number of queued events a subscriber may
	// fall behind before it is dropped. Set before serving.
	SubscriberBuffer int

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

// NewHub returns a hub with the default subscriber buffer.
func NewHub() *Hub {
	return &Hub{
		SubscriberBuffer: defaultSubscriberBuffer,
		subscribers:      make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debugf("live: accept failed: %v", err)
		return
	}
	defer c.CloseNow()

	if err := h.stream(r.Context(), c); err != nil && websocket.CloseStatus(err) == -1 && err != context.Canceled {
		log.Debugf("live: subscriber dropped: %v", err)
	}
}

// stream registers the connection and forwards queued events to it. Incoming
// frames are discarded; CloseRead cancels the context when the client goes
// away.
func (h *Hub) stream(ctx context.Context, c *websocket.Conn) error {
	sub := &subscriber{
		events: make(chan []byte, h.SubscriberBuffer),
		closeSlow: func() {
			c.Close(websocket.StatusPolicyViolation, "subscriber too slow to keep up")
		},
	}
	h.add(sub)
	defer h.remove(sub)

	ctx = c.CloseRead(ctx)
	for {
		select {
		case data := <-sub.events:
			if err := writeTimeout(ctx, writeWait, c, data); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Broadcast queues an event for every subscriber. Subscribers with full
// buffers are closed.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("live: marshal %s event: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.events <- data:
		default:
			go sub.closeSlow()
		}
	}
}

// BroadcastStart announces a new run and its roster.
func (h *Hub) BroadcastStart(runID string, players []string) {
	h.Broadcast(Event{Type: EventRunStart, RunID: runID, Players: players})
}

// BroadcastPair announces one finished pairing.
func (h *Hub) BroadcastPair(pair tournament.PairResult) {
	h.Broadcast(Event{Type: EventPairResult, Pair: &pair})
}

// BroadcastEnd announces the final standings of a run.
func (h *Hub) BroadcastEnd(res *tournament.Result) {
	h.Broadcast(Event{Type: EventRunEnd, RunID: res.RunID, Standings: res.Standings})
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}

func (h *Hub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, data)
}
