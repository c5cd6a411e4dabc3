package app

import (
	"sync"
	"time"
)

// Event types published on a session's stream.
const (
	EventSubscribed        = "subscribed"
	EventAnswerRecorded    = "answer_recorded"
	EventMatchComputed     = "match_computed"
	EventUploadStored      = "upload_stored"
	EventPortraitGenerated = "portrait_generated"
)

// Event is a progress notification for one session.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}

// EventHub fans session events out to subscribers.
type EventHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan Event]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns a channel of events for sessionID.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *EventHub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[sessionID]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[sessionID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
	return ch, cancel
}

// Publish delivers e to every subscriber of its session without blocking.
func (h *EventHub) Publish(e Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[e.SessionID] {
		select {
		case ch <- e:
		default:
			// Drop the oldest event so a slow reader never blocks publishers.
			select {
			case <-ch:
			default:
			}
			ch <- e
		}
	}
}

// Subscribers reports how many streams are open for sessionID.
func (h *EventHub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[sessionID])
}
