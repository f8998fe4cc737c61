// Package live streams project change events to open builder canvases over
// websockets. The Hub fans events out in-process; Serve runs one
// connection.
package live

import (
	"log/slog"
	"sync"
	"time"
)

// Event types sent to subscribers.
const (
	EventHello            = "hello"
	EventProjectSaved     = "project.saved"
	EventCodeGenerated    = "code.generated"
	EventBackendGenerated = "backend.generated"
	EventProjectDeleted   = "project.deleted"
)

// bufferSize is the number of events queued per subscriber before new
// events are dropped for it.
const bufferSize = 16

// Event is one message on the live channel.
type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId"`
	Version   int       `json:"version,omitempty"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}

type subscriber struct {
	ch chan Event
}

// Hub keeps per-project subscriber sets.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in a project. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(projectID string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, bufferSize)}

	h.mu.Lock()
	set, ok := h.subs[projectID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[projectID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[projectID], s)
			if len(h.subs[projectID]) == 0 {
				delete(h.subs, projectID)
			}
			close(s.ch)
		})
	}
}

// Publish delivers evt to every subscriber of the project without
// blocking. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(projectID string, evt Event) {
	evt.ProjectID = projectID
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[projectID] {
		select {
		case s.ch <- evt:
		default:
			slog.Warn("live event dropped for slow subscriber", "project", projectID, "type", evt.Type)
		}
	}
}

// Subscribers returns the number of open subscriptions for a project.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[projectID])
}
