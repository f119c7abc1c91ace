package realtime

// Package realtime provides an in-process publish/subscribe hub that fans
// emitted trace lines out to live listeners (e.g. WebSocket sessions).
//
// The hub is an io.Writer, so it is handed to the trace sink as a borrowed
// destination. Every Write is one complete line because the sink writes each
// emission in a single call.
//
// Design Goals:
//   - Best-effort fan-out: slow listeners drop lines (never backpressure the
//     sink, whose lock is held during Write).
//   - No persistence or replay semantics (ephemeral stream).

import (
	"sync"
	"time"
)

// LineEvent is a single emitted trace line.
type LineEvent struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Hub is an in-memory fan-out dispatcher. Each registered listener receives
// lines via its own buffered channel. If a listener's channel buffer is full
// when a line arrives, that line is *dropped for that listener only*.
//
// The hub is concurrency-safe.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan LineEvent
	nextID    uint64
	seq       uint64
	bufSize   int
	dropped   uint64
}

// NewHub constructs a new hub with per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan LineEvent),
		bufSize:   bufSize,
	}
}

// Register adds a new listener and returns (listenerID, receiveOnlyChannel).
// Callers must later Unregister(id) to release resources.
func (h *Hub) Register() (uint64, <-chan LineEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan LineEvent, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener with the given id and closes its channel.
// It is safe to call multiple times; unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Write broadcasts p as one line to all listeners (best effort). It never
// fails. Trailing line terminators are stripped from the event text.
func (h *Hub) Write(p []byte) (int, error) {
	text := string(p)
	for len(text) > 0 && (text[len(text)-1] == '\n' || text[len(text)-1] == '\r') {
		text = text[:len(text)-1]
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	ev := LineEvent{Seq: h.seq, Time: time.Now().UTC(), Text: text}
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// Drop for slow listener.
			h.dropped++
		}
	}
	return len(p), nil
}

// Size returns the current number of active listeners (approximate).
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Dropped returns how many deliveries were skipped for slow listeners.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}
