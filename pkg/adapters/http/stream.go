package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
)

// DatasetEvent is pushed to /events subscribers when a dataset changes.
type DatasetEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Filename  string `json:"filename,omitempty"`
}

// StreamManager fans dataset events out to SSE connections. Subscribers of
// the empty session ID receive the events of every session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			subs := sm.subscribers[sessionID]
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		})
	}
}

// Broadcast sends e to the subscribers of its session and to global
// subscribers. Slow clients drop messages.
func (sm *StreamManager) Broadcast(e DatasetEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	msg := string(payload)

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, key := range []string{e.SessionID, ""} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", e.SessionID)
			}
		}
		if e.SessionID == "" {
			break
		}
	}
}

// SubscribeEvents handles GET /events as a server-sent event stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
