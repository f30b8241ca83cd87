package mapview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single viewer write; a stalled connection is
// dropped rather than left blocking the publisher.
var writeWait = 5 * time.Second

// viewerSession wraps one UI connection; writes are serialized.
type viewerSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *viewerSession) send(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(e)
}

// WSRegistry fans map events out to every connected viewer. A failed
// write drops the viewer; rendering has no acknowledgement path.
type WSRegistry struct {
	logger *slog.Logger

	mu      sync.RWMutex
	nextID  int
	viewers map[int]*viewerSession
}

func NewWSRegistry(logger *slog.Logger) *WSRegistry {
	return &WSRegistry{logger: logger, viewers: make(map[int]*viewerSession)}
}

// Add registers a connection and returns a remove func for teardown.
func (r *WSRegistry) Add(conn *websocket.Conn) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.viewers[id] = &viewerSession{conn: conn}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.viewers, id)
		r.mu.Unlock()
		_ = conn.Close()
	}
}

func (r *WSRegistry) Publish(e Event) {
	r.mu.RLock()
	sessions := make([]*viewerSession, 0, len(r.viewers))
	ids := make([]int, 0, len(r.viewers))
	for id, s := range r.viewers {
		sessions = append(sessions, s)
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for i, s := range sessions {
		if err := s.send(e); err != nil {
			r.logger.Warn("viewer write failed, dropping", "error", err)
			r.mu.Lock()
			delete(r.viewers, ids[i])
			r.mu.Unlock()
		}
	}
}
