package mapview

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func (r *WSRegistry) viewerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

func TestPublishDropsStalledViewer(t *testing.T) {
	oldWait := writeWait
	writeWait = 50 * time.Millisecond
	t.Cleanup(func() { writeWait = oldWait })

	reg := NewWSRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))

	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		reg.Add(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for reg.viewerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The client never reads; large frames fill the socket buffers until
	// the write deadline fires and the viewer is dropped.
	payload := strings.Repeat("x", 1<<20)
	deadline = time.Now().Add(10 * time.Second)
	for reg.viewerCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("stalled viewer never dropped")
		}
		reg.Publish(Event{Type: EventRoute, Data: payload})
	}
}
