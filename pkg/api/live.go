package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/storage"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     originAllowed,
}

// HandleLive upgrades to a websocket that first receives an init message
// with the most recent archived lines (when archiving is enabled) and then
// one message per emitted line.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	l := log.ForService("api")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, lines := s.hub.Register()
	defer s.hub.Unregister(id)
	metricLiveClients.Inc()
	defer metricLiveClients.Dec()

	hello := wsMessage{Type: "init", Lines: []storage.Line{}}
	if s.archive != nil {
		if recent, err := s.archive.Recent(parseLimit(r)); err == nil {
			hello.Lines = recent
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		l.Debugf("websocket init write: %v", err)
		return
	}

	// Inbound data is ignored; a read error means the client went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-lines:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsMessage{Type: "line", Line: &ev}); err != nil {
				l.Debugf("websocket write: %v", err)
				return
			}
		}
	}
}
