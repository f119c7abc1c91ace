package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/realtime"
	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/rubiojr/tracesink/pkg/trace"
)

type Server struct {
	sink    *trace.Sink
	hub     *realtime.Hub
	archive *storage.Archive // nil when archiving is disabled
	tap     io.Writer
}

// NewServer builds the API around a running sink. archive may be nil.
// extra writers (usually the console) receive every tapped line too.
func NewServer(sink *trace.Sink, hub *realtime.Hub, archive *storage.Archive, extra ...io.Writer) *Server {
	writers := append([]io.Writer{hub}, extra...)
	if archive != nil {
		writers = append(writers, archive)
	}
	return &Server{
		sink:    sink,
		hub:     hub,
		archive: archive,
		tap:     countingWriter{w: io.MultiWriter(writers...)},
	}
}

// Tap is the writer to install as the sink's borrowed destination. It fans
// every line out to live clients, the archive and the extra writers.
func (s *Server) Tap() io.Writer {
	return s.tap
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.ForService("api").Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

// CorsMiddleware opens a read-only handler to every origin. It must only
// wrap GET routes; mutating routes go through SameOriginMiddleware.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SameOriginMiddleware refuses browser requests sent from another origin.
// Requests without an Origin header (curl, the CLI) pass.
func (s *Server) SameOriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !originAllowed(r) {
			log.ForService("api").Warnf("refused %s %s from origin %s", r.Method, r.URL.Path, r.Header.Get("Origin"))
			s.writeError(w, http.StatusForbidden, "Forbidden", "cross-origin requests may not change the sink")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originAllowed reports whether r has no Origin or one naming the host it
// was sent to.
func originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host != "" && strings.EqualFold(u.Host, r.Host)
}
