package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/trace"
	"github.com/rubiojr/tracesink/pkg/version"
)

func (s *Server) status() StatusResponse {
	dest := "unset"
	if s.sink.Destination() != nil {
		dest = "borrowed"
		if s.sink.Owned() {
			dest = "owned"
		}
	}
	mode := s.sink.Mode()
	return StatusResponse{
		Mode:        mode.String(),
		ModeValue:   uint32(mode),
		Destination: dest,
		LineEnding:  s.sink.LineEnding().String(),
		Listeners:   s.hub.Size(),
	}
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	mode, err := trace.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid mode", err.Error())
		return
	}
	s.sink.SetMode(mode)
	metricConfigChanges.WithLabelValues("mode").Inc()
	log.ForService("api").Infof("mode set to %s", mode)

	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) HandleSetDestination(w http.ResponseWriter, r *http.Request) {
	var req DestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if req.Path == "" {
		if err := s.sink.SetDestination(s.tap); err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to set destination", err.Error())
			return
		}
	} else if err := s.sink.SetDestinationPath(req.Path, req.Append); err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to open destination", err.Error())
		return
	}
	metricConfigChanges.WithLabelValues("destination").Inc()

	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) HandleEmit(w http.ResponseWriter, r *http.Request) {
	var req EmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "Missing message", "message must not be empty")
		return
	}
	s.sink.Emit(req.Prefix, req.Module, "%s", req.Message)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleLines(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "Archive disabled", "server.archive is not configured")
		return
	}
	lines, err := s.archive.Recent(parseLimit(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read archive", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, LinesResponse{Lines: lines, Count: len(lines)})
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "Archive disabled", "server.archive is not configured")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}
	lines, err := s.archive.Search(query, parseLimit(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, LinesResponse{Lines: lines, Count: len(lines), Query: query})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func parseLimit(r *http.Request) int {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return limit
}
