package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	read := func(h http.HandlerFunc) http.Handler { return CorsMiddleware(h) }
	write := func(h http.HandlerFunc) http.Handler { return s.SameOriginMiddleware(h) }

	mux.Handle("GET /api/trace", read(s.HandleStatus))
	mux.Handle("PUT /api/trace/mode", write(s.HandleSetMode))
	mux.Handle("PUT /api/trace/destination", write(s.HandleSetDestination))
	mux.Handle("POST /api/trace/emit", write(s.HandleEmit))
	mux.HandleFunc("GET /api/trace/ws", s.HandleLive)
	mux.Handle("GET /api/lines", read(s.HandleLines))
	mux.Handle("GET /api/search", read(s.HandleSearch))
	mux.Handle("GET /health", read(s.HandleHealth))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("OPTIONS /", CorsMiddleware(http.NotFoundHandler()))
}
