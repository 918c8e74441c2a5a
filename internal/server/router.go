package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lewisedginton/local_places/pkg/httpmiddleware"
)

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.log.HTTPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(s.cfg.HTTP.RequestTimeout))
	r.Use(httpmiddleware.CORS(httpmiddleware.OpenCORSConfig()))
	r.Use(httpmiddleware.Security(nil))
	r.Use(s.metrics.HTTPMiddleware())

	r.Get("/health", s.handleHealth)
	r.Get("/api", s.handleAPIInfo)
	r.Get("/api/places", s.handleListPlaces)
	r.Post("/api/chat", s.handleChat)
	r.Post("/api/chat/reset", s.handleChatReset)

	r.Handle("/*", s.staticHandler())

	return r
}
