package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"bot/app/models"
	"bot/app/session"
	"bot/pkg/response"
	"bot/pkg/web"
)

const (
	apiPrefix = "/api/v1"
)

// Rest is the operational HTTP surface of the bot process.
type Rest struct {
	Router    chi.Router
	Sessions  session.Service
	StartedAt time.Time
}

func (s *Rest) Route() {
	s.Router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/stats", s.stats)
	})
	s.Router.NotFound(s.notFound)
}

func (s *Rest) health(w http.ResponseWriter, r *http.Request) {
	web.RenderResult(w, r, &models.Health{Status: "ok"})
}

func (s *Rest) stats(w http.ResponseWriter, r *http.Request) {
	active, err := s.Sessions.Active(r.Context())
	if err != nil {
		web.RenderError(w, r, response.NewError(
			response.CodeUnavailable, "failed to count active sessions",
		).SetInternal(err))
		return
	}

	web.RenderResult(w, r, &models.Stats{
		ActiveSessions: active,
		Uptime:         time.Since(s.StartedAt).String(),
	})
}

func (s *Rest) notFound(w http.ResponseWriter, r *http.Request) {
	web.RenderError(w, r, response.NewError(response.CodeNotFound, "resource not found"))
}
