package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/app"
)

// NewServer wires routes and returns an http.Handler. The service's broadcast
// renderer is pointed at the board fragment so SSE pushes full board swaps.
func NewServer(s *app.Service, defaultRedeals int) http.Handler {
	r := chi.NewRouter()
	h := &handlers{svc: s, tpl: loadTemplates(), defaultRedeals: defaultRedeals}
	s.SetRenderer(h.renderBoard)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/click", h.click)
		r.Post("/stock", h.action(s.DrawFromStock))
		r.Post("/undo", h.action(s.Undo))
		r.Post("/redeal", h.action(s.Redeal))
		r.Post("/new", h.action(s.NewGame))
		r.Get("/events", h.events)
	})
	return r
}
