// Package api is the HTTP surface of the board.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"noteboard/auth"
	"noteboard/services"
)

// NewRouter builds the HTTP router. Reads are open; anything that acts as a
// caller requires a bearer token.
func NewRouter(log *slog.Logger, board services.IBoardService, authenticator auth.Authenticator) http.Handler {
	r := chi.NewRouter()
	h := NewBoardHandler(log, board)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fee", h.GetFee)
		r.Get("/notes/count", h.CountNotes)
		r.Get("/notes/last", h.LastNoteID)
		r.Get("/notes/{id}", h.GetNote)
		r.Get("/accounts/{addr}/balance", h.GetBalance)
		r.Get("/accounts/{addr}/allowance", h.GetAllowance)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(authenticator))
			r.Post("/notes", h.StoreNote)
			r.Post("/notes/permit", h.PermitAndStoreNote)
			r.Put("/fee", h.SetFee)
			r.Post("/withdraw", h.Withdraw)
		})
	})

	return r
}
