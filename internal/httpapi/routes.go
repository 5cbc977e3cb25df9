package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/registry"
	"github.com/wordarena/word-arena-backend/internal/words"
	"github.com/wordarena/word-arena-backend/internal/ws"
)

// SetupRoutes builds the router with the registry and word bank injected.
func SetupRoutes(reg *registry.Registry, bank *words.Bank, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/words/validate", ValidateWord(bank))
	r.Get("/debug/words", DebugWords(bank))

	// The websocket upgrade cannot live under the request timeout.
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Post("/sessions", CreateSession(reg, log))
	})

	r.Get("/ws", ws.Handler(reg, log))
	return r
}
