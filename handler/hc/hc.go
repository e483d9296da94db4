package hc

import (
	"net/http"
	"time"

	"ironbank/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Stats extra fields reported by the health check
type Stats func() render.H

// Handle handle hc request
func Handle(version string, stats Stats) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Get("/", handle(version, stats))
	return r
}

func handle(version string, stats Stats) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		resp := render.H{
			"uptime":  time.Since(b).Truncate(time.Millisecond).String(),
			"version": version,
		}

		if stats != nil {
			for k, v := range stats() {
				resp[k] = v
			}
		}

		render.JSON(w, resp)
	}
}
