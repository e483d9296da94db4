package handler

import (
	"net/http"

	"ironbank/core"
	"ironbank/handler/hc"
	"ironbank/handler/render"
	"ironbank/handler/rest"
	"ironbank/service/pool"
	"ironbank/worker/liquidity"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server server
type Server struct {
	Version   string
	Pool      *pool.Pool
	Oracle    core.IPriceOracle
	Events    core.IEventStore
	Snapshots core.IMarketSnapshotStore
	Scanner   *liquidity.Worker
}

// Handler full api mux
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	mux.Mount("/hc", hc.Handle(s.Version, func() render.H {
		return render.H{"markets": len(s.Pool.Markets())}
	}))
	mux.Mount("/api", s.HandleRestAPI())
	return mux
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Mount("/", rest.Handle(s.Pool, s.Oracle, s.Events, s.Snapshots, s.Scanner))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
