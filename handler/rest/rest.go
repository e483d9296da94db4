package rest

import (
	"errors"
	"net/http"

	"ironbank/core"
	"ironbank/handler/render"
	"ironbank/service/pool"
	"ironbank/worker/liquidity"

	"github.com/go-chi/chi"
)

// Handle handle rest api request, events snapshots and shortfalls are optional
func Handle(p *pool.Pool, oracle core.IPriceOracle, events core.IEventStore, snapshots core.IMarketSnapshotStore, scanner *liquidity.Worker) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets", marketsHandler(p, oracle))
	router.Get("/markets/{asset}", marketHandler(p, oracle))
	router.Get("/accounts", accountsHandler(p))
	router.Get("/accounts/{user}", accountHandler(p))
	router.Get("/accounts/{user}/max-borrow/{asset}", maxBorrowHandler(p))

	if events != nil {
		router.Get("/events", eventsHandler(events))
		router.Get("/accounts/{user}/events", userEventsHandler(events))
	}

	if snapshots != nil {
		router.Get("/markets/{asset}/snapshots", snapshotsHandler(snapshots))
		router.Get("/markets/{asset}/snapshots/latest", latestSnapshotHandler(snapshots))
	}

	if scanner != nil {
		router.Get("/shortfalls", shortfallsHandler(scanner))
	}

	return router
}
