package rest

import (
	"errors"
	"net/http"

	"ironbank/core"
	"ironbank/handler/render"
	"ironbank/handler/views"
	"ironbank/service/pool"

	"github.com/go-chi/chi"
)

func marketsHandler(p *pool.Pool, oracle core.IPriceOracle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markets, err := views.Markets(r.Context(), p, oracle)
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, markets)
	}
}

func marketHandler(p *pool.Pool, oracle core.IPriceOracle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		market, err := views.MarketOf(r.Context(), p, oracle, chi.URLParam(r, "asset"))
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, market)
	}
}

func snapshotsHandler(snapshots core.IMarketSnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, limit := pagination(r)
		list, err := snapshots.List(r.Context(), chi.URLParam(r, "asset"), from, limit)
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func latestSnapshotHandler(snapshots core.IMarketSnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, notFound, err := snapshots.Latest(r.Context(), chi.URLParam(r, "asset"))
		if notFound {
			render.NotFoundRequest(w, errors.New("no snapshot yet"))
			return
		}

		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, snapshot)
	}
}
