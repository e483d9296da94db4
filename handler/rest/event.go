package rest

import (
	"net/http"

	"ironbank/core"
	"ironbank/handler/render"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

const maxLimit = 500

func pagination(r *http.Request) (int64, int) {
	query := r.URL.Query()
	from := cast.ToInt64(query.Get("from"))

	limit := cast.ToInt(query.Get("limit"))
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	return from, limit
}

func eventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, limit := pagination(r)
		list, err := events.List(r.Context(), from, limit)
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func userEventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, limit := pagination(r)
		list, err := events.ListByUser(r.Context(), chi.URLParam(r, "user"), from, limit)
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, list)
	}
}
