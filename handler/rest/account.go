package rest

import (
	"net/http"

	"ironbank/handler/render"
	"ironbank/handler/views"
	"ironbank/service/pool"
	"ironbank/worker/liquidity"

	"github.com/go-chi/chi"
)

func accountsHandler(p *pool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, p.Accounts())
	}
}

func accountHandler(p *pool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := views.AccountOf(r.Context(), p, chi.URLParam(r, "user"))
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, account)
	}
}

func maxBorrowHandler(p *pool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, asset := chi.URLParam(r, "user"), chi.URLParam(r, "asset")
		amount, err := p.MaxBorrow(r.Context(), user, asset)
		if err != nil {
			render.LedgerError(w, err)
			return
		}

		render.JSON(w, render.H{
			"user":   user,
			"market": asset,
			"amount": amount.Dec(),
		})
	}
}

func shortfallsHandler(scanner *liquidity.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, scanner.Shortfalls())
	}
}
