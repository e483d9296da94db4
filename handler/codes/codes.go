package codes

import (
	"net/http"

	"ironbank/core"
)

const (
	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// Status http status of a ledger error code
func Status(code core.ErrorCode) int {
	switch {
	case code == core.ErrUnknown:
		return http.StatusInternalServerError
	case code == core.ErrMarketNotListed:
		return http.StatusNotFound
	case code >= core.ErrUnauthorized && code < core.ErrMarketNotListed:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
