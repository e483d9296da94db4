package compound

import (
	"fmt"

	"ironbank/core"
)

// Error ledger error carrying an error code
type Error struct {
	Code core.ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Msg)
}

// Unwrap unwrap to the error code, so errors.Is(err, core.ErrXXX) works
func (e *Error) Unwrap() error {
	return e.Code
}

// Errorf new error with code
func Errorf(code core.ErrorCode, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Require return an error with code when condition is false
func Require(condition bool, code core.ErrorCode, msg string) error {
	if condition {
		return nil
	}

	return &Error{Code: code, Msg: msg}
}

// CodeOf error code of err, ErrUnknown if it carries none
func CodeOf(err error) core.ErrorCode {
	switch e := err.(type) {
	case nil:
		return 0
	case *Error:
		return e.Code
	case core.ErrorCode:
		return e
	}

	if u, ok := err.(interface{ Unwrap() error }); ok {
		return CodeOf(u.Unwrap())
	}

	return core.ErrUnknown
}
