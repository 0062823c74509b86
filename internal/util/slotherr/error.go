// Package slotherr classifies errors into user, missing-data, upstream and internal failures.
package slotherr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Err can diferentiate between error types.
// It satisfies the error interface, you can return Err instead of error.
type Err interface {
	Error() string
	Type() ErrorType
	ReportHTTP(w http.ResponseWriter)
}

type ErrorType int

const (
	ValidationError ErrorType = iota
	NotFoundError
	UpstreamError
	InternalError
)

func Validation(s string) Err {
	return errorImpl{msg: s, t: ValidationError}
}

func ValidationF(format string, a ...interface{}) Err {
	return Validation(fmt.Sprintf(format, a...))
}

func NotFound(s string) Err {
	return errorImpl{msg: s, t: NotFoundError}
}

func NotFoundF(format string, a ...interface{}) Err {
	return NotFound(fmt.Sprintf(format, a...))
}

// UpstreamE marks err as a failure of a store, cache or remote API. The cause stays
// reachable through errors.Is/As.
func UpstreamE(op string, err error) Err {
	return errorImpl{msg: op + ": " + err.Error(), t: UpstreamError, cause: err}
}

func UpstreamF(format string, a ...interface{}) Err {
	return errorImpl{msg: fmt.Sprintf(format, a...), t: UpstreamError}
}

func InternalErr(s string) Err {
	return errorImpl{msg: "Internal Error: " + s, t: InternalError}
}

func InternalErrE(e error) Err {
	return errorImpl{msg: "Internal Error: " + e.Error(), t: InternalError, cause: e}
}

func InternalErrF(format string, a ...interface{}) Err {
	return InternalErr(fmt.Sprintf(format, a...))
}

type errorImpl struct {
	msg   string
	t     ErrorType
	cause error
}

func (e errorImpl) Error() string {
	return e.msg
}

func (e errorImpl) Type() ErrorType {
	return e.t
}

func (e errorImpl) Unwrap() error {
	return e.cause
}

var httpCodes = map[ErrorType]int{
	ValidationError: http.StatusBadRequest,
	NotFoundError:   http.StatusNotFound,
	UpstreamError:   http.StatusBadGateway,
	InternalError:   http.StatusInternalServerError,
}

func (e errorImpl) ReportHTTP(w http.ResponseWriter) {
	http.Error(w, e.Error(), httpCodes[e.t])
}

// TypeOf returns the classification of err. Unclassified errors are internal.
func TypeOf(err error) ErrorType {
	var serr Err
	if errors.As(err, &serr) {
		return serr.Type()
	}
	return InternalError
}

func IsNotFound(err error) bool {
	var serr Err
	return errors.As(err, &serr) && serr.Type() == NotFoundError
}

var codes = map[ErrorType]string{
	ValidationError: "BAD_USER_INPUT",
	NotFoundError:   "NOT_FOUND",
	UpstreamError:   "UPSTREAM_ERROR",
	InternalError:   "INTERNAL_ERROR",
}

// Code is the machine readable code reported in GraphQL error extensions.
func Code(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "DEADLINE_EXCEEDED"
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	}
	return codes[TypeOf(err)]
}
