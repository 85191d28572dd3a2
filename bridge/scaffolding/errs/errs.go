// Package errs provides the application error taxonomy used across the
// bridge layer. Errors carry a code that maps onto an HTTP status, and the
// source location where they were raised for logging.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

type ErrCode int

const (
	OK ErrCode = iota
	InvalidArgument
	NotFound
	Conflict
	Unavailable
	Internal
	InternalOnlyLog
)

var codeNames = map[ErrCode]string{
	OK:              "ok",
	InvalidArgument: "invalid_argument",
	NotFound:        "not_found",
	Conflict:        "conflict",
	Unavailable:     "unavailable",
	Internal:        "internal",
	InternalOnlyLog: "internal",
}

func (c ErrCode) String() string {
	name, ok := codeNames[c]
	if !ok {
		return "internal"
	}
	return name
}

// Error is the bridge-level error type. It implements error, web.Encoder and
// HTTPStatus so it can flow straight out of a handler as the response.
type Error struct {
	Code     ErrCode `json:"-"`
	Message  string  `json:"message"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New constructs an error with a code, capturing the caller's location.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error with a formatted message.
func Newf(code ErrCode, format string, args ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

func (e *Error) Error() string {
	return e.Message
}

// Encode implements the web Encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    e.Code.String(),
		Message: e.Message,
	})

	return data, "application/json", err
}

// HTTPStatus maps the error code onto an HTTP status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsError reports whether err is an application error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// GetError extracts the application error, or wraps err as Internal.
func GetError(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Code: Internal, Message: err.Error()}
	}
	return e
}
