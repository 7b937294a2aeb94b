package experience

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidParams            Code = "invalid_params"
	CodeInvalidUnit              Code = "invalid_unit"
	CodeInvalidProductOrCampaign Code = "invalid_product_or_campaign"
	CodeNetwork                  Code = "network"
)

// HTTPStatus maps a resolution failure to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidParams:
		return http.StatusBadRequest
	case CodeInvalidUnit, CodeInvalidProductOrCampaign:
		return http.StatusNotFound
	case CodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a terminal resolution failure. Message is internal; the
// visitor sees a localised text chosen by Code, except for
// CodeInvalidParams where Message is the joined validation output.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of err, or "" when err is not a resolution error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
