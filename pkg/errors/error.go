// Package errors carries coded errors through the market data pipeline and
// the analysis layers above it.
//
// Codes are grouped by range: validation (1xx), data and cache (2xx),
// indicators (3xx) and market data (7xx). Pipeline failures are further
// classified into a Kind, which decides how an empty result is explained to
// the user:
//
//	err := errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines", cause)
//	errors.KindOf(err)   // KindFetch
//	errors.Describe(err) // "fetch error: failed to fetch klines: <cause>"
package errors

import (
	"errors"
	"fmt"
)

// Error is an error tagged with an ErrorCode and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "[code] message" followed by ": cause" when there is one.
func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Detail())
}

// Detail is the message and cause without the code prefix.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return e.Message
	}

	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode returns the code of the outermost *Error in err's chain, or
// ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var coded *Error
	if !errors.As(err, &coded) {
		return ErrCodeUnknown
	}

	return coded.Code
}

// HasCode compares code against the outermost *Error only.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// HasCodeInChain walks every *Error in err's chain.
func HasCodeInChain(err error, code ErrorCode) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}

		err = coded.Cause
	}

	return false
}

// InsufficientData reports that a calculation needed more points than it got.
func InsufficientData(required, actual int, what string) *Error {
	return Newf(ErrCodeInsufficientData, "insufficient data points for %s: required %d, got %d", what, required, actual)
}

func IsInsufficientDataError(err error) bool {
	return HasCodeInChain(err, ErrCodeInsufficientData)
}
