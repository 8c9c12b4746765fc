// Package errors provides the typed error taxonomy shared by the pricing engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type is the stable, machine-readable category carried in API responses
type Type string

const (
	// TypeTransport indicates a network or HTTP failure while paging a catalog
	TypeTransport Type = "TRANSPORT_FAILURE"

	// TypeMalformedPage indicates a catalog page without offers or items
	TypeMalformedPage Type = "MALFORMED_PAGE"

	// TypeNoMatch indicates no catalog key satisfied a selection
	TypeNoMatch Type = "NO_MATCH"

	// TypeUnpricedRegion indicates an offer without a rate for the region/unit
	TypeUnpricedRegion Type = "UNPRICED_REGION"

	// TypeCurrencyMismatch indicates offers priced in different currencies
	TypeCurrencyMismatch Type = "CURRENCY_MISMATCH"

	// TypeInvalidSelection indicates a facet value outside the catalog vocabulary
	TypeInvalidSelection Type = "INVALID_SELECTION"

	// TypeInput covers malformed profiles and request bodies
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing covers HCL and JSON decode failures
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig covers bad config files, flags and environment
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal marks a broken invariant inside the engine
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotSupported marks a source or unit the engine does not handle
	TypeNotSupported Type = "NOT_SUPPORTED"
)

// Error is the engine's error value. Cause stays out of JSON; handlers fold
// its text into Message when they need to expose it.
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithContext attaches a key/value pair and returns e for chaining.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// Fatal reports whether this kind of error must abort an estimate.
// Everything else is collected as a warning on the quotation.
func (e *Error) Fatal() bool {
	switch e.Type {
	case TypeCurrencyMismatch, TypeInvalidSelection, TypeInput, TypeConfig:
		return true
	default:
		return false
	}
}

func New(t Type, message string) *Error {
	return &Error{Type: t, Message: message}
}

func Newf(t Type, format string, args ...interface{}) *Error {
	return New(t, fmt.Sprintf(format, args...))
}

// Wrap records cause under a typed message.
func Wrap(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

func Wrapf(t Type, cause error, format string, args ...interface{}) *Error {
	return Wrap(t, fmt.Sprintf(format, args...), cause)
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err, or anything it wraps, has type t.
func IsType(err error, t Type) bool {
	e, ok := As(err)
	return ok && e.Type == t
}

// TypeOf returns the type of err, or TypeInternal for foreign errors.
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return TypeInternal
}

// Fatal reports whether err aborts an estimate. Foreign errors are fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := As(err); ok {
		return e.Fatal()
	}
	return true
}

func Transport(message string, cause error) *Error {
	return Wrap(TypeTransport, message, cause)
}

func MalformedPage(page int, reason string) *Error {
	return Newf(TypeMalformedPage, "page %d: %s", page, reason).WithContext("page", page)
}

// NoMatch carries the key the resolver last tried.
func NoMatch(attemptedKey string) *Error {
	return Newf(TypeNoMatch, "no catalog offer matches %q", attemptedKey).
		WithContext("attempted_key", attemptedKey)
}

func UnpricedRegion(key, region string, units []string) *Error {
	return Newf(TypeUnpricedRegion, "offer %q has no price in region %q for units %v", key, region, units).
		WithContext("offer_key", key).
		WithContext("region", region)
}

func CurrencyMismatch(expected, got, key string) *Error {
	return Newf(TypeCurrencyMismatch, "offer %q is priced in %s, session currency is %s", key, got, expected).
		WithContext("expected", expected).
		WithContext("got", got)
}

func InvalidSelection(dimension, value string) *Error {
	return Newf(TypeInvalidSelection, "%s %q is not in the catalog vocabulary", dimension, value).
		WithContext("dimension", dimension).
		WithContext("value", value)
}

func Input(message string) *Error { return New(TypeInput, message) }

func Parsing(message string, cause error) *Error { return Wrap(TypeParsing, message, cause) }

func Config(message string) *Error { return New(TypeConfig, message) }

func NotSupported(what string) *Error {
	return Newf(TypeNotSupported, "not supported: %s", what)
}

func Internal(message string, cause error) *Error { return Wrap(TypeInternal, message, cause) }
