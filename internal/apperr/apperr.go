// Package apperr holds the client-visible error taxonomy of the catalog and its
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidPrice        Code = "INVALID_PRICE"
	CodeInvalidProductType  Code = "INVALID_PRODUCT_TYPE"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeConflict            Code = "CONFLICT"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInternal            Code = "INTERNAL"
)

type Metadata struct {
	HTTPStatus int
	// Public errors expose their message; others answer with PublicMessage.
	Public        bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeNotFound:            {HTTPStatus: http.StatusNotFound, Public: true, PublicMessage: "resource not found"},
	CodeInvalidPrice:        {HTTPStatus: http.StatusBadRequest, Public: true, PublicMessage: "invalid price"},
	CodeInvalidProductType:  {HTTPStatus: http.StatusBadRequest, Public: true, PublicMessage: "invalid product type"},
	CodeValidation:          {HTTPStatus: http.StatusBadRequest, Public: true, PublicMessage: "validation failed"},
	CodeConflict:            {HTTPStatus: http.StatusConflict, Public: true, PublicMessage: "conflict"},
	CodeUnauthorized:        {HTTPStatus: http.StatusUnauthorized, Public: true, PublicMessage: "unauthorized"},
	CodeForbidden:           {HTTPStatus: http.StatusForbidden, Public: true, PublicMessage: "forbidden"},
	CodeUpstreamUnavailable: {HTTPStatus: http.StatusServiceUnavailable, Public: true, PublicMessage: "upstream service unavailable"},
	CodeRateLimited:         {HTTPStatus: http.StatusTooManyRequests, Public: true, PublicMessage: "rate limit exceeded"},
	CodeInternal:            {HTTPStatus: http.StatusInternalServerError, Public: false, PublicMessage: "internal server error"},
}

// MetadataFor returns the HTTP metadata of code, falling back to CodeInternal.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error by code, so errors.Is(err, apperr.New(CodeNotFound, ""))
// holds for any not-found error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// As extracts the *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of err, CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodeInternal
}

// Constructors for the catalog taxonomy.

func NotFound(resource string, id any) *Error {
	return Newf(CodeNotFound, "%s with ID %v not found", resource, id)
}

func InvalidPrice(price fmt.Stringer) *Error {
	return Newf(CodeInvalidPrice, "invalid price: %s. Price must be greater than 0", price)
}

func InvalidProductType(productType string) *Error {
	return Newf(CodeInvalidProductType, "invalid product type: %q. Must be HW or SW", productType)
}

func PriceNotStorable(price fmt.Stringer, scale int32, max fmt.Stringer) *Error {
	return Newf(CodeInvalidPrice, "invalid price: %s. Price must have at most %d decimal places and be below %s", price, scale, max)
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func Unavailable(err error, message string) *Error {
	return Wrap(CodeUpstreamUnavailable, err, message)
}
