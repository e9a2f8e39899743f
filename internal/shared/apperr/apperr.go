package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	InvalidSlug       Kind = "invalid_slug"
	ReservedSlug      Kind = "reserved_slug"
	AlreadyExists     Kind = "already_exists"
	NotFound          Kind = "not_found"
	UnsupportedFormat Kind = "unsupported_format"
	MalformedInput    Kind = "malformed_input"
	StorageFailure    Kind = "storage_failure"
)

const defaultPublicMsg = "Ha ocurrido un error inesperado."

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

// Constructors. PublicMsg must stay short and never leak internals.
func InvalidSlugErr(publicMsg string) *AppError {
	return &AppError{Kind: InvalidSlug, PublicMsg: publicMsg}
}
func ReservedSlugErr(publicMsg string) *AppError {
	return &AppError{Kind: ReservedSlug, PublicMsg: publicMsg}
}
func AlreadyExistsErr(publicMsg string) *AppError {
	return &AppError{Kind: AlreadyExists, PublicMsg: publicMsg}
}
func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}
func UnsupportedFormatErr(publicMsg string) *AppError {
	return &AppError{Kind: UnsupportedFormat, PublicMsg: publicMsg}
}
func MalformedInputErr(publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: MalformedInput, PublicMsg: publicMsg, Fields: fields}
}

// StorageErr wraps an I/O failure with a public message (500).
func StorageErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: StorageFailure, PublicMsg: publicMsg, Err: err}
}

// Wrap hides an unexpected internal error behind the generic message (500).
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: StorageFailure, PublicMsg: defaultPublicMsg, Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of kind k.
func IsKind(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case InvalidSlug, ReservedSlug, UnsupportedFormat, MalformedInput:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		case AlreadyExists:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return defaultPublicMsg
}
