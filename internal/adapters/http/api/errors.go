package api

import (
	"errors"
	"net/http"

	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	"github.com/grimaarkan/speedruntracker/internal/adapters/speedrun"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrExport     = errors.New("export failed")
)

// Error carries the handler operation and a kind used for status mapping.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// statusFor maps an error chain to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrUnknownGame),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidName):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, speedrun.ErrUpstream), errors.Is(err, speedrun.ErrParse):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, repository.ErrFilesystem):
		return http.StatusInternalServerError, "filesystem_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
