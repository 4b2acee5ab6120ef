// Package response shapes every JSON body of the API into one envelope and
// maps repository outcomes to HTTP statuses.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-catalog/internal/repository"
)

// Envelope is the top-level shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is the error member of the envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Paged is the envelope of the movie listing.
type Paged struct {
	Success     bool  `json:"success"`
	Result      any   `json:"result"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// Op says which side of the API an error happened on; a malformed identifier
// is a 400 on lookups and a 422 on writes.
type Op int

const (
	Lookup Op = iota
	Write
)

const internalMessage = "internal server error"

// OK writes a 200 envelope.
func OK(c echo.Context, result any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Result: result})
}

// Created writes a 201 envelope.
func Created(c echo.Context, result any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Result: result})
}

// Accepted writes a 202 envelope.
func Accepted(c echo.Context, result any) error {
	return c.JSON(http.StatusAccepted, Envelope{Success: true, Result: result})
}

// NoContent writes a 204.  HTTP forbids a body, so message travels in the
// X-Message header.
func NoContent(c echo.Context, message string) error {
	if message != "" {
		c.Response().Header().Set("X-Message", message)
	}
	return c.NoContent(http.StatusNoContent)
}

// Page writes the paginated movie listing.
func Page(c echo.Context, p Paged) error {
	p.Success = true
	return c.JSON(http.StatusOK, p)
}

// Fail writes an error envelope with an explicit status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Error: &Error{Code: status, Message: message}})
}

// Status returns the HTTP status for err on op.
func Status(err error, op Op) int {
	switch repository.KindOf(err) {
	case repository.KindInvalidIdentifier:
		if op == Write {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case repository.KindNotFound:
		return http.StatusNotFound
	case repository.KindValidation:
		return http.StatusUnprocessableEntity
	case repository.KindStore, repository.KindUpstreamDegraded:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// FromError maps err to a status and writes the envelope.  Client errors
// carry the tagged message; anything else is logged and answered with a
// generic 500 so no internal detail reaches the client.
func FromError(c echo.Context, err error, op Op) error {
	status := Status(err, op)
	if status >= http.StatusInternalServerError {
		log.WithError(err).
			WithField("method", c.Request().Method).
			WithField("path", c.Path()).
			WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Error("request failed")
		return Fail(c, status, internalMessage)
	}
	var re *repository.Error
	msg := http.StatusText(status)
	if errors.As(err, &re) && re.Message != "" {
		msg = re.Message
	}
	return Fail(c, status, msg)
}
