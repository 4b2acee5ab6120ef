// Package repository contains data access logic separated from HTTP handlers.
// This file defines the tagged error returned by every repository.  Handlers
// branch on Kind instead of inspecting driver errors, so the mapping from a
// store outcome to an HTTP status lives in one place (package response).
package repository

import (
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Kind classifies a repository failure.
type Kind int

const (
	// KindStore is an unclassified backend fault.  It is the zero value so
	// that an untagged error is never mistaken for a client error.
	KindStore Kind = iota
	// KindInvalidIdentifier means the identifier does not match the
	// expected format.
	KindInvalidIdentifier
	// KindNotFound means the identifier or filter is valid but nothing matched.
	KindNotFound
	// KindValidation means a write violated a field constraint.
	KindValidation
	// KindUpstreamDegraded marks a failed auxiliary lookup (seances).  It is
	// absorbed by the availability composer and never reaches a client.
	KindUpstreamDegraded
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUpstreamDegraded:
		return "upstream_degraded"
	default:
		return "store_failure"
	}
}

// Error is the tagged error produced by repositories.
type Error struct {
	Kind    Kind
	Entity  string // "movie", "genre", "seance"; may be empty
	Message string // client-safe message
	Err     error  // underlying cause, never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err.  Errors that are not tagged are store
// failures.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindStore
}

// InvalidIdentifier reports a malformed identifier for entity.
func InvalidIdentifier(entity, raw string) error {
	return &Error{Kind: KindInvalidIdentifier, Entity: entity, Message: fmt.Sprintf("invalid %s identifier %q", entity, raw)}
}

// NotFound reports a missing entity.
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: fmt.Sprintf("no matching %s found", entity)}
}

// Validation reports a field constraint violation.
func Validation(entity, msg string) error {
	return &Error{Kind: KindValidation, Entity: entity, Message: msg}
}

// StoreFailure wraps a backend fault with the failing operation.
func StoreFailure(entity, op string, err error) error {
	return &Error{Kind: KindStore, Entity: entity, Message: "internal error", Err: errors.Wrap(err, op)}
}

// Degraded wraps a failed auxiliary lookup.
func Degraded(entity string, err error) error {
	return &Error{Kind: KindUpstreamDegraded, Entity: entity, Message: entity + " lookup failed", Err: err}
}

// classify turns a driver error into a tagged error.
func classify(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(entity)
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			// 121: DocumentValidationFailure (collection $jsonSchema)
			if e.Code == 121 {
				return Validation(entity, entity+" document failed validation")
			}
		}
	}
	return StoreFailure(entity, op, err)
}
