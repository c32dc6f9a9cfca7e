package database

import (
	"fmt"

	"github.com/AlexTLDR/rsvp/internal/guest"
)

// NotFoundError names the identity that was not found. It matches
// ErrNotFound with errors.Is.
type NotFoundError struct {
	Ident guest.Identity
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Ident)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ParseError reports a malformed guestlist row.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
