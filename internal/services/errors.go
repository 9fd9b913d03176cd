package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConfig     Kind = "config"
	KindTransport  Kind = "transport"
)

// Error is returned by the notification service. Delivered counts the messages
// the relay accepted before a transport failure.
type Error struct {
	Kind      Kind
	Op        string
	Delivered int
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindTransport for errors that did not
// originate in this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransport
}
