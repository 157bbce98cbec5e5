// Package capi is the opaque-handle interface to the symbolic engine.
//
// Its functions follow the SymEngine C wrapper one for one: handles are
// created and freed explicitly, and fallible operations report a [Status]
// instead of an error. Two builds provide it. With the cgo and symengine
// build tags it calls libsymengine through cgo. Otherwise it is backed by
// the in-process engine of package internal/kernel.
//
// Handles are not safe for concurrent use.
package capi

//go:generate go tool stringer --type Status --trimprefix Status --output status_string.go

import "fmt"

// Status is the result code of a fallible engine call.
type Status int

// Status codes, numbered as the C wrapper's CWRAPPER_OUTPUT_TYPE.
const (
	StatusOK Status = iota
	StatusRuntimeError
	StatusDivByZero
	StatusNotImplemented
	StatusDomainError
	StatusParseError
	StatusSerializationError
)

// Err returns nil for [StatusOK] and a [*StatusError] naming op otherwise.
func (s Status) Err(op string) error {
	if s == StatusOK {
		return nil
	}

	return &StatusError{Op: op, Status: s}
}

// StatusError reports a failed engine call.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// Is matches any StatusError carrying the same status, so callers can test
// errors.Is(err, &capi.StatusError{Status: capi.StatusDivByZero}).
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)

	return ok && t.Status == e.Status && (t.Op == "" || t.Op == e.Op)
}
