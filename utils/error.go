package utils

import "github.com/basislabs/basis-edge-go/types"

// StatusError is a custom error type that includes a status code and a
// rejection kind.
type StatusError struct {
	error
	status int
	kind   types.RejectionKind
}

// Status returns the status code of the error.
func (se StatusError) Status() int {
	return se.status
}

// Kind returns the rejection kind of the error.
func (se StatusError) Kind() types.RejectionKind {
	return se.kind
}

// NewStatusError creates a new StatusError.
func NewStatusError(err error, s int, k types.RejectionKind) error {
	return StatusError{error: err, status: s, kind: k}
}
