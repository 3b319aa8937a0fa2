package symmgo

import (
	"errors"
	"fmt"
)

var (
	// ErrKindMismatch is returned when a pairwise operation receives
	// operands of different kinds with no registered implementation.
	ErrKindMismatch = errors.New("operand kinds do not match")
)

// ErrUnsupportedKind indicates an operation on a kind with no
// registered implementation.
type ErrUnsupportedKind struct {
	Kind string
	Op   string
}

func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("no %s implementation registered for kind %q", e.Op, e.Kind)
}
