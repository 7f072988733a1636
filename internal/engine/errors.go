// Package engine implements the match state machine: deck dealing on
// match start, move validation, round resolution, the completion rule,
// and surrender. All match mutation funnels through this package.
package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so transport layers can map it to
// a status code without string matching.
type Kind int

const (
	// KindInternal is an unexpected failure (storage, bugs).
	KindInternal Kind = iota

	// KindInvalidArgument is malformed input: empty or identical player
	// ids, a slot index outside the hand, an already-used slot.
	KindInvalidArgument

	// KindInvalidState is an operation on a finished match.
	KindInvalidState

	// KindForbidden is acting as someone else, or on a match the caller
	// does not participate in.
	KindForbidden

	// KindNotFound is an unknown match.
	KindNotFound

	// KindConflict is a duplicate move for the same round and player.
	KindConflict
)

// Error is a classified engine failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the Kind from err, or KindInternal for unclassified
// errors.
func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindInternal
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}
