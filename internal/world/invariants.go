package world

import (
	"fmt"
	"log/slog"
)

// StrictInvariants makes invariant violations panic instead of being logged.
// Tests turn it on; servers leave it off.
var StrictInvariants = false

// InvariantError describes a canonicalization inconsistency. It always
// indicates a bug in the offset tables, never bad input.
type InvariantError struct {
	Key    string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated at %s: %s", e.Key, e.Detail)
}

func reportInvariant(err *InvariantError) {
	if StrictInvariants {
		panic(err)
	}
	slog.Error("world invariant violated", "key", err.Key, "detail", err.Detail)
}

// VerifyVertex checks that every encoding of v canonicalizes to the same key
// and that the result is a fixed point. Returns nil when consistent.
func VerifyVertex(v VertexKey) error {
	want := v.Canonical()
	if want.Canonical() != want {
		err := &InvariantError{Key: v.String(), Detail: "canonical form is not idempotent"}
		reportInvariant(err)
		return err
	}
	for _, eq := range v.Equivalents() {
		if got := eq.Canonical(); got != want {
			err := &InvariantError{
				Key:    v.String(),
				Detail: fmt.Sprintf("equivalent %v canonicalizes to %v, want %v", eq, got, want),
			}
			reportInvariant(err)
			return err
		}
	}
	return nil
}

// VerifyEdge is the edge counterpart of VerifyVertex.
func VerifyEdge(e EdgeKey) error {
	want := e.Canonical()
	if want.Canonical() != want {
		err := &InvariantError{Key: e.String(), Detail: "canonical form is not idempotent"}
		reportInvariant(err)
		return err
	}
	for _, eq := range e.Equivalents() {
		if got := eq.Canonical(); got != want {
			err := &InvariantError{
				Key:    e.String(),
				Detail: fmt.Sprintf("equivalent %v canonicalizes to %v, want %v", eq, got, want),
			}
			reportInvariant(err)
			return err
		}
	}
	return nil
}
