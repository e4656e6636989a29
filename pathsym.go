// Package pathsym implements the symbolic-state evaluator of a path-based
// symbolic execution engine. Its entry point is (*State).Read, which rewrites
// a program-level expression into a fully resolved, solver-ready form: every
// variable access becomes a versioned SSA symbol, aggregates are flattened to
// per-field variables, symbolic indexing into bounded arrays is encoded as an
// explicit case split, and pointer dereferences are resolved through an
// external oracle.
package pathsym

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedUnionMember is returned when a union member access reaches
	// instantiation. Unions must be lowered to byte-extract upstream.
	ErrUnexpectedUnionMember = errors.New("unexpected union member")

	// ErrNonConstantVectorSize is returned when a vector type does not carry
	// a constant size.
	ErrNonConstantVectorSize = errors.New("vector with non-constant size")

	// ErrSizeConversion is returned when a constant aggregate size does not
	// fit a machine-representable integer.
	ErrSizeConversion = errors.New("failed to convert aggregate size")

	// ErrNoDereferencer is returned when a dereference is read but no
	// dereference oracle is configured.
	ErrNoDereferencer = errors.New("no dereferencer configured")

	// ErrNoAddressOfEvaluator is returned when an address-of expression is
	// read but no address-of evaluator is configured.
	ErrNoAddressOfEvaluator = errors.New("no address-of evaluator configured")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
