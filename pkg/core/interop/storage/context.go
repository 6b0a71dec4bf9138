// Package storage implements the System.Storage.* interops: the key/value
// namespace a deployed contract reads and writes through, scoped to its own
// contract ID and charged per the protocol's storage price (spec.md §5.4).
package storage

import "errors"

// Context is the handle a contract holds onto its own storage namespace,
// the interop item System.Storage.GetContext/GetReadOnlyContext hand back
// and every other System.Storage.* call receives as its first argument.
type Context struct {
	ID       int32
	ReadOnly bool
}

// ErrGasLimitExceeded is returned by Put when the gas a storage write would
// cost exceeds what remains of the invocation's budget.
var ErrGasLimitExceeded = errors.New("gas limit exceeded")

// errReadOnly is returned by Put/Delete when called against a context
// ContextAsReadOnly/GetReadOnlyContext marked read-only.
var errReadOnly = errors.New("storage context is read only")
