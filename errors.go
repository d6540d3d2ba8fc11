// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"errors"
	"fmt"
)

// Error taxonomy.
var (
	// ErrUnknownMethod is returned by a [Target] when the requested method
	// name is not in its registry.
	ErrUnknownMethod = errors.New("capnweb: unknown method")
	// ErrNotAMethod is returned when a pipelined path resolves to a field
	// read (not a call) on an rpc-target: reading a field on an rpc-target
	// is an error, not a silent undefined.
	ErrNotAMethod = errors.New("capnweb: field access on rpc target")
	// ErrUnsupportedValue is a classification error: a value the codec
	// cannot classify into any devaluation kind. Local to the sender; no
	// wire frame is emitted.
	ErrUnsupportedValue = errors.New("capnweb: unsupported value")
	// ErrCyclicValue rejects a devaluated graph containing a cycle that
	// is not broken by a capability reference.
	ErrCyclicValue = errors.New("capnweb: cyclic object graph")
	// ErrStubInRawSubtree rejects a stub found inside a Raw-tagged value;
	// raw means no traversal, so stubs inside raw are never registered.
	ErrStubInRawSubtree = errors.New("capnweb: stub inside raw subtree")
	// ErrDisposed is returned by any operation on a disposed stub.
	ErrDisposed = errors.New("capnweb: stub disposed")
	// ErrUnknownExport / ErrUnknownImport / ErrUnknownQuestion indicate a
	// reference-accounting invariant violation: an id the peer referenced
	// has no table entry.
	ErrUnknownExport   = errors.New("capnweb: unknown export id")
	ErrUnknownImport   = errors.New("capnweb: unknown import id")
	ErrUnknownQuestion = errors.New("capnweb: unknown question id")
	// ErrSessionClosed is returned by new operations once the session has
	// entered the draining/closed state.
	ErrSessionClosed = errors.New("capnweb: session closed")
	// ErrNotAnArray is returned by [Stub.Map] when the awaited value is
	// not a []any.
	ErrNotAnArray = errors.New("capnweb: value is not an array")
)

// RemoteError is an application error received from the peer, carried on
// the wire as ["error", name, message, stack?].
type RemoteError struct {
	Name    string
	Message string
	Stack   string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// RawError wraps an error to bypass the session's onSendError scrubbing
// hook (classification kind "error-raw").
type RawError struct{ Err error }

func (e RawError) Error() string { return e.Err.Error() }
func (e RawError) Unwrap() error { return e.Err }

// disposalError is delivered to pipelined promises invalidated by
// disposal of a stub they were chained from. It wraps [ErrDisposed] so
// callers can use errors.Is(err, ErrDisposed) without caring which
// reference id was involved.
type disposalError struct{ id uint32 }

func (e *disposalError) Error() string {
	return fmt.Sprintf("capnweb: reference %d disposed", e.id)
}
func (e *disposalError) Unwrap() error { return ErrDisposed }

// SessionFault is the terminal error every subsequent operation on a
// faulted session returns: session-scoped faults reject all in-flight
// promises and refuse new operations.
type SessionFault struct {
	Cause error
}

func (f *SessionFault) Error() string { return fmt.Sprintf("capnweb: session faulted: %v", f.Cause) }
func (f *SessionFault) Unwrap() error { return f.Cause }

// classificationError is raised locally (never sent) when devaluation
// cannot represent a value.
type classificationError struct {
	value any
	err   error
}

func (e *classificationError) Error() string {
	return fmt.Sprintf("capnweb: cannot devaluate %T: %v", e.value, e.err)
}
func (e *classificationError) Unwrap() error { return e.err }
