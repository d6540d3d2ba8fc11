// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"sync"
)

// refKind distinguishes what table a [Stub] reaches through.
type refKind int

const (
	refExport refKind = iota // our own capability, handed to the peer
	refImport                // peer's capability, referenced by us
	refPromise                // a push result the peer (or we) have not resolved yet
)

// Stub is a reference to a capability, possibly one whose target has not
// resolved yet — there is only this one type; [Stub.resolved] tells the
// two cases apart. A Stub never aliases another Stub's path slice:
// [Stub.Get] and [Stub.Call] always build a fresh [Path].
type Stub struct {
	sess *Session
	kind refKind
	id   uint32
	path Path

	mu       sync.Mutex
	settled  bool
	val      any
	err      error
	disposed bool
}

// newImportStub wraps a reference to the peer's export id.
func newImportStub(sess *Session, id ImportID, path Path) *Stub {
	return &Stub{sess: sess, kind: refImport, id: id, path: path}
}

// newExportStub wraps one of our own capabilities already registered at id.
func newExportStub(sess *Session, id ExportID, path Path) *Stub {
	return &Stub{sess: sess, kind: refExport, id: id, path: path}
}

// newPromiseStub wraps a not-yet-settled push result named by questionID.
func newPromiseStub(sess *Session, id QuestionID, path Path) *Stub {
	return &Stub{sess: sess, kind: refPromise, id: id, path: path}
}

// resolved reports whether this reference already names a known value
// rather than a pending computation — the distinction the devaluator uses
// to pick between the "stub" and "rpc-promise" wire kinds.
func (s *Stub) resolved() bool {
	if s.kind != refPromise {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// settle fulfills or rejects a promise stub exactly once; later calls are
// no-ops. Resolve/reject frames settle the outbound question rather than
// the stub, so the dispatch loop does not call it.
func (s *Stub) settle(val any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return
	}
	s.settled, s.val, s.err = true, val, err
}

// Get returns a new Stub naming a field/index one level deeper, without
// issuing any network traffic — path pipelining. A child of a disposed
// stub stays disposed, so any further Call/Await chained off it fails
// the same way the parent would.
func (s *Stub) Get(seg PathSegment) *Stub {
	s.mu.Lock()
	disposed := s.disposed
	s.mu.Unlock()
	return &Stub{sess: s.sess, kind: s.kind, id: s.id, path: s.path.append(seg), disposed: disposed}
}

// Call invokes method on the capability named by s.Get(method), passing
// args (which may themselves be unresolved [Stub]s — call pipelining).
// The returned Stub may be used immediately for further pipelining
// before this call's result is known. Calling through a disposed stub
// never reaches the wire: it fails immediately with a disposal error.
func (s *Stub) Call(ctx context.Context, method string, args ...any) *Stub {
	s.mu.Lock()
	disposed := s.disposed
	s.mu.Unlock()
	if disposed {
		return failedPromise(s.sess, &disposalError{id: s.id})
	}
	target := s.Get(method)
	if s.sess == nil {
		return &Stub{kind: refPromise, settled: true, err: ErrSessionClosed}
	}
	return s.sess.pipelineCall(ctx, target, args)
}

// Await blocks until the capability this stub (transitively) names
// resolves to a concrete host value, or ctx is done. Awaiting a
// disposed stub fails immediately with a disposal error rather than
// blocking.
func (s *Stub) Await(ctx context.Context) (any, error) {
	s.mu.Lock()
	disposed := s.disposed
	s.mu.Unlock()
	if disposed {
		return nil, &disposalError{id: s.id}
	}
	if s.sess == nil {
		return nil, ErrSessionClosed
	}
	return s.sess.awaitStub(ctx, s)
}

// Dup returns an independent reference to the same capability, bumping
// its table refcount; each Dup needs its own Dispose. For an import, the
// release message reaches the peer only once the last reference is
// disposed.
func (s *Stub) Dup() *Stub {
	if s.sess != nil {
		s.sess.dupRef(s.kind, s.id)
	}
	return &Stub{sess: s.sess, kind: s.kind, id: s.id, path: s.path.clone()}
}

// Dispose releases this reference. Calling it more than once is a no-op.
func (s *Stub) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()
	if s.sess != nil {
		s.sess.releaseRef(s.kind, s.id)
	}
}
