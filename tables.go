// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "sync"

// exportEntry is a capability we have given the peer. value holds
// whatever the application exported: a [Target], a [LocalFunc], or a
// plain host value reachable by id for bookkeeping symmetry with
// imports.
type exportEntry struct {
	value    any
	refCount uint32
}

// importEntry is a capability the peer gave us, keyed by the id the peer
// assigned at export time. refCount tracks our own outstanding [Stub]
// duplicates so release is only sent to the peer once it drops to zero.
type importEntry struct {
	refCount uint32
}

// pendingOp replays a dispatch step that was blocked on a not-yet-
// resolved inbound question: a call pipelined against a result the peer
// hasn't produced yet queues behind it instead of failing. It is a
// closure over the original message rather than a structured call
// description, since replaying just means re-entering handlePush once
// every dependency is ready.
type pendingOp func()

// inboundQuestion is a push the peer sent us that we are still computing,
// keyed by the promise id the peer assigned it. Operations pipelined by
// the peer against this promise's result queue here rather than on the
// pusher's side, since only the callee knows when the value becomes
// available.
type inboundQuestion struct {
	resolved bool
	val      any
	err      error
	waiters  []pendingOp
}

// outboundQuestion is a push we sent, keyed by our own question id
// counter; it exists purely to fan resolve/reject frames back to the
// local [Stub.Await] caller and to the local pipelining engine for
// promises chained off our own pushes.
type outboundQuestion struct {
	resolved bool
	val      any
	err      error
	done     chan struct{}
}

// tables holds every table the session mutates from its single dispatch
// goroutine. mu additionally guards accesses from application goroutines calling
// [Stub.Dup]/[Stub.Dispose]/[Stub.Call], which do not run on the
// dispatch loop.
type tables struct {
	mu sync.Mutex

	exportIDs idAllocator
	questionIDs idAllocator

	exports map[ExportID]*exportEntry
	imports map[ImportID]*importEntry

	outbound map[QuestionID]*outboundQuestion
	inbound  map[QuestionID]*inboundQuestion
}

func newTables() *tables {
	return &tables{
		exports:  make(map[ExportID]*exportEntry),
		imports:  make(map[ImportID]*importEntry),
		outbound: make(map[QuestionID]*outboundQuestion),
		inbound:  make(map[QuestionID]*inboundQuestion),
	}
}

// addExport registers value under a fresh id and returns it.
func (t *tables) addExport(value any) ExportID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.exportIDs.next()
	t.exports[id] = &exportEntry{value: value, refCount: 1}
	return id
}

func (t *tables) dupExport(id ExportID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.exports[id]; ok {
		e.refCount++
	}
}

// releaseExport decrements the refcount and reports whether the entry
// was just removed (so the caller can run any disposal hook).
func (t *tables) releaseExport(id ExportID) (removed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.exports[id]
	if !ok {
		return false
	}
	e.refCount--
	if e.refCount == 0 {
		delete(t.exports, id)
		return true
	}
	return false
}

func (t *tables) lookupExport(id ExportID) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.exports[id]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// addImport registers (or bumps the refcount of) a reference to the
// peer's export id; the main capability (id 0) is registered once at
// session start and never released.
func (t *tables) addImport(id ImportID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.imports[id]
	if !ok {
		t.imports[id] = &importEntry{refCount: 1}
		return
	}
	e.refCount++
}

func (t *tables) releaseImport(id ImportID) (removed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.imports[id]
	if !ok {
		return false
	}
	e.refCount--
	if e.refCount == 0 {
		delete(t.imports, id)
		return true
	}
	return false
}

func (t *tables) newOutboundQuestion() (QuestionID, *outboundQuestion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.questionIDs.next()
	q := &outboundQuestion{done: make(chan struct{})}
	t.outbound[id] = q
	return id, q
}

func (t *tables) getOutboundQuestion(id QuestionID) (*outboundQuestion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.outbound[id]
	return q, ok
}

func (t *tables) getOrCreateInbound(id QuestionID) *inboundQuestion {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.inbound[id]
	if !ok {
		q = &inboundQuestion{}
		t.inbound[id] = q
	}
	return q
}

func (t *tables) getInbound(id QuestionID) (*inboundQuestion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.inbound[id]
	return q, ok
}

func (t *tables) dropInbound(id QuestionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inbound, id)
}

func (t *tables) dropOutbound(id QuestionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.outbound, id)
}

// disposeOutbound drops an outbound question that the application gave
// up on before it resolved. Unlike dropOutbound, it first wakes any
// goroutine blocked in [Stub.Await] with a disposal error instead of
// leaving it parked on a channel that would otherwise never close.
func (t *tables) disposeOutbound(id QuestionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.outbound[id]
	if !ok {
		return
	}
	if !q.resolved {
		q.resolved, q.err = true, &disposalError{id: uint32(id)}
		close(q.done)
	}
	delete(t.outbound, id)
}
