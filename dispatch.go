// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"fmt"
)

// dispatchMessage routes one decoded message kind to its handler. It
// always runs on the dispatch goroutine (or, for the HTTP batch path,
// the single goroutine driving [Session.runUntilIdle]), so table
// mutations here never race with each other.
func (s *Session) dispatchMessage(m message) {
	switch m.kind {
	case msgPush:
		s.handlePush(m)
	case msgPull:
		s.handlePull(m)
	case msgResolve:
		s.handleResolve(m)
	case msgReject:
		s.handleReject(m)
	case msgRelease:
		s.handleRelease(m)
	case msgAbort:
		s.handleAbort(m)
	}
}

// handlePush evaluates a question the peer introduced and sends back its
// resolve/reject. If the expression pipelines off one of the peer's own
// still-unresolved earlier pushes, evaluation is deferred until that
// dependency settles.
func (s *Session) handlePush(m message) {
	q := s.tables.getOrCreateInbound(m.questionID)
	if q.resolved {
		return // duplicate push for an id we already answered; ignore
	}

	pending := dedupQuestionIDs(collectUnresolvedPromises(s.tables, m.expr))
	if len(pending) > 0 {
		s.deferPush(m, pending)
		return
	}

	val, err := s.evalPush(m.expr)
	s.resolveInbound(m.questionID, val, err)
}

// deferPush parks m behind every unresolved dependency in pending; each
// one replays handlePush(m) on resolution, and handlePush's own
// q.resolved/duplicate-dependency checks make re-entry from multiple
// dependencies settling concurrently harmless.
func (s *Session) deferPush(m message, pending []QuestionID) {
	s.tables.mu.Lock()
	for _, id := range pending {
		if dep, ok := s.tables.inbound[id]; ok && !dep.resolved {
			dep.waiters = append(dep.waiters, func() { s.handlePush(m) })
		}
	}
	s.tables.mu.Unlock()
}

// evalPush evaluates a push's expression: a ["pipeline", target, args]
// call, or a bare expression pushed for its own sake (e.g. a test
// re-exporting a value, or a client warming up a reference).
func (s *Session) evalPush(expr any) (any, error) {
	if arr, ok := taggedForm(expr, tagPipeline); ok {
		return s.evalPipelineCall(arr)
	}
	return evaluate(s, expr)
}

func (s *Session) evalPipelineCall(arr []any) (any, error) {
	if len(arr) != 3 {
		return nil, fmt.Errorf("capnweb: malformed pipeline expression")
	}
	targetArr, ok := arr[1].([]any)
	if !ok {
		return nil, fmt.Errorf("capnweb: malformed pipeline target")
	}
	argsArr, ok := arr[2].([]any)
	if !ok {
		return nil, fmt.Errorf("capnweb: malformed pipeline arguments")
	}

	targetVal, path, err := s.resolveTargetRef(targetArr)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty method path", ErrNotAMethod)
	}
	method, ok := path[len(path)-1].(string)
	if !ok {
		return nil, fmt.Errorf("%w: non-string method segment", ErrNotAMethod)
	}
	base, err := pathGet(targetVal, path[:len(path)-1])
	if err != nil {
		return nil, err
	}
	target, ok := base.(Target)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not callable", ErrNotAMethod, base)
	}
	if !hasMethod(target, method) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	args := make([]any, len(argsArr))
	for i, a := range argsArr {
		av, err := evaluate(s, a)
		if err != nil {
			return nil, err
		}
		args[i] = av
	}
	return target.Call(context.Background(), method, args)
}

// resolveTargetRef resolves the export/import/promise reference that
// names a pipeline call's target, returning the referenced value and
// the full path still to be walked (which ends in the method name —
// evalPipelineCall splits that off itself, since the generic [pathGet]
// a plain evaluated argument would use rejects any path segment against
// a [Target], method name included).
func (s *Session) resolveTargetRef(arr []any) (any, Path, error) {
	id, path, ok := parseRefExpr(arr)
	if !ok {
		return nil, nil, fmt.Errorf("capnweb: malformed target reference")
	}
	tag, _ := arr[0].(string)
	switch tag {
	case tagExport:
		// The sender's own capability — for us, an import.
		v, ok := s.tables.lookupExport(id)
		if ok {
			return v, path, nil
		}
		// Not actually our export; must be re-exporting an import we
		// gave them back to us under its original export id — handled
		// identically to the tagImport case below.
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownExport, id)
	case tagImport:
		// The sender handing back one of our own exports.
		v, ok := s.tables.lookupExport(id)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %d", ErrUnknownExport, id)
		}
		return v, path, nil
	case tagPromise:
		q, ok := s.tables.getInbound(QuestionID(id))
		if !ok || !q.resolved {
			return nil, nil, fmt.Errorf("capnweb: internal: promise %d targeted before it resolved", id)
		}
		if q.err != nil {
			return nil, nil, q.err
		}
		return q.val, path, nil
	default:
		return nil, nil, fmt.Errorf("capnweb: unknown target reference tag %q", tag)
	}
}

// handlePull re-delivers the resolve/reject for a question already
// answered; a pull for a question not yet answered is ignored, since
// resolveInbound sends the answer as soon as it is ready. Pushes are evaluated eagerly, so pull only matters for a push whose
// answer raced the pull on the wire; handlePush's resolveInbound covers
// the normal case, and a pull for an already-resolved question is
// answered again here for robustness against a dropped first reply.
func (s *Session) handlePull(m message) {
	q, ok := s.tables.getInbound(m.questionID)
	if !ok || !q.resolved {
		return
	}
	s.replyResolved(m.questionID, q)
}

func (s *Session) resolveInbound(id QuestionID, val any, err error) {
	s.tables.mu.Lock()
	q, ok := s.tables.inbound[id]
	if !ok {
		q = &inboundQuestion{}
		s.tables.inbound[id] = q
	}
	q.resolved, q.val, q.err = true, val, err
	waiters := q.waiters
	q.waiters = nil
	s.tables.mu.Unlock()

	s.replyResolved(id, q)
	for _, w := range waiters {
		w()
	}
}

func (s *Session) replyResolved(id QuestionID, q *inboundQuestion) {
	ctx := context.Background()
	if q.err != nil {
		_ = s.sendMessage(ctx, rejectMessage(id, s.toRemoteError(q.err)))
		return
	}
	wire, err := devaluate(s, q.val, make(map[any]bool))
	if err != nil {
		_ = s.sendMessage(ctx, rejectMessage(id, s.toRemoteError(err)))
		return
	}
	_ = s.sendMessage(ctx, resolveMessage(id, wire))
}

// toRemoteError scrubs an application error through onSendError unless
// it is already a [RawError] or [RemoteError].
func (s *Session) toRemoteError(err error) *RemoteError {
	if re, ok := err.(*RemoteError); ok {
		return re
	}
	if raw, ok := err.(RawError); ok {
		return &RemoteError{Name: "Error", Message: raw.Error()}
	}
	return s.onSendError(err)
}

// handleResolve settles one of our own outbound questions (a push we
// sent) with a final value. A resolve's expression is not expected to
// reference any of the peer's still-unresolved pushes — only a push's
// own expression pipelines off the peer's inbound questions — so it is
// evaluated directly.
func (s *Session) handleResolve(m message) {
	q, ok := s.tables.getOutboundQuestion(m.questionID)
	if !ok {
		return
	}
	val, err := evaluate(s, m.expr)
	q.resolved, q.val, q.err = true, val, err
	close(q.done)
}

func (s *Session) handleReject(m message) {
	q, ok := s.tables.getOutboundQuestion(m.questionID)
	if !ok {
		return
	}
	q.resolved, q.err = true, m.remoteErr
	close(q.done)
}

func (s *Session) handleRelease(m message) {
	for i := uint32(0); i < m.count; i++ {
		s.tables.releaseExport(m.importID)
	}
}

func (s *Session) handleAbort(m message) {
	s.faultWith(m.remoteErr)
}
