// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"fmt"
)

// pipelineCall sends target(args...) as a push without waiting for the
// peer to resolve it, returning a promise [Stub] for the result so the
// caller may keep chaining [Stub.Get]/[Stub.Call] before any round trip
// completes — promise pipelining.
func (s *Session) pipelineCall(ctx context.Context, target *Stub, args []any) *Stub {
	if target.kind == refExport {
		return s.callLocalExport(ctx, target, args)
	}
	targetWire, err := devaluateStub(s, target)
	if err != nil {
		return failedPromise(s, err)
	}
	argsWire := make([]any, len(args))
	seen := make(map[any]bool)
	for i, a := range args {
		dv, err := devaluate(s, a, seen)
		if err != nil {
			return failedPromise(s, err)
		}
		argsWire[i] = dv
	}
	targetArr, ok := targetWire.([]any)
	if !ok {
		return failedPromise(s, &classificationError{value: target, err: ErrUnsupportedValue})
	}

	id, q := s.tables.newOutboundQuestion()
	if err := s.sendMessage(ctx, pushMessage(id, pipelineExpr(targetArr, argsWire))); err != nil {
		q.resolved, q.err = true, err
		close(q.done)
		return failedPromise(s, err)
	}
	return newPromiseStub(s, id, nil)
}

func failedPromise(sess *Session, err error) *Stub {
	return &Stub{sess: sess, kind: refPromise, settled: true, err: err}
}

func settledPromise(sess *Session, val any) *Stub {
	return &Stub{sess: sess, kind: refPromise, settled: true, val: val}
}

// callLocalExport invokes one of our own exported capabilities directly,
// skipping the wire entirely. Calling a capability you already hold
// locally (as opposed to one the peer handed you) never needs a round
// trip; only the wire form of the target reference (tagExport) would be
// ambiguous to the peer, since it names one of their own exports, not
// ours.
func (s *Session) callLocalExport(ctx context.Context, target *Stub, args []any) *Stub {
	v, ok := s.tables.lookupExport(target.id)
	if !ok {
		return failedPromise(s, fmt.Errorf("%w: %d", ErrUnknownExport, target.id))
	}
	if len(target.path) == 0 {
		return failedPromise(s, fmt.Errorf("%w: empty method path", ErrNotAMethod))
	}
	method, ok := target.path[len(target.path)-1].(string)
	if !ok {
		return failedPromise(s, fmt.Errorf("%w: non-string method segment", ErrNotAMethod))
	}
	base, err := pathGet(v, target.path[:len(target.path)-1])
	if err != nil {
		return failedPromise(s, err)
	}
	t, ok := base.(Target)
	if !ok {
		return failedPromise(s, fmt.Errorf("%w: %T is not callable", ErrNotAMethod, base))
	}
	if !hasMethod(t, method) {
		return failedPromise(s, fmt.Errorf("%w: %q", ErrUnknownMethod, method))
	}
	result, err := t.Call(ctx, method, args)
	if err != nil {
		return failedPromise(s, err)
	}
	return settledPromise(s, result)
}

// awaitStub blocks until s names a concrete host value. A stub that is
// already resolved (a plain export/import reference) returns
// immediately: the capability reference itself is the value.
func (s *Session) awaitStub(ctx context.Context, stub *Stub) (any, error) {
	if stub.kind != refPromise {
		return stub, nil
	}
	stub.mu.Lock()
	settled := stub.settled
	val, err := stub.val, stub.err
	stub.mu.Unlock()
	if settled {
		if err != nil {
			return nil, err
		}
		return pathGet(val, stub.path)
	}

	q, ok := s.tables.getOutboundQuestion(stub.id)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	select {
	case <-q.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if q.err != nil {
		return nil, q.err
	}
	return pathGet(q.val, stub.path)
}
