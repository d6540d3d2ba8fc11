// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"fmt"
)

// Target is a locally-implemented capability exposed for remote
// invocation: a static trait plus a per-method dispatch shim, standing in
// for the dynamic property lookup a host language with runtime
// reflection would otherwise use.
type Target interface {
	// MethodNames reports the remotely-invocable method names.
	MethodNames() []string
	// Call dispatches method with the given already-evaluated arguments.
	// Call returns [ErrUnknownMethod] for a name absent from MethodNames.
	Call(ctx context.Context, method string, args []any) (any, error)
}

// LocalFunc is a capability of exactly one unnamed method, exported as
// the "function" kind. Calling it ignores the method name.
type LocalFunc func(ctx context.Context, args []any) (any, error)

func (f LocalFunc) MethodNames() []string { return []string{""} }
func (f LocalFunc) Call(ctx context.Context, _ string, args []any) (any, error) {
	return f(ctx, args)
}

// FuncTarget is a [Target] built from named method functions: a registry
// mapping method names to dispatch shims, rejecting unknown names with
// [ErrUnknownMethod].
type FuncTarget struct {
	methods map[string]func(ctx context.Context, args []any) (any, error)
}

// NewFuncTarget returns an empty registry; chain [FuncTarget.Method] to
// populate it.
func NewFuncTarget() *FuncTarget {
	return &FuncTarget{methods: make(map[string]func(context.Context, []any) (any, error))}
}

// Method registers fn under name and returns t for chaining.
func (t *FuncTarget) Method(name string, fn func(ctx context.Context, args []any) (any, error)) *FuncTarget {
	t.methods[name] = fn
	return t
}

func (t *FuncTarget) MethodNames() []string {
	names := make([]string, 0, len(t.methods))
	for name := range t.methods {
		names = append(names, name)
	}
	return names
}

func (t *FuncTarget) Call(ctx context.Context, method string, args []any) (any, error) {
	fn, ok := t.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return fn(ctx, args)
}

// hasMethod reports whether name is a registered method of target,
// distinguishing a field read from a call.
func hasMethod(target Target, name string) bool {
	for _, n := range target.MethodNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Future is a locally-pending async result — the host-native analogue of
// a "thenable": a value that resolves to a [Target] or plain value but is
// not itself produced by this package's own [Stub.Call]. A method body
// that returns one resolves its call at once with an exported capability
// whose "then" method waits for the Future and returns its result.
type Future struct {
	done chan struct{}
	val  any
	err  error
}

// NewFuture returns a Future together with the resolve function that
// fulfills it exactly once.
func NewFuture() (*Future, func(any, error)) {
	f := &Future{done: make(chan struct{})}
	var fired bool
	resolve := func(v any, err error) {
		if fired {
			return
		}
		fired = true
		f.val, f.err = v, err
		close(f.done)
	}
	return f, resolve
}

// Await blocks until the future resolves or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
