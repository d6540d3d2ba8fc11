// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "context"

// CallWithCancel behaves like [Stub.Call] followed by [Stub.Await], but
// disposes the pending promise as soon as ctx is canceled, waking any
// waiter and dropping the outbound question. The peer is not told: it
// goes on computing the result, and its later resolve is ignored.
func CallWithCancel(ctx context.Context, target *Stub, method string, args ...any) (any, error) {
	result := target.Call(ctx, method, args...)
	done := make(chan struct{})
	var val any
	var err error
	go func() {
		val, err = result.Await(ctx)
		close(done)
	}()
	select {
	case <-done:
		return val, err
	case <-ctx.Done():
		result.Dispose()
		return nil, ctx.Err()
	}
}
