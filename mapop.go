// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "context"

// Map resolves s (expected to name an array) and applies fn to a Stub
// for each element, in index order, without awaiting any of fn's
// results — each is itself a freshly pipelined promise the caller may
// chain further or await. Order is preserved (index i of the result
// always corresponds to element i), matching the one-shot evaluation
// order the array's wire encoding already fixes; a map that reordered
// results as they completed would not be reproducible across runs with
// the same input.
func (s *Stub) Map(ctx context.Context, fn func(ctx context.Context, elem *Stub) *Stub) ([]*Stub, error) {
	v, err := s.Await(ctx)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, ErrNotAnArray
	}
	out := make([]*Stub, len(arr))
	for i := range arr {
		out[i] = fn(ctx, s.Get(i))
	}
	return out, nil
}
