// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package capnweb implements the Cap'n Web object-capability RPC protocol:
// bidirectional, peer-to-peer invocation over a message-oriented transport,
// with promise pipelining so a caller may invoke methods on, index into, or
// pass as arguments values that have not yet resolved — the peer executes
// the implied dataflow graph without additional round trips.
//
// # Architecture
//
//   - Transport: an ordered send/receive byte interface ([Transport]). [New]
//     drives it from a dedicated reader goroutine into a bounded
//     [code.hybscloud.com/lfq] SPSC queue, matching the single-producer
//     contract of the transport's own receive loop.
//   - Codec: [Codec] encodes/decodes wire frames. Host values are classified
//     for marshaling ([Kind]) by the devaluator, the same way whatever the
//     codec; a codec does not classify values itself. Three ship:
//     [NewTaggedCodec] (JSON), [NewCBORCodec] (binary), [NewRawCodec]
//     (JSON via encoding/json; it does not bypass tag rewriting).
//   - Tables: the export and import tables track reference counts and drive
//     disposal; they are mutated both by the session's dispatch loop and by
//     application goroutines calling into [Stub], under one mutex.
//   - Pipelining: [Stub] carries a property path whether or not its target
//     has resolved yet; calls and accesses against an unresolved stub are
//     queued on the side that will resolve it and replayed without a round
//     trip.
//   - Session kernel: [Session] runs a non-blocking dispatch loop (receive,
//     decode, dispatch) built on [code.hybscloud.com/iox.Backoff]'s adaptive
//     wait, so the dispatch goroutine never busy-spins while the inbound
//     queue is momentarily empty.
//
// # Example
//
//	main := NewFuncTarget().Method("echo", func(ctx context.Context, args []any) (any, error) {
//		return args[0], nil
//	})
//	sess, err := New(transport, NewTaggedCodec(), WithMain(main))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sess.Close()
//	result, err := sess.Main().Call(ctx, "echo", 42).Await(ctx)
package capnweb
