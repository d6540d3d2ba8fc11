// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "context"

// Transport carries encoded [Frame]s between two peers in order (spec
// §4.6, "a message-oriented transport"). A Session drives ReadFrame from
// one dedicated goroutine and serializes WriteFrame calls itself, so
// implementations need not be safe for concurrent ReadFrame calls, but
// WriteFrame may be called concurrently with ReadFrame.
type Transport interface {
	ReadFrame(ctx context.Context) (Frame, error)
	WriteFrame(ctx context.Context, f Frame) error
	Close() error
}
