// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// maxStreamFrame bounds a single frame read from a byte stream so a
// corrupt or hostile length prefix cannot force an unbounded allocation.
const maxStreamFrame = 64 << 20

// StreamTransport frames messages over any io.Reader/io.Writer pair with
// a 4-byte big-endian length prefix, the layout a raw TCP/Unix socket or
// stdio pipe needs since it has no message boundaries of its own.
type StreamTransport struct {
	r  io.Reader
	w  io.Writer
	c  io.Closer
	mu sync.Mutex
}

// NewStreamTransport wraps rwc as a length-prefixed frame transport.
func NewStreamTransport(rwc io.ReadWriteCloser) *StreamTransport {
	return &StreamTransport{r: rwc, w: rwc, c: rwc}
}

func (t *StreamTransport) ReadFrame(ctx context.Context) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(t.r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxStreamFrame {
		return nil, fmt.Errorf("capnweb: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, err
	}
	return Frame(buf), nil
}

func (t *StreamTransport) WriteFrame(ctx context.Context, f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f)))
	if _, err := t.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := t.w.Write(f)
	return err
}

func (t *StreamTransport) Close() error {
	return t.c.Close()
}
