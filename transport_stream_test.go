// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"net"
	"testing"
)

func TestStreamTransportRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	writer := NewStreamTransport(a)
	reader := NewStreamTransport(b)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- writer.WriteFrame(ctx, Frame("hello")) }()

	got, err := reader.ReadFrame(ctx)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("ReadFrame = %q, want hello", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
}

func TestStreamTransportOversizedFrameRejected(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	reader := NewStreamTransport(b)
	go func() {
		lenBuf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
		a.Write(lenBuf)
	}()

	_, err := reader.ReadFrame(context.Background())
	if err == nil {
		t.Fatalf("expected error for an oversized length prefix")
	}
}
