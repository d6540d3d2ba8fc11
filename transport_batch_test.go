// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPBatchRoundTrip(t *testing.T) {
	handler := &HTTPBatchHandler{
		Codec: NewTaggedCodec(),
		NewMain: func(r *http.Request) Target {
			return NewFuncTarget().Method("echo", func(ctx context.Context, args []any) (any, error) {
				return args[0], nil
			})
		},
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	transport := NewHTTPBatchTransport(srv.URL, nil)
	client, err := NewBatchClient(transport, NewTaggedCodec())
	if err != nil {
		t.Fatalf("NewBatchClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := client.Main().Call(ctx, "echo", "batched")
	client.RunBatch(ctx)

	got, err := result.Await(ctx)
	if err != nil {
		t.Fatalf("Call/Await: %v", err)
	}
	if got != "batched" {
		t.Fatalf("got %v, want batched", got)
	}
}
