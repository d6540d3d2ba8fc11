// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// HTTPBatchTransport is the client side of the batch transport: every
// push/pull a [Session] writes accumulates locally, and the first
// subsequent ReadFrame flushes them as one newline-delimited HTTP POST,
// then serves the response's frames one per ReadFrame call. This matches
// a plain request/response HTTP server that cannot push unsolicited
// frames, trading the byte-stream/WebSocket transports' low latency for
// working behind ordinary HTTP infrastructure.
type HTTPBatchTransport struct {
	url    string
	client *http.Client

	mu       sync.Mutex
	outgoing []Frame
	incoming []Frame
}

// NewHTTPBatchTransport posts batches to url using client, or
// http.DefaultClient if nil.
func NewHTTPBatchTransport(url string, client *http.Client) *HTTPBatchTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBatchTransport{url: url, client: client}
}

func (t *HTTPBatchTransport) WriteFrame(ctx context.Context, f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outgoing = append(t.outgoing, f)
	return nil
}

func (t *HTTPBatchTransport) ReadFrame(ctx context.Context) (Frame, error) {
	t.mu.Lock()
	if len(t.incoming) > 0 {
		f := t.incoming[0]
		t.incoming = t.incoming[1:]
		t.mu.Unlock()
		return f, nil
	}
	outgoing := t.outgoing
	t.outgoing = nil
	t.mu.Unlock()

	if len(outgoing) == 0 {
		return nil, io.EOF
	}

	var body bytes.Buffer
	for _, f := range outgoing {
		body.Write(f)
		body.WriteByte('\n')
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capnweb: batch request failed: %s", resp.Status)
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range bytes.Split(respBody, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		t.incoming = append(t.incoming, Frame(line))
	}
	if len(t.incoming) == 0 {
		return nil, io.EOF
	}
	f := t.incoming[0]
	t.incoming = t.incoming[1:]
	return f, nil
}

func (t *HTTPBatchTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// HTTPBatchHandler is the server side: it decodes one newline-delimited
// request body into frames, runs them through a fresh, short-lived
// [Session] (one per request, since batch mode has no persistent
// connection to key a longer-lived session on), and writes every frame
// the session produced in response back as the newline-delimited body.
type HTTPBatchHandler struct {
	Codec   Codec
	NewMain func(r *http.Request) Target
}

func (h *HTTPBatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "capnweb: batch endpoint requires POST", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bt := newBatchServerTransport(body)
	sess, err := newUnstartedSession(bt, h.Codec, WithMain(h.NewMain(r)))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sess.runUntilIdle(r.Context())
	sess.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	for _, f := range bt.written {
		w.Write(f)
		w.Write([]byte("\n"))
	}
}

// batchServerTransport is the server-side mirror of HTTPBatchTransport:
// its ReadFrame drains the pre-decoded request frames, and WriteFrame
// only buffers, since the entire response is written once the session
// goes idle.
type batchServerTransport struct {
	pending []Frame
	written []Frame
}

func newBatchServerTransport(body []byte) *batchServerTransport {
	t := &batchServerTransport{}
	for _, line := range bytes.Split(body, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		t.pending = append(t.pending, Frame(line))
	}
	return t
}

func (t *batchServerTransport) ReadFrame(ctx context.Context) (Frame, error) {
	if len(t.pending) == 0 {
		return nil, io.EOF
	}
	f := t.pending[0]
	t.pending = t.pending[1:]
	return f, nil
}

func (t *batchServerTransport) WriteFrame(ctx context.Context, f Frame) error {
	t.written = append(t.written, f)
	return nil
}

func (t *batchServerTransport) Close() error { return nil }
