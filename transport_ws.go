// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"

	"github.com/gorilla/websocket"
)

// WebSocketTransport carries one [Frame] per WebSocket text message,
// matching the reference browser client's use of JSON text frames.
type WebSocketTransport struct {
	conn *websocket.Conn
}

// NewWebSocketTransport wraps an already-established connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	return &WebSocketTransport{conn: conn}
}

func (t *WebSocketTransport) ReadFrame(ctx context.Context) (Frame, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return Frame(data), nil
}

func (t *WebSocketTransport) WriteFrame(ctx context.Context, f Frame) error {
	return t.conn.WriteMessage(websocket.TextMessage, f)
}

func (t *WebSocketTransport) Close() error {
	return t.conn.Close()
}
