// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command capnwebd is a minimal demo server exposing a single
// capability (echo, time, and a counter) over both the HTTP batch
// transport and WebSocket, so a client can be pointed at either
// without changing anything but the transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qwtel/capnweb"
)

func newCodec(f codecFactory) capnweb.Codec {
	switch f.name {
	case "cbor":
		return capnweb.NewCBORCodec()
	case "raw":
		return capnweb.NewRawCodec()
	default:
		return capnweb.NewTaggedCodec()
	}
}

func newDemoTarget() capnweb.Target {
	var counter atomic.Int64
	return capnweb.NewFuncTarget().
		Method("echo", func(ctx context.Context, args []any) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}
			return args[0], nil
		}).
		Method("now", func(ctx context.Context, args []any) (any, error) {
			return time.Now().UTC(), nil
		}).
		Method("increment", func(ctx context.Context, args []any) (any, error) {
			return counter.Add(1), nil
		})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func serveWebSocket(log capnweb.Option, codec capnweb.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		transport := capnweb.NewWebSocketTransport(conn)
		sess, err := capnweb.New(transport, codec, capnweb.WithMain(newDemoTarget()), log)
		if err != nil {
			conn.Close()
			return
		}
		defer sess.Close()
		<-r.Context().Done()
	}
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := loadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "capnwebd: %v\n", err)
		os.Exit(1)
	}
	factory, err := cfg.newCodec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "capnwebd: %v\n", err)
		os.Exit(1)
	}
	codec := newCodec(factory)
	log := capnweb.WithLogger(capnweb.NewConsoleLogger("capnwebd"))

	mux := http.NewServeMux()
	mux.Handle("/rpc/batch", &capnweb.HTTPBatchHandler{
		Codec:   codec,
		NewMain: func(r *http.Request) capnweb.Target { return newDemoTarget() },
	})
	mux.HandleFunc("/rpc/ws", serveWebSocket(log, codec))

	fmt.Printf("capnwebd listening on %s (transport=%s codec=%s)\n", cfg.Addr, cfg.Transport, cfg.Codec)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "capnwebd: %v\n", err)
		os.Exit(1)
	}
}
