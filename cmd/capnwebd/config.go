// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// serverConfig is the demo server's runtime configuration.
type serverConfig struct {
	Addr      string
	Transport string // shown in the startup line only; batch and ws are always served
	Codec     string // "tagged", "cbor", or "raw"
}

func defaultServerConfig() serverConfig {
	return serverConfig{Addr: ":8080", Transport: "batch", Codec: "tagged"}
}

type fileConfig struct {
	Addr      string `toml:"addr"`
	Transport string `toml:"transport"`
	Codec     string `toml:"codec"`
}

func loadServerConfig(path string) (serverConfig, error) {
	cfg := defaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serverConfig{}, fmt.Errorf("load capnwebd config: %w", err)
	}

	if meta.IsDefined("addr") {
		addr := strings.TrimSpace(raw.Addr)
		if addr != "" {
			cfg.Addr = addr
		}
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.TrimSpace(raw.Transport)
	}
	if meta.IsDefined("codec") {
		cfg.Codec = strings.TrimSpace(raw.Codec)
	}

	return cfg, nil
}

func (c serverConfig) newCodec() (codecFactory, error) {
	switch c.Codec {
	case "tagged", "":
		return codecFactory{name: "tagged"}, nil
	case "cbor":
		return codecFactory{name: "cbor"}, nil
	case "raw":
		return codecFactory{name: "raw"}, nil
	default:
		return codecFactory{}, fmt.Errorf("capnwebd: unknown codec %q", c.Codec)
	}
}

// codecFactory defers picking the concrete capnweb.Codec to main.go,
// which already imports the package under its real name.
type codecFactory struct{ name string }
