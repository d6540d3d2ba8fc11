// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger returns a human-readable zerolog.Logger tagged with
// component, for use with [WithLogger]. Demo/CLI entry points use this;
// production embedders typically pass their own pre-configured logger
// instead.
func NewConsoleLogger(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Str("component", component).Logger()
}
