// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "github.com/rs/zerolog"

// Option configures a [Session] at construction time.
type Option func(*Session)

// WithMain exports target as export id 0, the capability the peer
// reaches via [Session.Main] without any prior reference. Omit it for a
// pure client that only calls the peer's main capability.
func WithMain(target Target) Option {
	return func(s *Session) { s.localMain = target }
}

// WithLogger attaches a logger for session lifecycle and fault events;
// the zero value (no option given) uses [zerolog.Nop].
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithOnSendError installs a hook that scrubs an application error
// before it crosses the wire: by default only name/message are sent,
// and an [RawError] bypasses this hook entirely. The default hook
// passes name and message through and drops the stack.
func WithOnSendError(fn func(error) *RemoteError) Option {
	return func(s *Session) { s.onSendError = fn }
}

// WithInboundQueueCapacity overrides the bounded inbound frame queue
// size (default 64). Must be a power of two, matching lfq.SPSC's ring
// buffer requirement.
func WithInboundQueueCapacity(n int) Option {
	return func(s *Session) { s.inboundCap = n }
}

func defaultOnSendError(err error) *RemoteError {
	return &RemoteError{Name: "Error", Message: err.Error()}
}
