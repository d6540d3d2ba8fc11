// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sessionState tracks a session's lifecycle: opening while the
// constructor wires up the tables, active while dispatching, then either
// draining into closed, or faulted on a protocol violation or transport
// error (it rejects every in-flight promise; Close then moves a faulted
// session to closed).
type sessionState int32

const (
	stateOpening sessionState = iota
	stateActive
	stateDraining
	stateClosed
	stateFaulted
)

const defaultInboundCapacity = 64

// Session is one side of a Cap'n Web connection: it owns the export and
// import tables, runs the dispatch loop that turns wire frames into
// table mutations and application calls, and is the handle applications
// use to reach [Session.Main] or export a capability of their own.
//
// One dedicated goroutine blocks in Transport.ReadFrame and feeds a
// bounded lfq.SPSC[Frame] queue, respecting the queue's single-producer
// contract; a second goroutine drains that queue and dispatches each
// frame, backing off with iox.Backoff's adaptive wait whenever the queue
// is momentarily empty instead of busy-spinning.
type Session struct {
	transport Transport
	codec     Codec
	tables    *tables

	id          uuid.UUID
	localMain   any
	mainStub    *Stub
	log         zerolog.Logger
	onSendError func(error) *RemoteError
	inboundCap  int

	state atomic.Int32
	fault atomic.Pointer[SessionFault]

	inboundQ   *lfq.SPSC[Frame]
	writeMu    sync.Mutex
	closeOnce  sync.Once
	readerDone chan struct{}
	dispDone   chan struct{}
	stopReader chan struct{}
}

// New opens a session over transport using codec, exports [WithMain]'s
// target (if given) as the peer-visible main capability, and starts the
// background dispatch loop.
func New(transport Transport, codec Codec, opts ...Option) (*Session, error) {
	s, err := newUnstartedSession(transport, codec, opts...)
	if err != nil {
		return nil, err
	}
	s.readerDone = make(chan struct{})
	s.dispDone = make(chan struct{})
	s.stopReader = make(chan struct{})
	go s.readLoop()
	go s.dispatchLoop()
	return s, nil
}

// newUnstartedSession builds a session with its tables and main capability
// wired up but no background goroutines running — used directly by
// [Session.runUntilIdle] callers (the HTTP batch handler) so a single
// goroutine owns every ReadFrame call on a short-lived transport instead
// of racing with a reader loop that would never see EOF and exit.
func newUnstartedSession(transport Transport, codec Codec, opts ...Option) (*Session, error) {
	s := &Session{
		id:          uuid.New(),
		transport:   transport,
		codec:       codec,
		tables:      newTables(),
		onSendError: defaultOnSendError,
		inboundCap:  defaultInboundCapacity,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.id.String()).Logger()
	s.state.Store(int32(stateOpening))

	if s.localMain != nil {
		s.tables.exports[mainID] = &exportEntry{value: s.localMain, refCount: 1}
	}
	s.tables.addImport(mainID)
	s.mainStub = newImportStub(s, mainID, nil)

	q := &lfq.SPSC[Frame]{}
	q.Init(s.inboundCap)
	s.inboundQ = q
	s.state.Store(int32(stateActive))
	return s, nil
}

// NewBatchClient opens a session over a request/response transport (such
// as [HTTPBatchTransport]) without starting any background goroutine:
// that transport's ReadFrame returns io.EOF whenever nothing is queued to
// send, which would make a persistent reader loop exit immediately rather
// than block waiting for traffic the way a byte stream or WebSocket does.
// Callers must pump the session explicitly with [Session.RunBatch] after
// issuing calls, typically once per logical round trip.
func NewBatchClient(transport Transport, codec Codec, opts ...Option) (*Session, error) {
	return newUnstartedSession(transport, codec, opts...)
}

// RunBatch drains and dispatches every frame transport currently has
// buffered, flushing any pending outbound writes first. It is a no-op
// once the transport reports io.EOF (nothing left to exchange).
func (s *Session) RunBatch(ctx context.Context) {
	s.runUntilIdle(ctx)
}

// Main returns a [Stub] for the peer's exported main capability.
func (s *Session) Main() *Stub { return s.mainStub }

// ID returns the session's local correlation id, used only in logging —
// it never appears on the wire.
func (s *Session) ID() uuid.UUID { return s.id }

// readLoop is the single transport reader; it owns all ReadFrame calls
// so Transport implementations need not support concurrent reads.
func (s *Session) readLoop() {
	defer close(s.readerDone)
	ctx := context.Background()
	for {
		select {
		case <-s.stopReader:
			return
		default:
		}
		f, err := s.transport.ReadFrame(ctx)
		if err != nil {
			if err == io.EOF {
				return
			}
			s.faultWith(err)
			return
		}
		var bo iox.Backoff
		for {
			if err := s.inboundQ.Enqueue(&f); err == nil {
				break
			}
			select {
			case <-s.stopReader:
				return
			default:
			}
			bo.Wait()
		}
	}
}

// dispatchLoop drains decoded frames and dispatches them, backing off
// adaptively via iox.Backoff when the inbound queue is momentarily
// empty.
func (s *Session) dispatchLoop() {
	defer close(s.dispDone)
	var bo iox.Backoff
	for {
		f, err := s.inboundQ.Dequeue()
		if err != nil {
			if s.State() != stateActive {
				return
			}
			bo.Wait()
			continue
		}
		bo.Reset()
		s.handleFrame(f)
	}
}

// runUntilIdle processes every frame the transport yields without
// spawning goroutines, for the one-shot HTTP batch server path where a
// session lives only as long as a single request.
func (s *Session) runUntilIdle(ctx context.Context) {
	for {
		f, err := s.transport.ReadFrame(ctx)
		if err != nil {
			return
		}
		s.handleFrame(f)
	}
}

func (s *Session) handleFrame(f Frame) {
	m, err := s.codec.Decode(f)
	if err != nil {
		s.faultWith(fmt.Errorf("capnweb: decode frame: %w", err))
		return
	}
	s.dispatchMessage(m)
}

// State reports the session's current lifecycle state.
func (s *Session) State() sessionState {
	return sessionState(s.state.Load())
}

// faultWith transitions the session to faulted and rejects every
// in-flight outbound question with the fault as its cause.
func (s *Session) faultWith(err error) {
	if !s.state.CompareAndSwap(int32(stateActive), int32(stateFaulted)) &&
		!s.state.CompareAndSwap(int32(stateDraining), int32(stateFaulted)) {
		return
	}
	sf := &SessionFault{Cause: err}
	s.fault.Store(sf)
	s.log.Error().Err(err).Msg("capnweb: session faulted")

	s.tables.mu.Lock()
	for id, q := range s.tables.outbound {
		if !q.resolved {
			q.resolved, q.err = true, sf
			close(q.done)
		}
		delete(s.tables.outbound, id)
	}
	s.tables.mu.Unlock()
}

// Close drains the session: it stops accepting new operations, closes
// the transport, and waits for both background goroutines to exit.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.state.CompareAndSwap(int32(stateActive), int32(stateDraining))
		err = s.transport.Close()
		if s.stopReader != nil {
			close(s.stopReader)
			<-s.readerDone
		}
		s.state.Store(int32(stateClosed))
		if s.dispDone != nil {
			<-s.dispDone
		}
	})
	return err
}

// sendMessage encodes and writes m, serializing concurrent writers
// (application goroutines calling Call/Dispose can all write at once).
func (s *Session) sendMessage(ctx context.Context, m message) error {
	if st := s.State(); st == stateFaulted || st == stateClosed || st == stateDraining {
		if sf := s.fault.Load(); sf != nil {
			return sf
		}
		return ErrSessionClosed
	}
	f, err := s.codec.Encode(m)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.WriteFrame(ctx, f)
}

// exportValue registers an rpc-target or function capability and
// returns the id the peer will use to reach it.
func (s *Session) exportValue(v any) ExportID {
	return s.tables.addExport(v)
}

// exportFuture registers f so the peer can await it like any other
// capability: f settles an internal one-method [Target] that forwards
// to f.Await.
func (s *Session) exportFuture(f *Future) (ExportID, Path) {
	thenable := NewFuncTarget().Method("then", func(ctx context.Context, _ []any) (any, error) {
		return f.Await(ctx)
	})
	return s.tables.addExport(thenable), nil
}

func (s *Session) dupRef(kind refKind, id uint32) {
	switch kind {
	case refExport:
		s.tables.dupExport(id)
	case refImport:
		s.tables.addImport(id)
	}
}

func (s *Session) releaseRef(kind refKind, id uint32) {
	switch kind {
	case refExport:
		if removed := s.tables.releaseExport(id); removed {
			s.log.Debug().Uint32("export", id).Msg("capnweb: export disposed")
		}
	case refImport:
		if removed := s.tables.releaseImport(id); removed && id != mainID {
			_ = s.sendMessage(context.Background(), releaseMessage(id, 1))
		}
	case refPromise:
		// Dropping a not-yet-resolved push's promise cancels our own
		// interest in the result locally; it does not currently signal
		// the peer to stop computing it (no wire message models that).
		// Any goroutine already blocked in Await on this id is woken
		// with a disposal error instead of left hanging.
		s.tables.disposeOutbound(id)
	}
}
