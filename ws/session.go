package ws

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"dm-relay/contract"
	"dm-relay/domain"
	"dm-relay/domain/event"
	"dm-relay/services"
	"dm-relay/sink"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// SessionState tracks the connection lifecycle. A session moves
// Connecting -> Active -> Terminated exactly once; no state repeats.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateTerminated
)

const (
	outboundBuffer = 32
	writeTimeout   = 5 * time.Second
)

// Session owns one admitted WebSocket connection: its registry
// binding, its delivery sink, and the two pump goroutines around the
// socket. Commands are processed sequentially by the reader loop, so
// replies and acknowledgments keep the order the client sent them in.
type Session struct {
	id       string
	identity domain.UserIdentity
	conn     *websocket.Conn
	events   *sink.ConnectionSink
	chat     services.IChatService
	registry contract.IRegistry
	log      *slog.Logger
	state    atomic.Int32
	outbound chan ServerFrame
}

func NewSession(conn *websocket.Conn, identity domain.UserIdentity,
	chat services.IChatService, registry contract.IRegistry, log *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		identity: identity,
		conn:     conn,
		events:   sink.NewConnectionSink(log, outboundBuffer),
		chat:     chat,
		registry: registry,
		log:      log.With("connection", id, "user", identity.ID),
		outbound: make(chan ServerFrame, outboundBuffer),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Run binds the session to the registry and serves it until the
// client disconnects or ctx is canceled. Teardown always unbinds the
// registry entry first, so the relay stops targeting this connection
// before the socket closes.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.registry.Register(s.identity.ID, s.id, s.events)
	s.state.Store(int32(StateActive))
	s.log.Info("Session active")

	defer func() {
		s.state.Store(int32(StateTerminated))
		s.registry.Unregister(s.identity.ID, s.id)
		s.conn.Close(websocket.StatusNormalClosure, "")
		s.log.Info("Session terminated")
	}()

	go s.pumpDeliveries(ctx)
	go s.writeLoop(ctx, cancel)

	s.readLoop(ctx)
}

// readLoop processes client commands one at a time. A read error
// (close, network failure, malformed JSON) ends the session; a
// protocol-level error inside a valid frame only yields an error frame.
func (s *Session) readLoop(ctx context.Context) {
	for {
		var frame ClientFrame
		if err := wsjson.Read(ctx, s.conn, &frame); err != nil {
			s.log.Debug("Read loop ended", "error", err)
			return
		}
		s.dispatch(ctx, frame)
	}
}

func (s *Session) dispatch(ctx context.Context, frame ClientFrame) {
	if err := frame.Validate(); err != nil {
		s.send(ctx, errorFrame(err))
		return
	}

	switch frame.Type {
	case TypeSend:
		view, err := s.chat.Send(ctx, s.identity, frame.ToUserID, frame.Body)
		if err != nil {
			s.send(ctx, errorFrame(err))
			return
		}
		s.send(ctx, sentFrame(view))
	case TypeJoin:
		address, profile, err := s.chat.JoinConversation(ctx, s.identity, frame.OtherUserID)
		if err != nil {
			s.send(ctx, errorFrame(err))
			return
		}
		s.send(ctx, joinedFrame(address, profile))
	case TypeHistory:
		views, err := s.chat.History(ctx, s.identity, frame.OtherUserID, frame.Limit)
		if err != nil {
			s.send(ctx, errorFrame(err))
			return
		}
		s.send(ctx, historyFrame(frame.OtherUserID, views))
	}
}

// pumpDeliveries forwards relay events targeting this connection onto
// the outbound queue as received frames.
func (s *Session) pumpDeliveries(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.events.Events:
			delivered, ok := evt.(event.MessageDelivered)
			if !ok {
				continue
			}
			s.send(ctx, receivedFrame(delivered.View))
		}
	}
}

// writeLoop is the single writer on the socket. A write failure is
// fatal to the whole session.
func (s *Session) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-s.outbound:
			writeCtx, done := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, s.conn, frame)
			done()
			if err != nil {
				s.log.Debug("Write loop ended", "error", err)
				cancel()
				return
			}
		}
	}
}

// send queues an outbound frame. After termination frames are dropped
// silently: late deliveries racing the teardown are not an error.
func (s *Session) send(ctx context.Context, frame ServerFrame) {
	if s.State() == StateTerminated {
		return
	}
	select {
	case s.outbound <- frame:
	case <-ctx.Done():
	}
}
