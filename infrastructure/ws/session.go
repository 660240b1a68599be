package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-pulse/contract"
	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/observability"
	"chat-pulse/protocol"
	"chat-pulse/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
	outboundBuffer = 256
)

type State string

const (
	StateAwaitingAuth  State = "awaiting_auth"
	StateAuthenticated State = "authenticated"
	StateClosed        State = "closed"
)

// Conn is the subset of *websocket.Conn the session needs. Tests drive the
// session with an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Session owns one live connection. It greets immediately, demands an auth
// envelope before accepting intents, and never closes the connection on a
// protocol error, only on transport failure or shutdown.
//
// All writes go through the outbound channel so Deliver can be called from
// any goroutine without blocking fan-out.
type Session struct {
	conn     Conn
	accounts services.IAuthService
	chat     services.IChatService
	presence contract.IPresence
	router   contract.IRouter
	stats    *observability.Stats
	log      *slog.Logger

	outbound chan protocol.Envelope
	done     chan struct{}
	once     sync.Once

	mu     sync.Mutex
	state  State
	userID domain.UserID
}

func NewSession(conn Conn, accounts services.IAuthService, chat services.IChatService,
	presence contract.IPresence, router contract.IRouter,
	stats *observability.Stats, log *slog.Logger) *Session {
	return &Session{
		conn:     conn,
		accounts: accounts,
		chat:     chat,
		presence: presence,
		router:   router,
		stats:    stats,
		log:      log,
		outbound: make(chan protocol.Envelope, outboundBuffer),
		done:     make(chan struct{}),
		state:    StateAwaitingAuth,
	}
}

// Deliver queues an envelope for this connection. It never blocks, a full
// buffer drops the envelope and the drop is counted.
func (s *Session) Deliver(env protocol.Envelope) {
	select {
	case s.outbound <- env:
	case <-s.done:
		s.stats.IncrDropped()
	default:
		s.stats.IncrDropped()
		s.log.Warn("outbound buffer full, dropping envelope", "type", env.Type)
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run drives the session until the connection dies or ctx is cancelled.
// It blocks, callers run one goroutine per connection.
func (s *Session) Run(ctx context.Context) {
	s.stats.IncrSessionsOpened()
	defer s.teardown()

	go s.writePump(ctx)

	// The greeting goes out before any client envelope is read.
	s.Deliver(protocol.New(protocol.TypeConnectionEstablished, protocol.ConnectionEstablished{
		Timestamp: time.Now().UTC(),
	}))

	s.readPump(ctx)
}

func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		if id, ok := s.identity(); ok {
			s.accounts.TouchLastSeen(ctx, id)
		}
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("connection read failed", "error", err)
			}
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			s.deliverError("malformed envelope")
			continue
		}
		s.handle(ctx, env)
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case env := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := env.Encode()
			if err != nil {
				s.log.Error("failed to encode envelope", "type", env.Type, "error", err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, env protocol.Envelope) {
	if !env.Type.Known() {
		s.deliverError(errors.ErrUnknownEnvelope.Error())
		return
	}

	switch env.Type {
	case protocol.TypePing:
		s.Deliver(protocol.New(protocol.TypePong, protocol.Pong{Timestamp: time.Now().UTC()}))
	case protocol.TypeAuth:
		s.handleAuth(ctx, env)
	case protocol.TypeMessage:
		s.handleMessage(ctx, env)
	case protocol.TypeReaction:
		s.handleReaction(ctx, env)
	default:
		// Known but server-to-client only.
		s.deliverError(errors.ErrUnknownEnvelope.Error())
	}
}

func (s *Session) handleAuth(ctx context.Context, env protocol.Envelope) {
	payload, err := protocol.PayloadAs[protocol.Auth](env)
	if err != nil || payload.UserID == 0 {
		s.stats.IncrAuthFailures()
		s.Deliver(protocol.New(protocol.TypeAuthError, protocol.AuthError{Message: errors.ErrInvalidPayload.Error()}))
		return
	}

	user, err := s.accounts.ResolveAccount(ctx, payload.UserID)
	if err != nil {
		s.stats.IncrAuthFailures()
		s.log.Info("auth rejected", "user_id", payload.UserID)
		s.Deliver(protocol.New(protocol.TypeAuthError, protocol.AuthError{Message: errors.ErrAccountUnknown.Error()}))
		return
	}

	s.mu.Lock()
	previous := s.userID
	s.state = StateAuthenticated
	s.userID = user.ID
	s.mu.Unlock()

	// Re-auth under a different identity releases the old registration.
	if previous != 0 && previous != user.ID {
		s.presence.Unregister(previous, s)
	}
	s.presence.Register(user.ID, s)

	s.Deliver(protocol.New(protocol.TypeAuthConfirmed, protocol.AuthConfirmed{
		UserID:    user.ID,
		Timestamp: time.Now().UTC(),
		User:      user,
	}))
	s.router.BroadcastStatus(user.ID, domain.StatusOnline)
	s.log.Info("session authenticated", "user_id", user.ID)
}

func (s *Session) handleMessage(ctx context.Context, env protocol.Envelope) {
	sender, ok := s.identity()
	if !ok {
		s.deliverError(errors.ErrNotAuthenticated.Error())
		return
	}

	intent, err := protocol.PayloadAs[protocol.MessageIntent](env)
	if err != nil || intent.ChatID == 0 {
		s.deliverError(errors.ErrInvalidPayload.Error())
		return
	}

	msg, err := s.chat.PostMessage(ctx, services.PostMessageCommand{
		UserID:    sender,
		ChatID:    intent.ChatID,
		Text:      intent.Text,
		MediaURL:  intent.MediaURL,
		MediaType: intent.MediaType,
	})
	if err != nil {
		s.deliverError(err.Error())
		return
	}

	// Ack the sender first, then fan out to every live member including
	// the sender's own session.
	s.Deliver(protocol.New(protocol.TypeMessageSent, protocol.MessageSent{
		MessageID: msg.ID,
		Timestamp: msg.CreatedAt,
	}))
	s.router.BroadcastToChatMembers(ctx, intent.ChatID, protocol.New(protocol.TypeNewMessage, protocol.NewMessage{
		ChatID:  intent.ChatID,
		Message: msg,
	}))
}

func (s *Session) handleReaction(ctx context.Context, env protocol.Envelope) {
	sender, ok := s.identity()
	if !ok {
		s.deliverError(errors.ErrNotAuthenticated.Error())
		return
	}

	intent, err := protocol.PayloadAs[protocol.ReactionIntent](env)
	if err != nil || intent.MessageID == 0 || intent.Reaction == "" {
		s.deliverError(errors.ErrInvalidPayload.Error())
		return
	}

	msg, err := s.chat.AddReaction(ctx, sender, intent.MessageID, intent.Reaction)
	if err != nil {
		s.deliverError(err.Error())
		return
	}

	s.Deliver(protocol.New(protocol.TypeReactionAdded, protocol.ReactionAdded{
		MessageID: msg.ID,
		Reaction:  intent.Reaction,
		Timestamp: time.Now().UTC(),
	}))
	s.router.BroadcastToChatMembers(ctx, msg.ChatID, protocol.New(protocol.TypeMessageReaction, protocol.MessageReaction{
		MessageID:        msg.ID,
		UserID:           sender,
		Reaction:         intent.Reaction,
		UpdatedReactions: msg.Reactions,
	}))
}

func (s *Session) identity() (domain.UserID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.state == StateAuthenticated
}

func (s *Session) deliverError(message string) {
	s.Deliver(protocol.New(protocol.TypeError, protocol.Error{Message: message}))
}

// teardown runs exactly once, whatever killed the session.
func (s *Session) teardown() {
	s.once.Do(func() {
		s.mu.Lock()
		id := s.userID
		wasAuthenticated := s.state == StateAuthenticated
		s.state = StateClosed
		s.mu.Unlock()

		close(s.done)
		_ = s.conn.Close()

		if wasAuthenticated {
			s.presence.Unregister(id, s)
			s.accounts.TouchLastSeen(context.Background(), id)
			// Only the last session of an identity flips it offline.
			if !s.presence.IsLive(id) {
				s.router.BroadcastStatus(id, domain.StatusOffline)
			}
		}
		s.stats.IncrSessionsClosed()
		s.log.Info("session closed", "user_id", id)
	})
}
