// Package client implements the connection engine used by chat clients:
// it dials the server, authenticates, queues intents while offline and
// reconnects with exponential backoff when the transport drops.
package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/protocol"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateAwaitingAuth State = "awaiting_auth"
	StateReady        State = "ready"
	StateAuthRejected State = "auth_rejected"
	StateGaveUp       State = "gave_up"
)

// Conn is the transport surface the engine drives. *websocket.Conn
// satisfies it directly.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewDialer returns the production websocket dialer.
func NewDialer() Dialer {
	return wsDialer{}
}

// Options tunes the engine timers. Zero values fall back to the defaults
// the server expects from well-behaved clients.
type Options struct {
	ConnectTimeout time.Duration
	AuthTimeout    time.Duration
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	MaxAttempts    int
	DrainInterval  time.Duration
}

func (o *Options) withDefaults() {
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.AuthTimeout == 0 {
		o.AuthTimeout = 5 * time.Second
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	if o.BackoffCap == 0 {
		o.BackoffCap = 30 * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 10
	}
	if o.DrainInterval == 0 {
		o.DrainInterval = 100 * time.Millisecond
	}
}

type Handler func(env protocol.Envelope)

// Engine owns one logical connection to the server. All methods are safe
// for concurrent use. Envelope handlers run on the read goroutine, in
// arrival order.
type Engine struct {
	url    string
	dialer Dialer
	opts   Options
	log    *slog.Logger

	mu          sync.Mutex
	state       State
	identity    domain.UserID
	hasIdentity bool
	conn        Conn
	queue       []protocol.Envelope
	attempts    int
	generation  int
	cancel      chan struct{}
	authResult  chan protocol.Type
	draining    bool

	handlers      map[protocol.Type]map[int]Handler
	errHandlers   map[int]func(error)
	stateHandlers map[int]func(State)
	nextHandlerID int

	writeMu sync.Mutex
}

func NewEngine(url string, dialer Dialer, opts Options, log *slog.Logger) *Engine {
	opts.withDefaults()
	return &Engine{
		url:           url,
		dialer:        dialer,
		opts:          opts,
		log:           log,
		state:         StateDisconnected,
		cancel:        make(chan struct{}),
		handlers:      make(map[protocol.Type]map[int]Handler),
		errHandlers:   make(map[int]func(error)),
		stateHandlers: make(map[int]func(State)),
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// On registers a handler for one envelope type and returns its
// unsubscribe function.
func (e *Engine) On(t protocol.Type, h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers[t] == nil {
		e.handlers[t] = make(map[int]Handler)
	}
	id := e.nextHandlerID
	e.nextHandlerID++
	e.handlers[t][id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers[t], id)
	}
}

// OnError registers a handler for terminal engine errors, such as giving
// up after the retry budget or an authentication rejection.
func (e *Engine) OnError(h func(error)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextHandlerID
	e.nextHandlerID++
	e.errHandlers[id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.errHandlers, id)
	}
}

// OnStateChange registers a state observer. Observers run on their own
// goroutine, no ordering is guaranteed between rapid transitions.
func (e *Engine) OnStateChange(h func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextHandlerID
	e.nextHandlerID++
	e.stateHandlers[id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.stateHandlers, id)
	}
}

// Connect starts the connection cycle for the given identity. Calling it
// again while a cycle for the same identity is in flight is a no-op.
// A different identity tears the current connection down first.
func (e *Engine) Connect(id domain.UserID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.state == StateConnecting || e.state == StateAwaitingAuth || e.state == StateReady
	if active && e.identity == id {
		return
	}

	e.identity = id
	e.hasIdentity = true
	e.restartLocked()
}

// Resume is the foreground hook. A disconnected engine with a known
// identity reconnects immediately with a fresh retry budget. It does
// nothing after an authentication rejection.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasIdentity {
		return
	}
	if e.state != StateDisconnected && e.state != StateGaveUp {
		return
	}
	e.restartLocked()
}

// Disconnect is the intentional teardown: it cancels timers, drops the
// transport and clears the outbound queue. No reconnection follows.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.generation++
	close(e.cancel)
	e.cancel = make(chan struct{})
	conn := e.conn
	e.conn = nil
	e.queue = nil
	e.draining = false
	e.setStateLocked(StateDisconnected)
	e.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Send transmits an envelope. A ready engine with no backlog writes it
// straight to the transport, anything else holds it in the queue until
// the next successful authentication, then the backlog flushes in order
// with a small delay between frames. Sending while disconnected with a
// known identity triggers a reconnection.
func (e *Engine) Send(env protocol.Envelope) error {
	e.mu.Lock()

	if e.state == StateAuthRejected {
		e.mu.Unlock()
		return errors.ErrEngineAuthRejected
	}

	// Fast path: nothing queued and no drain in flight, so ordering
	// cannot be violated by skipping the queue.
	if e.state == StateReady && !e.draining && len(e.queue) == 0 {
		conn := e.conn
		e.mu.Unlock()
		if err := e.write(conn, env); err == nil {
			return nil
		}
		// The transport died under us. Queue the envelope, the read
		// loop notices the drop and reconnects.
		e.mu.Lock()
	}

	e.queue = append(e.queue, env)

	switch e.state {
	case StateReady:
		e.ensureDrainLocked()
	case StateDisconnected, StateGaveUp:
		if e.hasIdentity {
			e.restartLocked()
		}
	}
	e.mu.Unlock()
	return nil
}

// restartLocked begins a fresh connection cycle, invalidating every
// goroutine and timer of the previous one.
func (e *Engine) restartLocked() {
	e.generation++
	close(e.cancel)
	e.cancel = make(chan struct{})
	if e.conn != nil {
		_ = e.conn.Close()
		e.conn = nil
	}
	e.attempts = 0
	e.draining = false
	e.setStateLocked(StateConnecting)
	go e.runCycle(e.generation, e.cancel)
}

// runCycle dials and authenticates until it reaches Ready, hits a
// terminal state or exhausts the retry budget.
func (e *Engine) runCycle(gen int, cancel chan struct{}) {
	for {
		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}
		e.attempts++
		attempt := e.attempts
		id := e.identity
		e.setStateLocked(StateConnecting)
		e.mu.Unlock()

		ctx, ctxCancel := context.WithTimeout(context.Background(), e.opts.ConnectTimeout)
		conn, err := e.dialer.DialContext(ctx, e.url)
		ctxCancel()

		if err == nil {
			switch e.handshake(gen, cancel, conn, id) {
			case handshakeReady, handshakeStale, handshakeTerminal:
				return
			case handshakeRetry:
			}
		} else {
			e.log.Warn("dial failed", "attempt", attempt, "error", err)
		}

		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}
		if attempt >= e.opts.MaxAttempts {
			e.setStateLocked(StateGaveUp)
			e.mu.Unlock()
			e.log.Error("giving up after exhausting reconnection attempts", "attempts", attempt)
			e.emitError(errors.ErrEngineGaveUp)
			return
		}
		e.mu.Unlock()

		wait := backoffDelay(e.opts, attempt)
		e.log.Info("scheduling reconnection", "attempt", attempt, "wait", wait)
		select {
		case <-time.After(wait):
		case <-cancel:
			return
		}
	}
}

type handshakeOutcome int

const (
	handshakeReady handshakeOutcome = iota
	handshakeRetry
	handshakeTerminal
	handshakeStale
)

// handshake sends the auth claim on a fresh transport and waits for the
// server's verdict.
func (e *Engine) handshake(gen int, cancel chan struct{}, conn Conn, id domain.UserID) handshakeOutcome {
	e.mu.Lock()
	if e.generation != gen {
		e.mu.Unlock()
		_ = conn.Close()
		return handshakeStale
	}
	e.conn = conn
	e.authResult = make(chan protocol.Type, 1)
	authResult := e.authResult
	e.setStateLocked(StateAwaitingAuth)
	e.mu.Unlock()

	go e.readLoop(gen, conn, authResult)

	if err := e.write(conn, protocol.New(protocol.TypeAuth, protocol.Auth{UserID: id})); err != nil {
		_ = conn.Close()
		return handshakeRetry
	}

	select {
	case verdict := <-authResult:
		switch verdict {
		case protocol.TypeAuthConfirmed:
			e.mu.Lock()
			if e.generation != gen {
				e.mu.Unlock()
				return handshakeStale
			}
			e.attempts = 0
			e.setStateLocked(StateReady)
			e.ensureDrainLocked()
			e.mu.Unlock()
			return handshakeReady
		case protocol.TypeAuthError:
			e.mu.Lock()
			if e.generation == gen {
				e.setStateLocked(StateAuthRejected)
				e.conn = nil
				e.queue = nil
			}
			e.mu.Unlock()
			_ = conn.Close()
			e.emitError(errors.ErrEngineAuthRejected)
			return handshakeTerminal
		default:
			// Transport died before a verdict.
			_ = conn.Close()
			return handshakeRetry
		}
	case <-time.After(e.opts.AuthTimeout):
		e.log.Warn("no auth confirmation in time, recycling connection")
		_ = conn.Close()
		return handshakeRetry
	case <-cancel:
		_ = conn.Close()
		return handshakeStale
	}
}

func (e *Engine) readLoop(gen int, conn Conn, authResult chan protocol.Type) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		env, err := protocol.Decode(data)
		if err != nil {
			e.log.Debug("dropping malformed frame", "error", err)
			continue
		}

		switch env.Type {
		case protocol.TypeAuthConfirmed, protocol.TypeAuthError:
			select {
			case authResult <- env.Type:
			default:
			}
		case protocol.TypePing:
			// Keepalive is answered inline so it never waits behind the queue.
			_ = e.write(conn, protocol.New(protocol.TypePong, protocol.Pong{Timestamp: time.Now().UTC()}))
		}

		e.dispatch(env)
	}

	// Wake a handshake still waiting on this transport.
	select {
	case authResult <- protocol.TypeError:
	default:
	}

	e.mu.Lock()
	if e.generation != gen || e.conn != conn {
		e.mu.Unlock()
		return
	}
	wasReady := e.state == StateReady
	e.conn = nil
	e.mu.Unlock()

	if wasReady {
		// Unexpected drop after being ready: reconnect with a fresh budget.
		e.log.Info("connection lost, reconnecting")
		e.mu.Lock()
		if e.state == StateReady {
			e.restartLocked()
		}
		e.mu.Unlock()
	}
}

// ensureDrainLocked starts the queue drain goroutine if one is not
// already running. Caller holds e.mu.
func (e *Engine) ensureDrainLocked() {
	if e.draining || len(e.queue) == 0 {
		return
	}
	e.draining = true
	go e.drainLoop(e.generation, e.cancel)
}

func (e *Engine) drainLoop(gen int, cancel chan struct{}) {
	for {
		e.mu.Lock()
		if e.generation != gen || e.state != StateReady || len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			return
		}
		env := e.queue[0]
		e.queue = e.queue[1:]
		conn := e.conn
		e.mu.Unlock()

		if err := e.write(conn, env); err != nil {
			e.log.Warn("failed to flush queued envelope", "type", env.Type, "error", err)
			e.mu.Lock()
			// Put it back, the next successful handshake retries it.
			e.queue = append([]protocol.Envelope{env}, e.queue...)
			e.draining = false
			e.mu.Unlock()
			return
		}

		select {
		case <-time.After(e.opts.DrainInterval):
		case <-cancel:
			e.mu.Lock()
			e.draining = false
			e.mu.Unlock()
			return
		}
	}
}

func (e *Engine) write(conn Conn, env protocol.Envelope) error {
	if conn == nil {
		return errors.ErrEngineClosed
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (e *Engine) dispatch(env protocol.Envelope) {
	e.mu.Lock()
	callbacks := make([]Handler, 0, len(e.handlers[env.Type]))
	for _, h := range e.handlers[env.Type] {
		callbacks = append(callbacks, h)
	}
	e.mu.Unlock()

	for _, h := range callbacks {
		h(env)
	}
}

func (e *Engine) emitError(err error) {
	e.mu.Lock()
	callbacks := make([]func(error), 0, len(e.errHandlers))
	for _, h := range e.errHandlers {
		callbacks = append(callbacks, h)
	}
	e.mu.Unlock()

	for _, h := range callbacks {
		h(err)
	}
}

// setStateLocked records the transition and notifies observers. Caller
// holds e.mu.
func (e *Engine) setStateLocked(next State) {
	if e.state == next {
		return
	}
	e.state = next
	for _, h := range e.stateHandlers {
		go h(next)
	}
}

// backoffDelay doubles per attempt from the base, capped. Attempt 1
// waits the base delay.
func backoffDelay(opts Options, attempt int) time.Duration {
	wait := opts.BackoffBase
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= opts.BackoffCap {
			return opts.BackoffCap
		}
	}
	if wait > opts.BackoffCap {
		return opts.BackoffCap
	}
	return wait
}
