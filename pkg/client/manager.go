package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/parley-chat/parley/pkg/store"
	"github.com/parley-chat/parley/pkg/wire"
)

// State is the connection lifecycle phase.
type State int

const (
	// StateDisconnected means no transport and no goroutines.
	StateDisconnected State = iota

	// StateConnecting means a dial or a reconnect wait is in progress.
	StateConnecting

	// StateOpen means the socket is live and both loops are running.
	StateOpen

	// StateClosing means a deliberate teardown is in progress.
	StateClosing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithForceLogout sets the hook fired when the manager gives up: at the
// reconnect limit or on a server-initiated Close. Fired at most once per
// Connect.
func WithForceLogout(hook func()) Option {
	return func(m *Manager) {
		m.onForceLogout = hook
	}
}

// WithTokenSource sets the access-token provider used as a bearer header on
// each dial.
func WithTokenSource(source func() string) Option {
	return func(m *Manager) {
		m.token = source
	}
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(m *Manager) {
		m.dialer = dialer
	}
}

// Manager owns the socket lifecycle and feeds decoded server events to the
// store in arrival order.
type Manager struct {
	config        Config
	store         *store.Store
	logger        *slog.Logger
	tracer        trace.Tracer
	dialer        *websocket.Dialer
	token         func() string
	onForceLogout func()

	mu          sync.Mutex
	state       State
	conn        *websocket.Conn
	outbound    chan []byte
	cancel      context.CancelFunc
	attempts    int
	logoutFired bool

	wg sync.WaitGroup
}

// New returns a disconnected manager bound to a store.
func New(config Config, st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		config: config.withDefaults(),
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("parley"),
		state:  StateDisconnected,
	}
	m.dialer = &websocket.Dialer{HandshakeTimeout: m.config.DialTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the synchronized state this manager feeds.
func (m *Manager) Store() *store.Store { return m.store }

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect starts the session loops. It is idempotent: a manager that is
// already connecting or open is left alone.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.outbound = make(chan []byte, m.config.QueueSize)
	m.attempts = 0
	m.logoutFired = false

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(runCtx)
}

// Close tears the session down: both loops stop, the connection drops, and
// queued outbound frames are discarded. Safe to call in any state.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateDisconnected {
		m.mu.Unlock()
		return
	}
	m.state = StateClosing
	cancel := m.cancel
	conn := m.conn
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	m.wg.Wait()

	m.mu.Lock()
	m.state = StateDisconnected
	m.conn = nil
	m.outbound = nil
	m.cancel = nil
	m.mu.Unlock()
}

// Send encodes a client event and queues it for transmission. Without a
// transport, or with the queue full, the event is logged and dropped; the
// only error return is an encoding failure.
func (m *Manager) Send(ev wire.ClientEvent) error {
	data, err := wire.EncodeClientEvent(ev)
	if err != nil {
		return err
	}

	m.mu.Lock()
	out := m.outbound
	state := m.state
	m.mu.Unlock()

	if out == nil || state == StateDisconnected || state == StateClosing {
		clientMetrics().sendDrops.Inc()
		m.logger.Error("send without transport, dropping", "event", ev.ClientTag())
		return nil
	}

	select {
	case out <- data:
		return nil
	default:
		clientMetrics().sendDrops.Inc()
		m.logger.Error("outbound queue full, dropping", "event", ev.ClientTag())
		return nil
	}
}

// run is the connection loop: dial, serve, and reconnect on transport
// failure until canceled, the reconnect limit is hit, or the server closes
// the session.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		conn, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("dial failed", "url", m.config.URL, "error", err)
			if m.backoff(ctx) {
				return
			}
			continue
		}

		m.opened(conn)
		m.logger.Info("connected", "url", m.config.URL)

		// Ask for the full snapshot before anything else.
		if data, encErr := wire.EncodeClientEvent(wire.Initialization{}); encErr == nil {
			m.enqueue(data)
		}

		err = m.serve(ctx, conn)
		m.detach(conn)

		if ctx.Err() != nil {
			return
		}
		var closed *store.SessionClosed
		if errors.As(err, &closed) {
			m.logger.Warn("server closed session", "reason", closed.Reason)
			m.shutdown()
			return
		}

		m.logger.Error("connection lost", "error", err)
		if m.backoff(ctx) {
			return
		}
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, m.config.DialTimeout)
	defer cancel()

	var header http.Header
	if m.token != nil {
		if tok := m.token(); tok != "" {
			header = http.Header{"Authorization": []string{"Bearer " + tok}}
		}
	}

	conn, resp, err := m.dialer.DialContext(dialCtx, m.config.URL, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	conn.SetReadLimit(m.config.MaxMessageSize)
	return conn, nil
}

// serve runs the writer goroutine and the read loop for one connection. It
// returns the read error, which is *store.SessionClosed when the server
// ended the session.
func (m *Manager) serve(ctx context.Context, conn *websocket.Conn) error {
	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	m.mu.Lock()
	out := m.outbound
	m.mu.Unlock()

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		m.writeLoop(serveCtx, conn, out)
	}()

	err := m.readLoop(serveCtx, conn)

	stop()
	conn.Close()
	writer.Wait()
	return err
}

func (m *Manager) writeLoop(ctx context.Context, conn *websocket.Conn, out chan []byte) {
	for {
		select {
		case data := <-out:
			conn.SetWriteDeadline(time.Now().Add(m.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				m.logger.Error("write error", "error", err)
				// Unblocks the read loop so the reconnect path runs.
				conn.Close()
				return
			}
			clientMetrics().framesSent.Inc()

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if msgType != websocket.BinaryMessage {
			m.logger.Warn("ignoring non-binary frame", "type", msgType)
			continue
		}

		ev, err := wire.DecodeServerEvent(data)
		if err != nil {
			clientMetrics().decodeErrors.Inc()
			m.logger.Error("event decode error", "error", err)
			continue
		}

		if err := m.apply(ctx, ev); err != nil {
			var closed *store.SessionClosed
			if errors.As(err, &closed) {
				return err
			}
			m.logger.Error("apply error", "event", ev.ServerTag(), "error", err)
		}
	}
}

// apply hands one server event to the store inside a span.
func (m *Manager) apply(ctx context.Context, ev wire.ServerEvent) error {
	_, span := m.tracer.Start(ctx, "store.apply",
		trace.WithAttributes(attribute.String("event", ev.ServerTag())))
	defer span.End()

	start := time.Now()
	err := m.store.Apply(ev)
	clientMetrics().applyDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	clientMetrics().eventsTotal.WithLabelValues(ev.ServerTag()).Inc()
	return nil
}

// opened records a live connection and resets the consecutive-failure
// counter.
func (m *Manager) opened(conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.state = StateOpen
	m.attempts = 0
	m.mu.Unlock()
}

func (m *Manager) detach(conn *websocket.Conn) {
	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
}

// backoff counts one transport failure. It reports true when the loop
// should stop: the reconnect limit was hit (after firing the teardown) or
// the context was canceled during the wait.
func (m *Manager) backoff(ctx context.Context) bool {
	m.mu.Lock()
	m.attempts++
	attempts := m.attempts
	if m.state == StateOpen {
		m.state = StateConnecting
	}
	m.mu.Unlock()

	if attempts >= m.config.ReconnectLimit {
		m.logger.Error("reconnect limit reached", "attempts", attempts)
		m.shutdown()
		return true
	}

	clientMetrics().reconnects.Inc()
	m.logger.Info("reconnecting", "attempt", attempts, "limit", m.config.ReconnectLimit)

	select {
	case <-time.After(time.Duration(attempts) * m.config.ReconnectDelay):
		return false
	case <-ctx.Done():
		return true
	}
}

// shutdown is the give-up path: drop transport state, discard queued
// frames, and fire the force-logout hook at most once.
func (m *Manager) shutdown() {
	m.mu.Lock()
	m.state = StateDisconnected
	m.conn = nil
	m.outbound = nil
	cancel := m.cancel
	fire := !m.logoutFired
	m.logoutFired = true
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	clientMetrics().forcedLogouts.Inc()
	if fire && m.onForceLogout != nil {
		m.onForceLogout()
	}
}

// enqueue queues an already encoded frame, dropping when full.
func (m *Manager) enqueue(data []byte) {
	m.mu.Lock()
	out := m.outbound
	m.mu.Unlock()
	if out == nil {
		return
	}
	select {
	case out <- data:
	default:
		clientMetrics().sendDrops.Inc()
		m.logger.Error("outbound queue full, dropping frame")
	}
}
