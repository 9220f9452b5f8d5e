// Package hub maintains the single logical connection to the 56 cards
// game server: a websocket carrying JSON request/response/push frames,
// with automatic reconnect driven by a RetryPolicy.
package hub

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yola1107/cards56/library/ext"
	"github.com/yola1107/cards56/library/zlog"
)

var (
	ErrNotConnected  = errors.New("hub: not connected")
	ErrClosed        = errors.New("hub: connection closed")
	ErrInvokeTimeout = errors.New("hub: invoke timed out")
	ErrInvalidURL    = errors.New("hub: invalid URL")
)

// ServerError is a non-zero response code from the hub for one invocation.
type ServerError struct {
	Code    int32
	Method  string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("hub: %s failed with code %d: %s", e.Method, e.Code, e.Message)
}

// EventHandler receives the raw argument list of a server push.
type EventHandler func(args []json.RawMessage)

// StateHandler observes every connection state transition. attempt is the
// current reconnect attempt counter (0 outside of reconnection). A
// Disconnected after Reconnecting carries the exhausted attempt count,
// or 0 when the client was shut down instead.
type StateHandler func(prev, next State, attempt int)

type ClientOption func(*clientOptions)

func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

func WithTLSConf(tlsConf *tls.Config) ClientOption {
	return func(o *clientOptions) { o.tlsConf = tlsConf }
}

func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(o *clientOptions) { o.retry = p }
}

func WithInvokeTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.invokeTimeout = d }
}

func WithDialTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.dialTimeout = d }
}

func WithHeartbeat(readDeadline, pingInterval, writeTimeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.readDeadline, o.pingInterval, o.writeTimeout = readDeadline, pingInterval, writeTimeout
	}
}

// WithConnectFunc is called after every successfully established
// connection, first dial and reconnects alike.
func WithConnectFunc(fn func()) ClientOption {
	return func(o *clientOptions) { o.connectFunc = fn }
}

type clientOptions struct {
	ctx           context.Context
	endpoint      string
	tlsConf       *tls.Config
	retry         RetryPolicy
	invokeTimeout time.Duration
	dialTimeout   time.Duration
	readDeadline  time.Duration
	pingInterval  time.Duration
	writeTimeout  time.Duration
	connectFunc   func()
}

// session is one established websocket connection.
type session struct {
	id   string
	ws   *websocket.Conn
	done chan struct{}
}

// Client owns exactly one logical connection to the hub.
type Client struct {
	opts *clientOptions
	url  *url.URL

	mu       sync.Mutex // guards sess, inflight, closing
	sess     *session
	inflight *connectResult
	closing  bool

	state   atomic.Int32
	attempt atomic.Int32

	seq     atomic.Int32
	pending sync.Map // int32 -> chan *Payload

	hmu           sync.RWMutex
	handlers      map[string]EventHandler
	stateHandlers []StateHandler

	writeMu sync.Mutex
}

type connectResult struct {
	done chan struct{}
	err  error
}

// NewClient builds a client against the configured endpoint. It does not
// dial; call Connect.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	options := &clientOptions{
		ctx:           ctx,
		endpoint:      "ws://0.0.0.0:8080/Cards56Hub",
		retry:         NewStepRetryPolicy(),
		invokeTimeout: 10 * time.Second,
		dialTimeout:   10 * time.Second,
		readDeadline:  60 * time.Second,
		pingInterval:  10 * time.Second,
		writeTimeout:  10 * time.Second,
	}
	for _, o := range opts {
		o(options)
	}

	u, err := parseURL(options.endpoint, options.tlsConf == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	return &Client{
		opts:     options,
		url:      u,
		handlers: map[string]EventHandler{},
	}, nil
}

func parseURL(endpoint string, insecure bool) (*url.URL, error) {
	if !strings.Contains(endpoint, "://") {
		if insecure {
			endpoint = "ws://" + endpoint
		} else {
			endpoint = "wss://" + endpoint
		}
	}
	return url.Parse(endpoint)
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Attempt returns the current reconnect attempt counter.
func (c *Client) Attempt() int {
	return int(c.attempt.Load())
}

// On registers the handler for a named server push event. Registration
// must happen before Connect.
func (c *Client) On(event string, handler EventHandler) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.handlers[event] = handler
}

// OnStateChange registers an observer for connection state transitions.
func (c *Client) OnStateChange(handler StateHandler) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.stateHandlers = append(c.stateHandlers, handler)
}

// Connect establishes the connection. Calling it while a connect is
// already in flight joins that attempt instead of dialing twice; calling
// it while connected or reconnecting is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.State() {
	case Connected, Reconnecting:
		c.mu.Unlock()
		return nil
	}
	if c.sess != nil {
		// dial already landed; the Connected transition is on its way
		c.mu.Unlock()
		return nil
	}
	if r := c.inflight; r != nil {
		c.mu.Unlock()
		select {
		case <-r.done:
			return r.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r := &connectResult{done: make(chan struct{})}
	c.inflight = r
	c.closing = false
	c.mu.Unlock()

	c.transition(Connecting, 0)

	sess, err := c.dial(ctx)

	c.mu.Lock()
	c.inflight = nil
	if err != nil {
		r.err = err
		close(r.done)
		c.mu.Unlock()
		c.transition(Failed, 0)
		return err
	}
	c.sess = sess
	c.attempt.Store(0)
	close(r.done)
	c.mu.Unlock()

	c.startSession(sess)
	c.transition(Connected, 0)
	if c.opts.connectFunc != nil {
		safeCall(c.opts.connectFunc)
	}
	return nil
}

// Disconnect closes the connection cleanly; no reconnect is attempted.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	c.closing = true
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()

	if sess != nil {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect")
		_ = sess.ws.WriteControl(websocket.CloseMessage, message, time.Now().Add(c.opts.writeTimeout))
		_ = sess.ws.Close()
		select {
		case <-sess.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.failPending(ErrClosed)
	c.transition(Disconnected, 0)
	return nil
}

// Invoke performs one request/response round trip. If the client is not
// connected it first runs the idempotent Connect. An invocation is never
// retried: replaying a game action could double-apply a move.
func (c *Client) Invoke(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	if c.State() != Connected {
		if err := c.Connect(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
		}
	}

	rawArgs, err := marshalArgs(args)
	if err != nil {
		return nil, fmt.Errorf("hub: marshal args for %s: %w", method, err)
	}

	seq := c.seq.Add(1)
	ch := make(chan *Payload, 1)
	c.pending.Store(seq, ch)
	defer c.pending.Delete(seq)

	if err := c.send(&Payload{Op: OpRequest, Seq: seq, Method: method, Args: rawArgs}); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.opts.invokeTimeout)
	defer timer.Stop()

	select {
	case rsp := <-ch:
		if rsp == nil {
			return nil, ErrClosed
		}
		if rsp.Code != 0 {
			return rsp.Data, &ServerError{Code: rsp.Code, Method: method, Message: rsp.Error}
		}
		return rsp.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", ErrInvokeTimeout, method)
	}
}

func (c *Client) dial(ctx context.Context) (*session, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.opts.dialTimeout,
		TLSClientConfig:  c.opts.tlsConf,
	}
	ws, _, err := dialer.DialContext(ctx, c.url.String(), nil)
	if err != nil {
		return nil, err
	}
	return &session{
		id:   uuid.New().String(),
		ws:   ws,
		done: make(chan struct{}),
	}, nil
}

func (c *Client) startSession(sess *session) {
	go c.readPump(sess)
	go c.heartbeat(sess)
}

func (c *Client) readPump(sess *session) {
	defer ext.RecoverFromError(nil)
	defer close(sess.done)

	for {
		if err := sess.ws.SetReadDeadline(time.Now().Add(c.opts.readDeadline)); err != nil {
			c.sessionClosed(sess, err)
			return
		}
		_, data, err := sess.ws.ReadMessage()
		if err != nil {
			c.sessionClosed(sess, err)
			return
		}
		c.dispatch(sess, data)
	}
}

func (c *Client) heartbeat(sess *session) {
	ticker := time.NewTicker(c.opts.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-c.opts.ctx.Done():
			return
		case <-ticker.C:
			_ = c.send(&Payload{Op: OpPing})
		}
	}
}

func (c *Client) dispatch(sess *session, data []byte) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		zlog.Warnf("sessionID=%q undecodable frame: %v", sess.id, err)
		return
	}

	switch p.Op {
	case OpResponse:
		ch, loaded := c.pending.LoadAndDelete(p.Seq)
		if !loaded {
			zlog.Warnf("sessionID=%q response for unknown seq %d (%s)", sess.id, p.Seq, p.Method)
			return
		}
		ch.(chan *Payload) <- &p

	case OpPush:
		c.hmu.RLock()
		handler, ok := c.handlers[p.Method]
		c.hmu.RUnlock()
		if !ok {
			zlog.Warnf("sessionID=%q no handler for event %q", sess.id, p.Method)
			return
		}
		safeCall(func() { handler(p.Args) })

	case OpPing:
		_ = c.send(&Payload{Op: OpPong})

	case OpPong:
		// keepalive ack

	default:
		zlog.Warnf("sessionID=%q unknown payload op: %d", sess.id, p.Op)
	}
}

// sessionClosed handles the read pump exiting. A clean or explicit close
// ends in Disconnected; an unexpected drop starts the reconnect loop.
func (c *Client) sessionClosed(sess *session, err error) {
	c.mu.Lock()
	if c.sess != sess {
		// replaced or already detached by Disconnect
		c.mu.Unlock()
		return
	}
	c.sess = nil
	explicit := c.closing
	c.mu.Unlock()

	c.failPending(ErrClosed)

	if explicit || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.transition(Disconnected, 0)
		return
	}

	zlog.Warnf("sessionID=%q connection lost: %v", sess.id, err)
	go c.reconnectLoop()
}

func (c *Client) reconnectLoop() {
	defer ext.RecoverFromError(nil)

	for attempt := 0; ; attempt++ {
		delay, ok := c.opts.retry.NextDelay(attempt)
		if !ok {
			zlog.Errorf("reconnect to %q abandoned after %d attempts", c.url.String(), attempt)
			c.transition(Disconnected, attempt)
			return
		}

		c.attempt.Store(int32(attempt))
		c.transition(Reconnecting, attempt)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.opts.ctx.Done():
				// shutdown, not exhaustion: attempt 0 keeps observers quiet
				c.transition(Disconnected, 0)
				return
			}
		}

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			c.transition(Disconnected, 0)
			return
		}
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(c.opts.ctx, c.opts.dialTimeout)
		sess, err := c.dial(ctx)
		cancel()
		if err != nil {
			zlog.Warnf("reconnecting to %q. attempt=%d: %v", c.url.String(), attempt, err)
			continue
		}

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			_ = sess.ws.Close()
			c.transition(Disconnected, 0)
			return
		}
		c.sess = sess
		c.attempt.Store(0)
		c.mu.Unlock()

		c.startSession(sess)
		c.transition(Connected, 0)
		if c.opts.connectFunc != nil {
			safeCall(c.opts.connectFunc)
		}
		return
	}
}

func (c *Client) send(p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := sess.ws.SetWriteDeadline(time.Now().Add(c.opts.writeTimeout)); err != nil {
		return err
	}
	return sess.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) failPending(err error) {
	c.pending.Range(func(key, value any) bool {
		c.pending.Delete(key)
		select {
		case value.(chan *Payload) <- nil:
		default:
		}
		return true
	})
}

// transition swaps the state and notifies observers when it changed.
func (c *Client) transition(next State, attempt int) {
	prev := State(c.state.Swap(int32(next)))
	if prev == next && next != Reconnecting {
		return
	}

	c.hmu.RLock()
	handlers := make([]StateHandler, len(c.stateHandlers))
	copy(handlers, c.stateHandlers)
	c.hmu.RUnlock()

	for _, h := range handlers {
		h := h
		safeCall(func() { h(prev, next, attempt) })
	}
}

func safeCall(fn func()) {
	defer ext.RecoverFromError(nil)
	if fn != nil {
		fn()
	}
}
