package stream

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

const (
	// ReconnectDelay is the fixed wait before every reconnect attempt.
	ReconnectDelay = 3 * time.Second

	// HeartbeatInterval is the cadence of the outbound liveness probe.
	HeartbeatInterval = 15 * time.Second

	heartbeatPayload = "ping"
)

// StatusListener is notified of every status change.
type StatusListener func(Status)

type Option func(*Client)

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l.WithField("component", "stream") }
}

func WithStatusListener(fn StatusListener) Option {
	return func(c *Client) { c.onStatus = fn }
}

// WithEnabled sets the initial enabled flag. Clients are enabled by default.
func WithEnabled(enabled bool) Option {
	return func(c *Client) { c.enabled = enabled }
}

// Client keeps a best-effort subscription to the trade push channel.
//
// One run loop goroutine per enabled session owns the connection and both
// timers, dispatches frames to the handler in arrival order and performs
// every status change while the session is live. Lifecycle calls (Start,
// SetEnabled, Close) are serialised and wait for the loop to exit, so once
// they return no handler call or status change from the old session can
// happen. Handlers and status listeners run on the loop and must not call
// the lifecycle methods synchronously.
type Client struct {
	endpoint string
	dialer   Dialer
	logger   logger.Logger
	handler  handlerSlot
	onStatus StatusListener

	reconnectDelay    time.Duration
	heartbeatInterval time.Duration

	mu     sync.Mutex
	status Status

	lifecycleMu sync.Mutex
	enabled     bool
	started     bool
	parent      context.Context
	stop        context.CancelFunc
	done        chan struct{}
}

// New builds a Client for the push channel derived from baseURL. Nothing
// is dialled until Start.
func New(baseURL string, onMessage HandlerFunc, opts ...Option) *Client {
	c := &Client{
		endpoint:          DeriveEndpoint(baseURL),
		logger:            logger.NewDiscardLogger(),
		reconnectDelay:    ReconnectDelay,
		heartbeatInterval: HeartbeatInterval,
		enabled:           true,
		status:            StatusIdle,
	}
	c.handler.Store(onMessage)

	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = NewWebSocketDialer(nil)
	}

	return c
}

// Endpoint returns the derived push-channel URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetHandler replaces the message handler without touching the connection.
func (c *Client) SetHandler(fn HandlerFunc) {
	c.handler.Store(fn)
}

// Start binds the client to ctx and connects if the client is enabled.
// Calling Start on a started client is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.started {
		return
	}
	c.started = true
	c.parent = ctx

	if c.enabled {
		c.startSession()
	}
}

// SetEnabled connects on false -> true and tears down on true -> false.
// Before Start it only records the flag.
func (c *Client) SetEnabled(enabled bool) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.enabled == enabled {
		return
	}
	c.enabled = enabled

	if !c.started {
		return
	}
	if enabled {
		c.startSession()
	} else {
		c.teardown()
	}
}

// Enabled reports the current enabled flag.
func (c *Client) Enabled() bool {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.enabled
}

// Close tears the client down. It never fails; the error is for io.Closer.
func (c *Client) Close() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.teardown()
	c.started = false
	return nil
}

func (c *Client) startSession() {
	if c.stop != nil {
		return
	}
	if err := c.parent.Err(); err != nil {
		c.logger.Warnf("not connecting to %s: %v", c.endpoint, err)
		return
	}

	ctx, cancel := context.WithCancel(c.parent)
	done := make(chan struct{})
	c.stop = cancel
	c.done = done

	go c.run(ctx, c.parent, done)
}

// teardown cancels the session and waits for the run loop to release the
// reconnect timer, the heartbeat ticker and the connection.
func (c *Client) teardown() {
	if c.stop == nil {
		return
	}

	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil

	stop()
	<-done

	c.transition(StatusIdle)
	c.logger.Info("stream client torn down")
}

func (c *Client) transition(to Status) {
	c.mu.Lock()
	from := c.status
	if !canTransition(from, to) {
		c.mu.Unlock()
		return
	}
	c.status = to
	listener := c.onStatus
	c.mu.Unlock()

	c.logger.Debugf("stream status %s -> %s", from, to)
	if listener != nil {
		listener(to)
	}
}

// run owns one session. When parent ends the session instead of teardown,
// the loop reports closed before it exits.
func (c *Client) run(ctx, parent context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if parent.Err() != nil {
			c.transition(StatusClosed)
		}
	}()

	for {
		c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		c.logger.Infof("reconnecting to %s in %s", c.endpoint, c.reconnectDelay)
		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connect performs one connection attempt and serves it until it ends.
func (c *Client) connect(ctx context.Context) {
	c.transition(StatusConnecting)

	conn, err := c.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warnf("failed to connect to %s: %v", c.endpoint, err)
		c.transition(StatusClosed)
		return
	}
	if ctx.Err() != nil {
		conn.Close()
		return
	}

	c.logger.Infof("connected to %s", c.endpoint)
	c.transition(StatusOpen)
	c.serve(ctx, conn)
}

type frame struct {
	kind int
	data []byte
	err  error
}

func (c *Client) serve(ctx context.Context, conn Conn) {
	frames := make(chan frame)
	quit := make(chan struct{})
	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)
		c.readPump(conn, frames, quit)
	}()

	heartbeat := time.NewTicker(c.heartbeatInterval)
	defer func() {
		heartbeat.Stop()
		conn.Close()
		close(quit)
		<-pumpDone
	}()

	for {
		select {
		case f := <-frames:
			if ctx.Err() != nil {
				return
			}
			if f.err != nil {
				if websocket.IsCloseError(f.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Infof("stream connection closed: %v", f.err)
				} else {
					c.logger.Warnf("stream connection lost: %v", f.err)
				}
				c.transition(StatusClosed)
				return
			}
			c.dispatch(f.kind, f.data)

		case <-heartbeat.C:
			// Probe failures are ignored; a dead connection surfaces as a
			// read error instead.
			_ = conn.WriteMessage(websocket.TextMessage, []byte(heartbeatPayload))

		case <-ctx.Done():
			_ = conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return
		}
	}
}

// readPump forwards frames until the connection fails or quit is closed.
// The terminal read error is delivered on the same channel, after every
// frame that preceded it.
func (c *Client) readPump(conn Conn, frames chan<- frame, quit <-chan struct{}) {
	for {
		kind, data, err := conn.ReadMessage()
		select {
		case frames <- frame{kind: kind, data: data, err: err}:
		case <-quit:
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) dispatch(kind int, data []byte) {
	if kind != websocket.TextMessage {
		c.logger.Warnf("dropping non-text stream frame (%d bytes)", len(data))
		return
	}

	msg, err := DecodeMessage(data)
	if err != nil {
		c.logger.Warnf("dropping stream message (%d bytes): %v", len(data), err)
		return
	}

	fn := c.handler.Load()
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("stream handler panicked on %q message: %v", msg.Type, r)
		}
	}()
	fn(msg)
}
