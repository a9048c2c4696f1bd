package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/techagentng/bookclub/models"
)

const maxFrameSize = 64 << 10

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferExceeded   = errors.New("connection buffer exceeded")
)

// State is the lifecycle position of a Connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	default:
		return "closed"
	}
}

type Options struct {
	SendBuffer   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 128
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

func (o Options) pingPeriod() time.Duration {
	return o.ReadTimeout * 9 / 10
}

// Connection is one authenticated socket. Outbound frames go through a
// buffered channel drained by a single writer goroutine.
type Connection struct {
	ID     string
	UserID uuid.UUID

	ws    *websocket.Conn
	send  chan []byte
	done  chan struct{}
	once  sync.Once
	state atomic.Int32
	opts  Options
}

// NewConnection wraps a socket whose handshake credential already resolved to userID.
func NewConnection(userID uuid.UUID, ws *websocket.Conn, opts Options) *Connection {
	opts = opts.withDefaults()
	c := &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
		opts:   opts,
	}
	c.state.Store(int32(StateAuthenticated))
	return c
}

func (c *Connection) State() State {
	return State(c.state.Load())
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Start launches the write loop. It must be called exactly once.
func (c *Connection) Start() {
	if c.state.CompareAndSwap(int32(StateAuthenticated), int32(StateActive)) {
		go c.writeLoop()
	}
}

// Send enqueues payload. A full buffer means the client is not keeping up,
// so the connection is closed instead of blocking the caller.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case <-c.done:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.ClosePolicyViolation, "send buffer full")
		return ErrBufferExceeded
	}
}

func (c *Connection) SendEvent(e models.ServerEvent) error {
	payload, err := models.Encode(e)
	if err != nil {
		return err
	}
	return c.Send(payload)
}

// Close terminates the socket. Safe to call more than once and from any goroutine.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)
		deadline := time.Now().Add(c.opts.WriteTimeout)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.ws.Close()
	})
}

// ReadLoop delivers inbound text frames to handle, one at a time, until the
// peer goes away or stops answering pings.
func (c *Connection) ReadLoop(handle func(frame []byte)) error {
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	})

	for {
		kind, frame, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		handle(frame)
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(kind int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(kind, payload)
}
