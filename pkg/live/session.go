package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 32
	releaseTimeout = 5 * time.Second
)

// Session is one WebSocket connection.
type Session struct {
	ID string

	server *Server
	conn   *websocket.Conn
	out    chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		server: s,
		conn:   conn,
		out:    make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Close ends the session. Only the first call has effect.
func (c *Session) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Session) send(kind string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Error("encode live message", "type", kind, "err", err)
		return
	}
	c.enqueue(kind, data)
}

func (c *Session) sendError(err error) {
	c.send(TypeError, ServerMessage{Type: TypeError, Error: errorBody(err)})
}

// enqueue never blocks: a session that cannot keep up loses messages, and
// the next frame supersedes the lost ones.
func (c *Session) enqueue(kind string, data []byte) {
	select {
	case <-c.done:
	case c.out <- data:
		c.server.recorder.RecordLiveMessage("out", kind)
	default:
		c.server.logger.Debug("live session slow, message dropped", "session", c.ID, "type", kind)
	}
}

func (c *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.server.logger.Debug("live write failed", "session", c.ID, "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Session) reader(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debug("live session read", "session", c.ID, "err", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if kind != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode message"))
			continue
		}
		if clientTypes[msg.Type] {
			c.server.recorder.RecordLiveMessage("in", msg.Type)
		} else {
			c.server.recorder.RecordLiveMessage("in", "unknown")
		}

		err = c.server.driver.Do(ctx, func() error {
			return c.server.apply(c.ID, msg, time.Now())
		})
		if err != nil {
			if errors.Is(err, errors.ErrCodeStopped) || ctx.Err() != nil {
				return
			}
			c.sendError(err)
		}
	}
}
