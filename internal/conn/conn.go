// Package conn owns the persistent channel to the matchmaking server.
// One Conn per session: dialed once after auth material is available,
// closed on teardown or fatal error, never redialed internally.
package conn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/avelichko/quizduel-client/internal/protocol"
)

var ErrAuthMissing = errors.New("no auth token available")
var ErrNotConnected = errors.New("not connected")

const writeTimeout = 3 * time.Second

// Handler receives everything the channel produces. Exactly one
// handler per connection; OnMessage and OnClosed are called from the
// reader goroutine.
type Handler interface {
	OnMessage(data []byte)
	OnClosed(code int, reason string, lost bool)
}

type Conn struct {
	ws     *websocket.Conn
	log    *zap.Logger
	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// Dial opens the channel, authenticating via the token query parameter.
// It refuses to attempt a connection without a token.
func Dial(ctx context.Context, endpoint, token string, h Handler, log *zap.Logger) (*Conn, error) {
	if token == "" {
		return nil, ErrAuthMissing
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Conn{ws: ws, log: log, cancel: cancel}
	go c.readLoop(readCtx, h)

	log.Info("channel open", zap.String("endpoint", endpoint))
	return c, nil
}

// readLoop delivers frames until the channel dies, then classifies the
// close. 1000/1001 are a normal goodbye; anything else is fatal and
// requires a full manual restart.
func (c *Conn) readLoop(ctx context.Context, h Handler) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			c.markClosed()
			status := websocket.CloseStatus(err)
			switch status {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				h.OnClosed(int(status), "", false)
			case -1:
				// No close frame: torn transport or local teardown.
				if ctx.Err() != nil {
					h.OnClosed(int(websocket.StatusNormalClosure), "", false)
					return
				}
				h.OnClosed(-1, err.Error(), true)
			default:
				h.OnClosed(int(status), err.Error(), true)
			}
			return
		}
		h.OnMessage(data)
	}
}

// Send marshals and writes one command frame. There is no queueing and
// no retry: a send on a dead channel fails with ErrNotConnected and the
// caller must surface that.
func (c *Conn) Send(ctx context.Context, cmd protocol.Command) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrNotConnected
	}

	payload, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.ws.Write(wctx, websocket.MessageText, payload); err != nil {
		c.markClosed()
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// Close releases the channel. Safe to call on every exit path,
// including after a failed setup.
func (c *Conn) Close() {
	c.markClosed()
	c.cancel()
	_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Conn) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
