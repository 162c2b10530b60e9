package wsclient

import (
	"context"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gorilla/websocket"
)

func (c *Client) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case frame := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				if c.isClosed() {
					return nil
				}
				c.logger.Error().Err(err).Msg("writePump write error")
				return ErrDisconnected
			}
		}
	}
}

func (c *Client) readPump() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return nil
			}
			c.logger.Warn().Err(err).Msg("readPump read error")
			return ErrDisconnected
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	typ, err := wire.Peek(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("bad json")
		return
	}
	switch typ {
	case wire.TypeSnapshot:
		var msg wire.Snapshot
		if err := wire.Decode(data, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("bad snapshot")
			return
		}
		c.pushSnapshot(msg.Snapshot)
	case wire.TypeJoinResult:
		var res wire.JoinResult
		if err := wire.Decode(data, &res); err != nil {
			c.logger.Warn().Err(err).Msg("bad join_result")
			return
		}
		c.mu.Lock()
		if ch, ok := c.pending[res.RequestID]; ok {
			ch <- res
			delete(c.pending, res.RequestID)
		}
		c.mu.Unlock()
	case wire.TypeSignal:
		var msg wire.CallSignal
		if err := wire.Decode(data, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("bad signal")
			return
		}
		c.mu.Lock()
		fn := c.onSignal
		c.mu.Unlock()
		if fn != nil {
			fn(msg)
		}
	case wire.TypeError:
		var e wire.Error
		_ = wire.Decode(data, &e)
		c.logger.Warn().Str("error", e.Error).Msg("server error")
	case wire.TypePong, wire.TypeWhoAmI, wire.TypeWelcome:
		c.logger.Debug().Str("type", typ).Msg("ignored")
	default:
		c.logger.Warn().Str("type", typ).Msg("unknown message")
	}
}

// pushSnapshot replaces an undelivered snapshot with the newer one. Only
// readPump sends on the channel.
func (c *Client) pushSnapshot(s domain.Snapshot) {
	for {
		select {
		case c.snapshots <- s:
			return
		default:
		}
		select {
		case <-c.snapshots:
		default:
		}
	}
}
