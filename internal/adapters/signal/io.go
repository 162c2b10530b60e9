package signal

import (
	"context"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (h *Hub) writePump(ctx context.Context, c *WsSignalConn) {
	ping := time.NewTicker(h.opts.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "adapters.signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "adapters.signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "adapters.signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (h *Hub) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ParticipantID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "adapters.signal").Stringer("participant", id).Msg("readPump closing")
		cancel()
		h.remove(id)
		h.limiter.Forget(id)
		h.Registry.Disconnect(id)
		c.Close()
	}()

	pongWait := h.opts.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "adapters.signal").Stringer("participant", id).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleSignal(id, c, data)
	}
}

func (h *Hub) handleSignal(id domain.ParticipantID, c *WsSignalConn, data []byte) {
	typ, err := wire.Peek(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.signal").Stringer("participant", id).Msg("bad json")
		h.sendError(c, wire.CodeBadPayload)
		return
	}

	switch typ {
	case wire.TypeMove:
		h.handleMove(id, c, data)
	case wire.TypeJoinRoom:
		h.handleJoin(id, c, data)
	case wire.TypeLeaveRoom:
		h.handleLeave(id, c)
	case wire.TypeSetCallAddress:
		h.handleSetCallAddress(id, c, data)
	case wire.TypeRename:
		h.handleRename(id, c, data)
	case wire.TypeWhoAmI:
		h.handleWhoAmI(id, c)
	case wire.TypePing:
		h.handlePing(c)
	case wire.TypeSignal:
		h.handleCallSignal(id, c, data)
	default:
		log.Warn().Str("module", "adapters.signal").Str("type", typ).Msg("unknown signal")
		h.sendError(c, wire.CodeUnknownMessage)
	}
}

func (h *Hub) sendJSON(c *WsSignalConn, v any) {
	b, err := wire.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (h *Hub) sendError(c *WsSignalConn, code string) {
	h.sendJSON(c, wire.Error{Type: wire.TypeError, Error: code})
}
