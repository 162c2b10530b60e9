package signal

import (
	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleCallSignal forwards call negotiation to the participant that owns
// the target call address. From is stamped by the server.
func (h *Hub) handleCallSignal(id domain.ParticipantID, conn *WsSignalConn, data []byte) {
	var p wire.CallSignal
	if err := wire.Decode(data, &p); err != nil || p.CallID == "" {
		h.sendError(conn, wire.CodeBadPayload)
		return
	}
	sender, ok := h.Registry.Get(id)
	if !ok {
		h.sendError(conn, wire.CodeNotConnected)
		return
	}
	if !sender.Dialable() {
		h.sendError(conn, wire.CodeNotDialable)
		return
	}
	target, ok := h.Registry.ByCallAddress(p.To)
	if !ok {
		log.Debug().Str("module", "adapters.signal").Stringer("participant", id).Str("to", string(p.To)).Msg("signal target unknown")
		h.sendError(conn, wire.CodeUnknownTarget)
		return
	}
	dst, ok := h.conn(target.ID)
	if !ok {
		h.sendError(conn, wire.CodeUnknownTarget)
		return
	}
	p.Type = wire.TypeSignal
	p.From = sender.CallAddress
	log.Debug().Str("module", "adapters.signal").Stringer("participant", id).Stringer("peer", target.ID).Str("kind", p.Kind).Str("call", p.CallID).Msg("relay")
	h.sendJSON(dst, p)
}
