package signal

import (
	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

func (h *Hub) handleMove(id domain.ParticipantID, conn *WsSignalConn, data []byte) {
	var p wire.Move
	if err := wire.Decode(data, &p); err != nil {
		h.sendError(conn, wire.CodeBadPayload)
		return
	}
	if err := h.Registry.UpdatePosition(id, domain.Position{X: p.X, Y: p.Y}); err != nil {
		h.sendError(conn, wire.Code(err))
	}
}

func (h *Hub) handleSetCallAddress(id domain.ParticipantID, conn *WsSignalConn, data []byte) {
	var p wire.SetCallAddress
	if err := wire.Decode(data, &p); err != nil {
		h.sendError(conn, wire.CodeBadPayload)
		return
	}
	log.Info().Str("module", "adapters.signal").Stringer("participant", id).Str("address", string(p.Address)).Msg("call address")
	if err := h.Registry.SetCallAddress(id, p.Address); err != nil {
		h.sendError(conn, wire.Code(err))
	}
}

func (h *Hub) handleRename(id domain.ParticipantID, conn *WsSignalConn, data []byte) {
	var p wire.Rename
	if err := wire.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad rename payload")
		h.sendError(conn, wire.CodeBadPayload)
		return
	}
	if err := h.Registry.Rename(id, p.Name); err != nil {
		h.sendError(conn, wire.Code(err))
		return
	}
	log.Info().Str("module", "adapters.signal").Stringer("participant", id).Str("name", p.Name).Msg("rename")
	h.handleWhoAmI(id, conn)
}

func (h *Hub) handleWhoAmI(id domain.ParticipantID, conn *WsSignalConn) {
	p, ok := h.Registry.Get(id)
	if !ok {
		h.sendError(conn, wire.CodeNotConnected)
		return
	}
	h.sendJSON(conn, wire.WhoAmI{Type: wire.TypeWhoAmI, ID: id, DisplayName: p.DisplayName, Room: p.RoomID})
}
