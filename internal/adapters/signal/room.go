package signal

import (
	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoin answers only the requester; on success everyone learns about
// it from the snapshot the registry publishes.
func (h *Hub) handleJoin(id domain.ParticipantID, conn *WsSignalConn, data []byte) {
	var p wire.JoinRoom
	if err := wire.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad join payload")
		h.sendError(conn, wire.CodeBadPayload)
		return
	}
	resp := wire.JoinResult{Type: wire.TypeJoinResult, RequestID: p.RequestID, Room: p.Room}
	if room, ok := h.Registry.Rooms().Get(p.Room); ok {
		resp.Capacity = room.Capacity
	}

	if !h.limiter.Allow(id) {
		log.Warn().Str("module", "adapters.signal").Stringer("participant", id).Msg("join rate limited")
		resp.Error = wire.CodeRateLimited
		resp.Occupancy = h.Registry.Occupancy(p.Room)
		h.sendJSON(conn, resp)
		return
	}

	err := h.Registry.JoinRoom(id, p.Room)
	resp.Occupancy = h.Registry.Occupancy(p.Room)
	if err != nil {
		log.Info().Err(err).Str("module", "adapters.signal").Stringer("participant", id).Str("room", string(p.Room)).Msg("join rejected")
		resp.Error = wire.Code(err)
		h.sendJSON(conn, resp)
		return
	}
	resp.OK = true
	h.sendJSON(conn, resp)
}

// handleLeave returns the participant to the open floor; the socket stays.
func (h *Hub) handleLeave(id domain.ParticipantID, conn *WsSignalConn) {
	log.Info().Str("module", "adapters.signal").Stringer("participant", id).Msg("leave")
	if err := h.Registry.LeaveRoom(id); err != nil {
		h.sendError(conn, wire.Code(err))
	}
}
