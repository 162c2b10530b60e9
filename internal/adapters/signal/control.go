package signal

import "github.com/dkeye/Office/internal/adapters/wire"

func (h *Hub) handlePing(conn *WsSignalConn) {
	h.sendJSON(conn, wire.Envelope{Type: wire.TypePong})
}
