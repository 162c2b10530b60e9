package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/app/presence"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	SendBuffer int
	ReadLimit  int64
	PingPeriod time.Duration
	JoinLimit  int
	JoinWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 54 * time.Second
	}
	if o.JoinLimit <= 0 {
		o.JoinLimit = 5
	}
	if o.JoinWindow <= 0 {
		o.JoinWindow = 10 * time.Second
	}
	return o
}

// Hub owns every signaling websocket and fans registry snapshots out to
// them. It implements core.SnapshotPublisher.
type Hub struct {
	Registry *presence.Registry
	Layout   domain.Layout

	opts    Options
	limiter *JoinRateLimiter
	policy  Policy

	mu    sync.RWMutex
	conns map[domain.ParticipantID]*WsSignalConn
}

func NewHub(reg *presence.Registry, layout domain.Layout, opts Options) *Hub {
	opts = opts.withDefaults()
	h := &Hub{
		Registry: reg,
		Layout:   layout,
		opts:     opts,
		limiter:  NewJoinRateLimiter(opts.JoinLimit, opts.JoinWindow),
		policy:   KickSlowConsumer{},
		conns:    make(map[domain.ParticipantID]*WsSignalConn),
	}
	reg.SetPublisher(h)
	return h
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var _ core.SignalConnection = (*WsSignalConn)(nil)

// Publish runs under the registry lock: it only enqueues frames.
func (h *Hub) Publish(snap domain.Snapshot) {
	frame, err := wire.Encode(wire.Snapshot{Type: wire.TypeSnapshot, Snapshot: snap})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("encode snapshot")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.conns {
		h.deliver(id, c, frame)
	}
}

func (h *Hub) deliver(id domain.ParticipantID, c *WsSignalConn, frame core.Frame) {
	err := c.TrySend(frame)
	if err == nil {
		return
	}
	if errors.Is(err, core.ErrBackpressure) {
		switch h.policy.OnBackpressure(id) {
		case ActionKick:
			log.Warn().Str("module", "adapters.signal").Stringer("participant", id).Msg("slow consumer kicked")
			c.Close()
		case ActionDrop:
			log.Debug().Str("module", "adapters.signal").Stringer("participant", id).Msg("frame dropped")
		}
		return
	}
	log.Debug().Err(err).Str("module", "adapters.signal").Stringer("participant", id).Msg("send on closed connection")
}

// Connections reports how many websockets are attached.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) add(id domain.ParticipantID, c *WsSignalConn) {
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id domain.ParticipantID) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

func (h *Hub) conn(id domain.ParticipantID) (*WsSignalConn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers a participant named
// name. The participant lives exactly as long as the websocket.
func (h *Hub) HandleSignal(ctx context.Context, c *gin.Context, name string) {
	token := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(h.opts.ReadLimit)
	conn := newConn(ws, h.opts.SendBuffer)

	id, err := h.Registry.Connect(name)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.signal").Str("client_token", token).Msg("connect rejected")
		h.rejectAndClose(ws, err)
		return
	}
	log.Info().Str("module", "adapters.signal").Str("client_token", token).Stringer("participant", id).Msg("new WS connection")

	h.sendJSON(conn, wire.Welcome{Type: wire.TypeWelcome, ID: id, Layout: h.Layout})
	h.add(id, conn)
	h.sendJSON(conn, wire.Snapshot{Type: wire.TypeSnapshot, Snapshot: h.Registry.Snapshot()})

	ctx, cancel := context.WithCancel(ctx)
	go h.writePump(ctx, conn)
	go h.readPump(ctx, cancel, id, conn)
}

func (h *Hub) rejectAndClose(ws *websocket.Conn, cause error) {
	frame, err := wire.Encode(wire.Error{Type: wire.TypeError, Error: wire.Code(cause)})
	if err == nil {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteMessage(websocket.TextMessage, frame)
	}
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, wire.Code(cause)))
	_ = ws.Close()
}
