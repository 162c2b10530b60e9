// Package wsclient is the participant side of the signaling websocket.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDisconnected = errors.New("signaling disconnected")
	ErrNoWelcome    = errors.New("server did not send welcome")
)

const (
	writeWait   = 5 * time.Second
	welcomeWait = 10 * time.Second
	sendBuffer  = 64
)

type Client struct {
	ws      *websocket.Conn
	welcome wire.Welcome
	logger  zerolog.Logger

	send      chan core.Frame
	snapshots chan domain.Snapshot
	done      chan struct{}

	mu       sync.Mutex
	closed   bool
	nextReq  uint64
	pending  map[uint64]chan wire.JoinResult
	onSignal func(wire.CallSignal)
}

// Dial connects as name and waits for the welcome message.
func Dial(ctx context.Context, serverURL, name string, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if name != "" {
		q := u.Query()
		q.Set("name", name)
		u.RawQuery = q.Encode()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	welcome, err := readWelcome(ws)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	c := &Client{
		ws:        ws,
		welcome:   welcome,
		logger:    logger.With().Str("module", "adapters.wsclient").Stringer("participant", welcome.ID).Logger(),
		send:      make(chan core.Frame, sendBuffer),
		snapshots: make(chan domain.Snapshot, 1),
		done:      make(chan struct{}),
		pending:   make(map[uint64]chan wire.JoinResult),
	}
	c.logger.Info().Str("server", u.Redacted()).Msg("connected")
	return c, nil
}

func readWelcome(ws *websocket.Conn) (wire.Welcome, error) {
	var w wire.Welcome
	_ = ws.SetReadDeadline(time.Now().Add(welcomeWait))
	defer func() { _ = ws.SetReadDeadline(time.Time{}) }()
	_, data, err := ws.ReadMessage()
	if err != nil {
		return w, fmt.Errorf("read welcome: %w", err)
	}
	typ, err := wire.Peek(data)
	if err != nil {
		return w, fmt.Errorf("read welcome: %w", err)
	}
	switch typ {
	case wire.TypeWelcome:
		if err := wire.Decode(data, &w); err != nil {
			return w, fmt.Errorf("decode welcome: %w", err)
		}
		return w, nil
	case wire.TypeError:
		var e wire.Error
		_ = wire.Decode(data, &e)
		return w, fmt.Errorf("rejected: %w", wire.Err(e.Error))
	}
	return w, ErrNoWelcome
}

func (c *Client) ID() domain.ParticipantID { return c.welcome.ID }

func (c *Client) Layout() domain.Layout { return c.welcome.Layout }

// Snapshots holds at most the newest undelivered snapshot.
func (c *Client) Snapshots() <-chan domain.Snapshot { return c.snapshots }

// OnSignal sets the receiver of relayed call signals. Call before Run.
func (c *Client) OnSignal(fn func(wire.CallSignal)) {
	c.mu.Lock()
	c.onSignal = fn
	c.mu.Unlock()
}

// Run pumps the socket until ctx ends or the connection drops. The
// snapshot channel is closed on return.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump() })
	g.Go(func() error { return c.writePump(ctx) })
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.Close()
		return nil
	})
	err := g.Wait()
	close(c.snapshots)
	return err
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	_ = c.ws.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) Move(pos domain.Position) error {
	return c.sendJSON(wire.Move{Type: wire.TypeMove, X: pos.X, Y: pos.Y})
}

// JoinRoom waits for the server's join_result.
func (c *Client) JoinRoom(ctx context.Context, room domain.RoomID) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrDisconnected
	}
	c.nextReq++
	id := c.nextReq
	ch := make(chan wire.JoinResult, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.sendJSON(wire.JoinRoom{Type: wire.TypeJoinRoom, RequestID: id, Room: room}); err != nil {
		return err
	}
	select {
	case res, ok := <-ch:
		if !ok {
			return ErrDisconnected
		}
		if res.OK {
			return nil
		}
		return fmt.Errorf("join %s (%d/%d): %w", room, res.Occupancy, res.Capacity, wire.Err(res.Error))
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) LeaveRoom() error {
	return c.sendJSON(wire.Envelope{Type: wire.TypeLeaveRoom})
}

func (c *Client) SetCallAddress(addr domain.CallAddress) error {
	return c.sendJSON(wire.SetCallAddress{Type: wire.TypeSetCallAddress, Address: addr})
}

func (c *Client) Rename(name string) error {
	if err := domain.ValidateDisplayName(name); err != nil {
		return err
	}
	return c.sendJSON(wire.Rename{Type: wire.TypeRename, Name: name})
}

// SendSignal relays call negotiation through the server.
func (c *Client) SendSignal(msg wire.CallSignal) error {
	msg.Type = wire.TypeSignal
	return c.sendJSON(msg)
}

func (c *Client) sendJSON(v any) error {
	frame, err := wire.Encode(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrDisconnected
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return core.ErrBackpressure
	}
}
