package signal

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/app/presence"
	"github.com/dkeye/Office/internal/app/rooms"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var testWorld = domain.Rect{X: 0, Y: 0, W: 2000, H: 1125}

func newTestServer(t *testing.T, opts Options) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir, err := rooms.New([]domain.Room{
		{ID: "M", Name: "Meeting", Bounds: domain.Rect{X: 100, Y: 100, W: 200, H: 200}, Capacity: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	reg := presence.NewRegistry(dir, presence.Placement{
		World:  testWorld,
		Margin: 20,
		Spawn:  domain.Position{X: 1400, Y: 900},
		Lobby:  domain.Position{X: 1300, Y: 900},
	})
	hub := NewHub(reg, domain.Layout{World: testWorld, Rooms: dir.List()}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { hub.HandleSignal(ctx, c, c.Query("name")) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

type testClient struct {
	ws *websocket.Conn
	id domain.ParticipantID
}

func dial(t *testing.T, srv *httptest.Server, name string) *testClient {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=" + url.QueryEscape(name)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	tc := &testClient{ws: ws}
	var w wire.Welcome
	if err := wire.Decode(tc.next(t, wire.TypeWelcome), &w); err != nil {
		t.Fatal(err)
	}
	tc.id = w.ID
	return tc
}

func (tc *testClient) send(t *testing.T, v any) {
	t.Helper()
	frame, err := wire.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := tc.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// next skips messages until one of type typ arrives.
func (tc *testClient) next(t *testing.T, typ string) []byte {
	t.Helper()
	_ = tc.ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := tc.ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if got, _ := wire.Peek(data); got == typ {
			return data
		}
	}
}

func (tc *testClient) snapshotWhere(t *testing.T, pred func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	for {
		var msg wire.Snapshot
		if err := wire.Decode(tc.next(t, wire.TypeSnapshot), &msg); err != nil {
			t.Fatal(err)
		}
		if pred(msg.Snapshot) {
			return msg.Snapshot
		}
	}
}

func TestWelcomeThenSnapshotWithSelf(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "Aiko")
	snap := a.snapshotWhere(t, func(s domain.Snapshot) bool { _, ok := s.Find(a.id); return ok })
	p, _ := snap.Find(a.id)
	if p.DisplayName != "Aiko" || p.Position != (domain.Position{X: 1400, Y: 900}) || p.InRoom() {
		t.Fatalf("self = %+v", p)
	}
}

func TestMoveIsBroadcastToOthers(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")

	a.send(t, wire.Move{Type: wire.TypeMove, X: 500, Y: 600})
	b.snapshotWhere(t, func(s domain.Snapshot) bool {
		p, ok := s.Find(a.id)
		return ok && p.Position == domain.Position{X: 500, Y: 600}
	})
}

func TestJoinResultAndRoomFull(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")

	a.send(t, wire.JoinRoom{Type: wire.TypeJoinRoom, RequestID: 7, Room: "M"})
	var res wire.JoinResult
	if err := wire.Decode(a.next(t, wire.TypeJoinResult), &res); err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.RequestID != 7 || res.Occupancy != 1 || res.Capacity != 1 {
		t.Fatalf("a join = %+v", res)
	}

	b.send(t, wire.JoinRoom{Type: wire.TypeJoinRoom, RequestID: 1, Room: "M"})
	if err := wire.Decode(b.next(t, wire.TypeJoinResult), &res); err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Error != wire.CodeRoomFull || res.Occupancy != 1 {
		t.Fatalf("b join = %+v", res)
	}

	b.send(t, wire.JoinRoom{Type: wire.TypeJoinRoom, RequestID: 2, Room: "nope"})
	if err := wire.Decode(b.next(t, wire.TypeJoinResult), &res); err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Error != wire.CodeUnknownRoom {
		t.Fatalf("unknown room join = %+v", res)
	}
}

func TestJoinAttemptsAreRateLimited(t *testing.T) {
	_, srv := newTestServer(t, Options{JoinLimit: 2, JoinWindow: time.Minute})
	a := dial(t, srv, "a")

	codes := make([]string, 0, 3)
	for i := range 3 {
		a.send(t, wire.JoinRoom{Type: wire.TypeJoinRoom, RequestID: uint64(i), Room: "nope"})
		var res wire.JoinResult
		if err := wire.Decode(a.next(t, wire.TypeJoinResult), &res); err != nil {
			t.Fatal(err)
		}
		codes = append(codes, res.Error)
	}
	if codes[0] != wire.CodeUnknownRoom || codes[1] != wire.CodeUnknownRoom || codes[2] != wire.CodeRateLimited {
		t.Fatalf("codes = %v", codes)
	}
}

func TestCallSignalRelayedByAddress(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")

	a.send(t, wire.SetCallAddress{Type: wire.TypeSetCallAddress, Address: "addr-a"})
	b.send(t, wire.SetCallAddress{Type: wire.TypeSetCallAddress, Address: "addr-b"})
	a.snapshotWhere(t, func(s domain.Snapshot) bool {
		pa, _ := s.Find(a.id)
		pb, _ := s.Find(b.id)
		return pa.Dialable() && pb.Dialable()
	})

	a.send(t, wire.CallSignal{Type: wire.TypeSignal, Kind: wire.SignalOffer, CallID: "c1", From: "spoofed", To: "addr-b", SDP: "v=0"})
	var got wire.CallSignal
	if err := wire.Decode(b.next(t, wire.TypeSignal), &got); err != nil {
		t.Fatal(err)
	}
	if got.From != "addr-a" || got.CallID != "c1" || got.Kind != wire.SignalOffer || got.SDP != "v=0" {
		t.Fatalf("relayed = %+v", got)
	}

	a.send(t, wire.CallSignal{Type: wire.TypeSignal, Kind: wire.SignalOffer, CallID: "c2", To: "addr-x"})
	var e wire.Error
	if err := wire.Decode(a.next(t, wire.TypeError), &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != wire.CodeUnknownTarget {
		t.Fatalf("error = %+v", e)
	}
}

func TestSignalWithoutOwnAddressRejected(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")
	a.send(t, wire.CallSignal{Type: wire.TypeSignal, Kind: wire.SignalOffer, CallID: "c1", To: "addr-b"})
	var e wire.Error
	if err := wire.Decode(a.next(t, wire.TypeError), &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != wire.CodeNotDialable {
		t.Fatalf("error = %+v", e)
	}
}

func TestDisconnectRemovesParticipant(t *testing.T) {
	hub, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	a.snapshotWhere(t, func(s domain.Snapshot) bool { _, ok := s.Find(b.id); return ok })

	_ = b.ws.Close()
	a.snapshotWhere(t, func(s domain.Snapshot) bool { _, ok := s.Find(b.id); return !ok })
	if _, ok := hub.Registry.Get(b.id); ok {
		t.Fatal("b still registered")
	}
}

func TestRenameAndPing(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	a := dial(t, srv, "a")

	a.send(t, wire.Rename{Type: wire.TypeRename, Name: "Bea"})
	var who wire.WhoAmI
	if err := wire.Decode(a.next(t, wire.TypeWhoAmI), &who); err != nil {
		t.Fatal(err)
	}
	if who.DisplayName != "Bea" || who.ID != a.id {
		t.Fatalf("whoami = %+v", who)
	}

	a.send(t, wire.Rename{Type: wire.TypeRename, Name: strings.Repeat("x", domain.MaxDisplayNameLen+1)})
	var e wire.Error
	if err := wire.Decode(a.next(t, wire.TypeError), &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != wire.CodeInvalidName {
		t.Fatalf("error = %+v", e)
	}

	a.send(t, wire.Envelope{Type: wire.TypePing})
	a.next(t, wire.TypePong)
}

func TestInvalidNameRejectedAtConnect(t *testing.T) {
	hub, srv := newTestServer(t, Options{})
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=" + strings.Repeat("n", domain.MaxDisplayNameLen+1)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	tc := &testClient{ws: ws}
	var e wire.Error
	if err := wire.Decode(tc.next(t, wire.TypeError), &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != wire.CodeInvalidName {
		t.Fatalf("error = %+v", e)
	}
	if hub.Connections() != 0 || len(hub.Registry.Snapshot().Participants) != 0 {
		t.Fatal("rejected client registered")
	}
}

func TestJoinRateLimiterWindowSlides(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewJoinRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow(1) || !rl.Allow(1) {
		t.Fatal("first two attempts must pass")
	}
	if rl.Allow(1) {
		t.Fatal("third attempt inside the window passed")
	}
	if !rl.Allow(2) {
		t.Fatal("limits are per participant")
	}
	now = now.Add(11 * time.Second)
	if !rl.Allow(1) {
		t.Fatal("window did not slide")
	}
	rl.Forget(1)
	if _, ok := rl.history[1]; ok {
		t.Fatal("Forget kept history")
	}
}

func TestPolicies(t *testing.T) {
	if (KickSlowConsumer{}).OnBackpressure(1) != ActionKick {
		t.Fatal("kick policy")
	}
	if (DropFrame{}).OnBackpressure(1) != ActionDrop {
		t.Fatal("drop policy")
	}
}
