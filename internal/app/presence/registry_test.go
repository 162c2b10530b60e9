package presence

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/dkeye/Office/internal/app/rooms"
	"github.com/dkeye/Office/internal/domain"
)

type recorder struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
}

func (r *recorder) Publish(s domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func newTestRegistry(t *testing.T) (*Registry, *recorder) {
	t.Helper()
	dir, err := rooms.New([]domain.Room{
		{ID: "M", Name: "Meeting", Bounds: domain.Rect{X: 100, Y: 100, W: 200, H: 200}, Capacity: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry(dir, Placement{
		World:  domain.Rect{W: 2000, H: 1125},
		Margin: 20,
		Spawn:  domain.Position{X: 1400, Y: 900},
		Lobby:  domain.Position{X: 1300, Y: 900},
	})
	rec := &recorder{}
	reg.SetPublisher(rec)
	return reg, rec
}

func mustConnect(t *testing.T, reg *Registry, name string) domain.ParticipantID {
	t.Helper()
	id, err := reg.Connect(name)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestConnectAssignsIncreasingIDsAndBroadcasts(t *testing.T) {
	reg, rec := newTestRegistry(t)
	a := mustConnect(t, reg, "")
	b := mustConnect(t, reg, "Ben")
	if !a.Less(b) {
		t.Fatalf("ids not increasing: %v %v", a, b)
	}
	if rec.count() != 2 {
		t.Fatalf("broadcasts = %d, want 2", rec.count())
	}
	snap := rec.last()
	if len(snap.Participants) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	pa, _ := snap.Find(a)
	if pa.DisplayName != DefaultDisplayName || pa.InRoom() || pa.Dialable() {
		t.Errorf("new participant = %+v", pa)
	}
	if pa.Position != (domain.Position{X: 1400, Y: 900}) {
		t.Errorf("spawn = %v", pa.Position)
	}
}

func TestRoomCapacityScenario(t *testing.T) {
	reg, rec := newTestRegistry(t)
	a := mustConnect(t, reg, "A")
	b := mustConnect(t, reg, "B")
	c := mustConnect(t, reg, "C")

	if err := reg.JoinRoom(a, "M"); err != nil {
		t.Fatalf("A join: %v", err)
	}
	if got := reg.Occupancy("M"); got != 1 {
		t.Fatalf("occupancy = %d", got)
	}
	if err := reg.JoinRoom(b, "M"); err != nil {
		t.Fatalf("B join: %v", err)
	}
	before := rec.count()

	err := reg.JoinRoom(c, "M")
	if !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("C join err = %v, want ErrRoomFull", err)
	}
	if got := reg.Occupancy("M"); got != 2 {
		t.Fatalf("occupancy after rejected join = %d", got)
	}
	if rec.count() != before {
		t.Fatal("rejected join must not broadcast")
	}
	pc, _ := reg.Get(c)
	if pc.InRoom() {
		t.Fatal("rejected participant got a room")
	}
}

func TestJoinRoomRules(t *testing.T) {
	reg, rec := newTestRegistry(t)
	a := mustConnect(t, reg, "A")

	if err := reg.JoinRoom(a, "nope"); !errors.Is(err, domain.ErrUnknownRoom) {
		t.Fatalf("unknown room err = %v", err)
	}
	if err := reg.JoinRoom(99, "M"); !errors.Is(err, domain.ErrUnknownParticipant) {
		t.Fatalf("unknown participant err = %v", err)
	}
	if err := reg.JoinRoom(a, "M"); err != nil {
		t.Fatal(err)
	}
	pa, _ := reg.Get(a)
	if pa.RoomID != "M" || pa.Position != (domain.Position{X: 200, Y: 200}) {
		t.Fatalf("joined participant = %+v", pa)
	}
	n := rec.count()
	if err := reg.JoinRoom(a, "M"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if rec.count() != n {
		t.Fatal("rejoining the same room must be a no-op")
	}
}

func TestMoveClamping(t *testing.T) {
	reg, _ := newTestRegistry(t)
	a := mustConnect(t, reg, "A")

	if err := reg.UpdatePosition(a, domain.Position{X: -10, Y: 5000}); err != nil {
		t.Fatal(err)
	}
	pa, _ := reg.Get(a)
	if pa.Position != (domain.Position{X: 20, Y: 1105}) {
		t.Fatalf("world clamp = %v", pa.Position)
	}

	_ = reg.JoinRoom(a, "M")
	_ = reg.UpdatePosition(a, domain.Position{X: 1900, Y: 1000})
	pa, _ = reg.Get(a)
	if pa.Position != (domain.Position{X: 280, Y: 280}) {
		t.Fatalf("room clamp = %v", pa.Position)
	}

	if err := reg.UpdatePosition(a, domain.Position{X: math.NaN()}); !errors.Is(err, domain.ErrInvalidPosition) {
		t.Fatalf("NaN err = %v", err)
	}
}

func TestLeaveRoomReturnsToLobby(t *testing.T) {
	reg, rec := newTestRegistry(t)
	a := mustConnect(t, reg, "A")
	n := rec.count()
	if err := reg.LeaveRoom(a); err != nil || rec.count() != n {
		t.Fatal("leave on open floor must be a silent no-op")
	}
	_ = reg.JoinRoom(a, "M")
	if err := reg.LeaveRoom(a); err != nil {
		t.Fatal(err)
	}
	pa, _ := reg.Get(a)
	if pa.InRoom() || pa.Position != (domain.Position{X: 1300, Y: 900}) {
		t.Fatalf("after leave = %+v", pa)
	}
	if reg.Occupancy("M") != 0 {
		t.Fatal("occupancy not released")
	}
}

func TestCallAddressAndRename(t *testing.T) {
	reg, _ := newTestRegistry(t)
	a := mustConnect(t, reg, "A")
	if err := reg.SetCallAddress(a, "addr-a"); err != nil {
		t.Fatal(err)
	}
	if p, ok := reg.ByCallAddress("addr-a"); !ok || p.ID != a {
		t.Fatalf("ByCallAddress = %+v, %v", p, ok)
	}
	if _, ok := reg.ByCallAddress(""); ok {
		t.Fatal("empty address must not resolve")
	}
	if err := reg.Rename(a, ""); !errors.Is(err, domain.ErrNameEmpty) {
		t.Fatalf("rename err = %v", err)
	}
	if err := reg.Rename(a, "Aiko"); err != nil {
		t.Fatal(err)
	}
	pa, _ := reg.Get(a)
	if pa.DisplayName != "Aiko" {
		t.Fatalf("name = %q", pa.DisplayName)
	}
}

func TestDisconnectRemovesAtomically(t *testing.T) {
	reg, rec := newTestRegistry(t)
	a := mustConnect(t, reg, "A")
	b := mustConnect(t, reg, "B")
	_ = reg.JoinRoom(a, "M")

	reg.Disconnect(a)
	snap := rec.last()
	if _, ok := snap.Find(a); ok {
		t.Fatal("disconnected participant still in snapshot")
	}
	if _, ok := snap.Find(b); !ok {
		t.Fatal("other participant vanished")
	}
	if reg.Occupancy("M") != 0 {
		t.Fatal("disconnect must free the seat")
	}
	n := rec.count()
	reg.Disconnect(a)
	if rec.count() != n {
		t.Fatal("double disconnect broadcast")
	}
}

func TestSnapshotVersionsStrictlyIncrease(t *testing.T) {
	reg, rec := newTestRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := reg.Connect("")
			if err != nil {
				t.Error(err)
				return
			}
			_ = reg.UpdatePosition(id, domain.Position{X: 500, Y: 500})
		}()
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := 1; i < len(rec.snaps); i++ {
		if rec.snaps[i].Version <= rec.snaps[i-1].Version {
			t.Fatalf("version %d after %d", rec.snaps[i].Version, rec.snaps[i-1].Version)
		}
	}
	if n := len(rec.snaps[len(rec.snaps)-1].Participants); n != 20 {
		t.Fatalf("participants = %d", n)
	}
}
