package rooms

import (
	"testing"

	"github.com/dkeye/Office/internal/domain"
)

var (
	roomA = domain.Room{ID: "A", Name: "Glass hall", Bounds: domain.Rect{X: 40, Y: 180, W: 680, H: 800}, Capacity: 10}
	roomB = domain.Room{ID: "B", Name: "Sofa corner", Bounds: domain.Rect{X: 820, Y: 550, W: 500, H: 450}, Capacity: 6}
)

func TestDirectoryLookup(t *testing.T) {
	d, err := New([]domain.Room{roomA, roomB})
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := d.Get("B"); !ok || r.Capacity != 6 {
		t.Fatalf("Get(B) = %+v, %v", r, ok)
	}
	if _, ok := d.Get("Z"); ok {
		t.Fatal("unexpected room Z")
	}
	if r, ok := d.At(domain.Position{X: 900, Y: 600}); !ok || r.ID != "B" {
		t.Fatalf("At = %+v, %v", r, ok)
	}
	if _, ok := d.At(domain.Position{X: 1900, Y: 50}); ok {
		t.Fatal("open floor position matched a room")
	}
}

func TestDirectoryInfos(t *testing.T) {
	d, _ := New([]domain.Room{roomA, roomB})
	snap := domain.Snapshot{Participants: []domain.Participant{
		{ID: 1, RoomID: "A"},
		{ID: 2, RoomID: "A"},
		{ID: 3},
		{ID: 4, RoomID: "B"},
	}}
	infos := d.Infos(snap)
	if len(infos) != 2 {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].ID != "A" || infos[0].Occupancy != 2 || infos[0].Full() {
		t.Errorf("A = %+v", infos[0])
	}
	if infos[1].ID != "B" || infos[1].Occupancy != 1 {
		t.Errorf("B = %+v", infos[1])
	}
}

func TestNewValidates(t *testing.T) {
	cases := map[string][]domain.Room{
		"duplicate": {roomA, roomA},
		"zero capacity": {
			{ID: "C", Bounds: domain.Rect{W: 1, H: 1}},
		},
		"no id": {
			{Name: "nameless", Bounds: domain.Rect{W: 1, H: 1}, Capacity: 1},
		},
		"no bounds": {
			{ID: "D", Capacity: 1},
		},
	}
	for name, rs := range cases {
		if _, err := New(rs); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
