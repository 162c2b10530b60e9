package wire

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkeye/Office/internal/domain"
)

func TestPeek(t *testing.T) {
	typ, err := Peek([]byte(`{"type":"move","x":1,"y":2}`))
	if err != nil || typ != TypeMove {
		t.Fatalf("Peek = %q, %v", typ, err)
	}
	if _, err := Peek([]byte(`{"x":1}`)); err == nil {
		t.Fatal("missing type accepted")
	}
	if _, err := Peek([]byte(`not json`)); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestErrorCodesRoundTripDomainErrors(t *testing.T) {
	for _, err := range []error{domain.ErrRoomFull, domain.ErrUnknownRoom, domain.ErrInvalidPosition, domain.ErrUnknownParticipant} {
		wrapped := fmt.Errorf("join: %w", err)
		if got := Err(Code(wrapped)); !errors.Is(got, err) {
			t.Errorf("%v -> %q -> %v", err, Code(wrapped), got)
		}
	}
	if !errors.Is(Err(Code(domain.ErrNameTooLong)), ErrInvalidName) {
		t.Fatal("name errors must come back as ErrInvalidName")
	}
	if Code(errors.New("disk on fire")) != CodeInternal {
		t.Fatal("unknown errors must map to internal")
	}
}

func TestSnapshotEncoding(t *testing.T) {
	frame, err := Encode(Snapshot{Type: TypeSnapshot, Snapshot: domain.Snapshot{
		Version: 3,
		Participants: []domain.Participant{
			{ID: 1, Position: domain.Position{X: 10, Y: 20}, DisplayName: "Aiko"},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	var got Snapshot
	if err := Decode(frame, &got); err != nil {
		t.Fatal(err)
	}
	p := got.Snapshot.Participants[0]
	if got.Snapshot.Version != 3 || p.InRoom() || p.Dialable() || p.Position.Y != 20 {
		t.Fatalf("decoded = %+v", got)
	}
}
