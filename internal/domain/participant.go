// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strconv"
)

const MaxDisplayNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// ParticipantID is assigned by the presence registry from a monotonically
// increasing counter. Numeric order is the total order used to decide which
// side of a pair dials.
type ParticipantID uint64

func (id ParticipantID) Less(other ParticipantID) bool { return id < other }

func (id ParticipantID) String() string { return strconv.FormatUint(uint64(id), 10) }

// CallAddress is the opaque address a participant's call primitive listens
// on. Empty means the participant cannot be dialed yet.
type CallAddress string

type Participant struct {
	ID          ParticipantID `json:"id"`
	Position    Position      `json:"position"`
	RoomID      RoomID        `json:"room_id,omitempty"`
	CallAddress CallAddress   `json:"call_address,omitempty"`
	DisplayName string        `json:"display_name"`
}

// InRoom reports whether the participant occupies a meeting room.
// An empty RoomID is the open floor.
func (p Participant) InRoom() bool { return p.RoomID != "" }

func (p Participant) Dialable() bool { return p.CallAddress != "" }

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
