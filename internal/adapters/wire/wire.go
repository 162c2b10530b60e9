// Package wire defines the JSON messages exchanged over the signaling
// websocket. Every message is an object with a "type" field.
package wire

import (
	"errors"

	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/goccy/go-json"
)

// Server to client.
const (
	TypeWelcome    = "welcome"
	TypeSnapshot   = "snapshot"
	TypeJoinResult = "join_result"
	TypeWhoAmI     = "whoami"
	TypePong       = "pong"
	TypeError      = "error"
)

// Client to server. TypeSignal travels both ways.
const (
	TypeMove           = "move"
	TypeJoinRoom       = "join_room"
	TypeLeaveRoom      = "leave_room"
	TypeSetCallAddress = "set_call_address"
	TypeRename         = "rename"
	TypePing           = "ping"
	TypeSignal         = "signal"
)

// Error codes carried in Error.Error and JoinResult.Error.
const (
	CodeRoomFull       = "room_full"
	CodeUnknownRoom    = "unknown_room"
	CodeRateLimited    = "rate_limited"
	CodeBadPayload     = "bad_payload"
	CodeInvalidName    = "invalid_name"
	CodeInvalidMove    = "invalid_position"
	CodeUnknownTarget  = "unknown_target"
	CodeNotDialable    = "no_call_address"
	CodeNotConnected   = "not_connected"
	CodeInternal       = "internal"
	CodeUnknownMessage = "unknown_type"
)

// Call signal kinds.
const (
	SignalOffer  = "offer"
	SignalAnswer = "answer"
	SignalBye    = "bye"
)

type Envelope struct {
	Type string `json:"type"`
}

type Welcome struct {
	Type   string               `json:"type"`
	ID     domain.ParticipantID `json:"id"`
	Layout domain.Layout        `json:"layout"`
}

type Snapshot struct {
	Type     string          `json:"type"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type Move struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type JoinRoom struct {
	Type      string        `json:"type"`
	RequestID uint64        `json:"request_id"`
	Room      domain.RoomID `json:"room"`
}

type JoinResult struct {
	Type      string        `json:"type"`
	RequestID uint64        `json:"request_id"`
	Room      domain.RoomID `json:"room"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Occupancy int           `json:"occupancy"`
	Capacity  int           `json:"capacity"`
}

type SetCallAddress struct {
	Type    string             `json:"type"`
	Address domain.CallAddress `json:"address"`
}

type Rename struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type WhoAmI struct {
	Type        string               `json:"type"`
	ID          domain.ParticipantID `json:"id"`
	DisplayName string               `json:"display_name"`
	Room        domain.RoomID        `json:"room,omitempty"`
}

type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// CallSignal carries call primitive negotiation between two call addresses.
// The server overwrites From with the sender's registered address.
type CallSignal struct {
	Type   string             `json:"type"`
	Kind   string             `json:"kind"`
	CallID string             `json:"call_id"`
	From   domain.CallAddress `json:"from"`
	To     domain.CallAddress `json:"to"`
	SDP    string             `json:"sdp,omitempty"`
}

func Encode(v any) (core.Frame, error) {
	return json.Marshal(v)
}

func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Peek returns the message type without decoding the rest.
func Peek(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	if env.Type == "" {
		return "", errors.New("missing type")
	}
	return env.Type, nil
}

var (
	ErrRateLimited = errors.New("rate limited")
	ErrInvalidName = errors.New("invalid display name")
)

// Code maps a domain error to its wire code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, domain.ErrUnknownRoom):
		return CodeUnknownRoom
	case errors.Is(err, domain.ErrNameEmpty), errors.Is(err, domain.ErrNameTooLong), errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, domain.ErrInvalidPosition):
		return CodeInvalidMove
	case errors.Is(err, domain.ErrUnknownParticipant):
		return CodeNotConnected
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	}
	return CodeInternal
}

// Err maps a wire code back to a domain error where one exists.
func Err(code string) error {
	switch code {
	case "":
		return nil
	case CodeRoomFull:
		return domain.ErrRoomFull
	case CodeUnknownRoom:
		return domain.ErrUnknownRoom
	case CodeInvalidName:
		return ErrInvalidName
	case CodeInvalidMove:
		return domain.ErrInvalidPosition
	case CodeNotConnected:
		return domain.ErrUnknownParticipant
	case CodeRateLimited:
		return ErrRateLimited
	}
	return errors.New(code)
}
