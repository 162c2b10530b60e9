package domain

import "errors"

var (
	ErrRoomFull           = errors.New("room full")
	ErrUnknownRoom        = errors.New("unknown room")
	ErrUnknownParticipant = errors.New("unknown participant")
)

var ErrInvalidPosition = errors.New("invalid position")
