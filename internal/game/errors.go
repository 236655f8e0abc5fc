package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotAuthorized       = errors.New("only the host can perform this action")
	ErrInvalidConfig       = errors.New("invalid timer duration")
	ErrRoomFull            = errors.New("room is full")
	ErrTestInProgress      = errors.New("cannot do that during an active test")
	ErrParticipantNotFound = errors.New("participant not found in room")
	ErrNoActiveTest        = errors.New("no active test to submit results for")
)
