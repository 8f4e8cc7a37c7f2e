package rooms

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrDuplicateKey       = errors.New("room password or id already in use")
	ErrInvalidRoom        = errors.New("invalid room parameters")
	ErrVotingNotStarted   = errors.New("voting not started for this user")
	ErrAlreadyVoted       = errors.New("user has used all votes")
	ErrDuplicateVote      = errors.New("user already voted for this player")
	ErrInvalidPlayerIndex = errors.New("player index out of range")
	ErrRoomFinished       = errors.New("voting in this room has finished")
	ErrNotOwner           = errors.New("only the room creator can do this")
)
