package models

type ErrorKind string

const (
	ErrValidation         ErrorKind = "VALIDATION_ERROR"
	ErrUnauthorized       ErrorKind = "UNAUTHORIZED"
	ErrPermissionDenied   ErrorKind = "PERMISSION_DENIED"
	ErrRoomNotFound       ErrorKind = "ROOM_NOT_FOUND"
	ErrRoomPasswordExists ErrorKind = "ROOM_PASSWORD_EXISTS"
	ErrVotingNotStarted   ErrorKind = "VOTING_NOT_STARTED"
	ErrAlreadyVoted       ErrorKind = "ALREADY_VOTED"
	ErrDuplicateVote      ErrorKind = "DUPLICATE_VOTE"
	ErrInvalidPlayerIndex ErrorKind = "INVALID_PLAYER_INDEX"
	ErrRoomFinished       ErrorKind = "ROOM_FINISHED"
	ErrInvalidMatchID     ErrorKind = "INVALID_MATCH_ID"
	ErrCreateRoom         ErrorKind = "CREATE_ROOM_ERROR"
	ErrServer             ErrorKind = "SERVER_ERROR"
	ErrRateLimited        ErrorKind = "RATE_LIMITED"
	ErrPageNotFound       ErrorKind = "PAGE_NOT_FOUND"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

func Ok(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func Fail(kind ErrorKind, message string) Envelope {
	return Envelope{Success: false, Error: kind, Message: message}
}
