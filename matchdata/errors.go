package matchdata

import "errors"

var (
	ErrMatchUnavailable   = errors.New("match data unavailable")
	ErrUnexpectedTeamSize = errors.New("losing team does not have five players")
)
