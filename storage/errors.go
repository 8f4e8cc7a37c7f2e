package storage

import "errors"

var ErrStaleRecord = errors.New("a newer version of the room is already stored")
