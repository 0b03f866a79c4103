package errors

import "errors"

// ErrRoomNotFound signals that a room key resolved to no known room.
// The service layer maps it to a 404.
var ErrRoomNotFound = errors.New("room not found")
