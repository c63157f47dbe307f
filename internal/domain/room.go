package domain

// RoomID is an opaque, caller-supplied room key.
type RoomID string
