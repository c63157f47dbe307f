package collab

import "github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/domain"

// Wire names of server->client events.
const (
	EvtUsersUpdated  = "users-updated"
	EvtUserJoined    = "user-joined"
	EvtUserLeft      = "user-left"
	EvtCursorUpdated = "cursor-updated"
)

// Event is the closed set of inbound room events. The registry handles one
// event to completion at a time; each produces a deterministic list of
// outbound envelopes.
type Event interface {
	isEvent()
}

type Join struct {
	RoomID   domain.RoomID
	Conn     domain.ConnID
	Username string
}

type Leave struct {
	RoomID domain.RoomID
	Conn   domain.ConnID
}

type CursorMove struct {
	RoomID    domain.RoomID
	Conn      domain.ConnID
	Position  int
	Selection [2]int
}

// Disconnect means the transport connection is gone. It fans out leave
// effects to every room the connection had joined.
type Disconnect struct {
	Conn domain.ConnID
}

func (Join) isEvent()       {}
func (Leave) isEvent()      {}
func (CursorMove) isEvent() {}
func (Disconnect) isEvent() {}

// Envelope is one outbound message addressed to a single connection. The
// transport delivers envelopes in slice order, fire-and-forget.
type Envelope struct {
	To      domain.ConnID
	Event   string
	Payload any
}

type UsersUpdated struct {
	RoomID domain.RoomID `json:"roomId"`
	Users  []domain.User `json:"users"`
}

type UserJoined struct {
	User   domain.User   `json:"user"`
	RoomID domain.RoomID `json:"roomId"`
}

type UserLeft struct {
	User   domain.User   `json:"user"`
	RoomID domain.RoomID `json:"roomId"`
}

type CursorUpdated struct {
	UserID    domain.ConnID `json:"userId"`
	Username  string        `json:"username"`
	Color     domain.Color  `json:"color"`
	Position  int           `json:"position"`
	Selection [2]int        `json:"selection"`
}
