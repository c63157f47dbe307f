// Package collab owns the in-memory room membership state. The registry is
// transport-free: it consumes tagged events and returns the broadcast
// envelopes they produce, leaving delivery to the adapter.
package collab

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/domain"
)

// room tracks members in join order so snapshots are stable for clients.
type room struct {
	id      domain.RoomID
	members map[domain.ConnID]*domain.User
	order   []domain.ConnID
}

func (r *room) snapshot() []domain.User {
	out := make([]domain.User, 0, len(r.members))
	for _, id := range r.order {
		out = append(out, *r.members[id])
	}
	return out
}

type Registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*room
	rng   *rand.Rand
}

type Option func(*Registry)

// WithRand injects the color rng, used by tests for stable assignments.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) { r.rng = rng }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms: make(map[domain.RoomID]*room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch applies one event under the registry lock and returns the
// envelopes to deliver. Unknown room/connection references are silent
// no-ops: membership events race disconnects by nature, and stale ones
// are simply absorbed.
func (r *Registry) Dispatch(ev Event) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case Join:
		return r.join(e)
	case Leave:
		return r.removeMember(e.RoomID, e.Conn)
	case CursorMove:
		return r.cursorMove(e)
	case Disconnect:
		return r.disconnect(e)
	}
	return nil
}

func (r *Registry) join(e Join) []Envelope {
	rm, ok := r.rooms[e.RoomID]
	if !ok {
		rm = &room{id: e.RoomID, members: make(map[domain.ConnID]*domain.User)}
		r.rooms[e.RoomID] = rm
		log.Info().Str("module", "collab").Str("room", string(e.RoomID)).Msg("room created")
	}
	if _, ok := rm.members[e.Conn]; !ok {
		rm.order = append(rm.order, e.Conn)
	}
	user := domain.NewUser(e.Conn, e.Username, domain.AssignColor(domain.Palette, r.rng))
	rm.members[e.Conn] = user
	log.Info().Str("module", "collab").Str("room", string(e.RoomID)).
		Str("conn", string(e.Conn)).Str("username", user.Username).
		Int("members", len(rm.members)).Msg("member joined")

	// Snapshot first: no recipient may learn of a join before holding a
	// member list that includes the joiner.
	out := make([]Envelope, 0, 2*len(rm.members))
	snap := UsersUpdated{RoomID: rm.id, Users: rm.snapshot()}
	for _, id := range rm.order {
		out = append(out, Envelope{To: id, Event: EvtUsersUpdated, Payload: snap})
	}
	notice := UserJoined{User: *user, RoomID: rm.id}
	for _, id := range rm.order {
		if id == e.Conn {
			continue
		}
		out = append(out, Envelope{To: id, Event: EvtUserJoined, Payload: notice})
	}
	return out
}

// removeMember carries the shared leave effects for explicit leaves and
// disconnect cleanup. Empty rooms are deleted within the same mutation.
func (r *Registry) removeMember(roomID domain.RoomID, conn domain.ConnID) []Envelope {
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	user, ok := rm.members[conn]
	if !ok {
		return nil
	}
	delete(rm.members, conn)
	for i, id := range rm.order {
		if id == conn {
			rm.order = append(rm.order[:i], rm.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "collab").Str("room", string(roomID)).
		Str("conn", string(conn)).Int("members", len(rm.members)).Msg("member left")

	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "collab").Str("room", string(roomID)).Msg("room deleted")
		return nil
	}

	out := make([]Envelope, 0, 2*len(rm.members))
	snap := UsersUpdated{RoomID: rm.id, Users: rm.snapshot()}
	for _, id := range rm.order {
		out = append(out, Envelope{To: id, Event: EvtUsersUpdated, Payload: snap})
	}
	notice := UserLeft{User: *user, RoomID: rm.id}
	for _, id := range rm.order {
		out = append(out, Envelope{To: id, Event: EvtUserLeft, Payload: notice})
	}
	return out
}

func (r *Registry) cursorMove(e CursorMove) []Envelope {
	rm, ok := r.rooms[e.RoomID]
	if !ok {
		return nil
	}
	user, ok := rm.members[e.Conn]
	if !ok {
		return nil
	}
	payload := CursorUpdated{
		UserID:    e.Conn,
		Username:  user.Username,
		Color:     user.Color,
		Position:  e.Position,
		Selection: e.Selection,
	}
	out := make([]Envelope, 0, len(rm.members)-1)
	for _, id := range rm.order {
		if id == e.Conn {
			continue
		}
		out = append(out, Envelope{To: id, Event: EvtCursorUpdated, Payload: payload})
	}
	return out
}

func (r *Registry) disconnect(e Disconnect) []Envelope {
	var affected []domain.RoomID
	for id, rm := range r.rooms {
		if _, ok := rm.members[e.Conn]; ok {
			affected = append(affected, id)
		}
	}
	if len(affected) > 0 {
		log.Info().Str("module", "collab").Str("conn", string(e.Conn)).
			Int("rooms", len(affected)).Msg("disconnect cleanup")
	}
	var out []Envelope
	for _, id := range affected {
		out = append(out, r.removeMember(id, e.Conn)...)
	}
	return out
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

// List reports active rooms and their sizes, for operational visibility.
func (r *Registry) List() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, rm := range r.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(rm.members)})
	}
	return out
}

// Snapshot returns the member list of a room in join order. The second
// return is false if the room does not exist.
func (r *Registry) Snapshot(roomID domain.RoomID) ([]domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	return rm.snapshot(), true
}
