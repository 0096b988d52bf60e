package coordinator

import "slices"

// Conn is a client connection as seen by the coordinator.
type Conn interface {
	ID() string
	// Send queues msg for delivery without blocking. It returns false when
	// the connection is closed or cannot keep up.
	Send(msg any) bool
	// Close must be safe to call more than once.
	Close()
}

// registry tracks live connections, the usernames each one claimed, and
// which rooms each one is listening to.
type registry struct {
	conns map[string]Conn
	// names is the handshake name or the name used by the latest join.
	names map[string]string
	// joined maps conn id to room to the username it joined that room as.
	joined   map[string]map[string]string
	audience map[string]map[string]Conn
}

func newRegistry() *registry {
	return &registry{
		conns:    make(map[string]Conn),
		names:    make(map[string]string),
		joined:   make(map[string]map[string]string),
		audience: make(map[string]map[string]Conn),
	}
}

func (r *registry) add(c Conn, username string) {
	r.conns[c.ID()] = c
	if username != "" {
		r.names[c.ID()] = username
	}
}

func (r *registry) conn(id string) (Conn, bool) {
	c, ok := r.conns[id]
	return c, ok
}

// join records that id joined room as username and subscribes it to the
// room's broadcasts.
func (r *registry) join(room, id, username string) {
	c, ok := r.conns[id]
	if !ok {
		return
	}
	r.names[id] = username

	rooms, ok := r.joined[id]
	if !ok {
		rooms = make(map[string]string)
		r.joined[id] = rooms
	}
	rooms[room] = username

	r.subscribe(room, c)
}

// leave is the inverse of join for a single room.
func (r *registry) leave(room, id string) {
	r.unsubscribe(room, id)
	if rooms, ok := r.joined[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.joined, id)
		}
	}
}

// claimed is the username id acts as in room: the name it joined the room
// with, or its bound name if it never joined.
func (r *registry) claimed(id, room string) string {
	if username, ok := r.joined[id][room]; ok {
		return username
	}
	return r.names[id]
}

// remove forgets the connection everywhere and returns every username it
// had claimed, without duplicates.
func (r *registry) remove(id string) (Conn, []string) {
	c, ok := r.conns[id]
	if !ok {
		return nil, nil
	}

	var usernames []string
	if name := r.names[id]; name != "" {
		usernames = append(usernames, name)
	}
	for _, name := range r.joined[id] {
		if !slices.Contains(usernames, name) {
			usernames = append(usernames, name)
		}
	}
	slices.Sort(usernames)

	delete(r.conns, id)
	delete(r.names, id)
	delete(r.joined, id)
	for room := range r.audience {
		r.unsubscribe(room, id)
	}
	return c, usernames
}

func (r *registry) subscribe(room string, c Conn) {
	members, ok := r.audience[room]
	if !ok {
		members = make(map[string]Conn)
		r.audience[room] = members
	}
	members[c.ID()] = c
}

func (r *registry) unsubscribe(room, id string) {
	members, ok := r.audience[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.audience, room)
	}
}

func (r *registry) dropRoom(room string) {
	delete(r.audience, room)
	for id, rooms := range r.joined {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.joined, id)
		}
	}
}

// listeners returns the connections subscribed to room.
func (r *registry) listeners(room string) []Conn {
	members := r.audience[room]
	out := make([]Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// claimedElsewhere reports whether a connection other than id acts as
// username in room and is listening to it.
func (r *registry) claimedElsewhere(room, username, id string) bool {
	for other := range r.audience[room] {
		if other != id && r.claimed(other, room) == username {
			return true
		}
	}
	return false
}

func (r *registry) all() []Conn {
	out := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
