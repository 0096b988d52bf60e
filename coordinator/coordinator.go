/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package coordinator turns client events into room mutations and fans the
// results out to every connection listening to the room.
//
// All session state is owned by the goroutine running Run. Transport code
// hands events over with Register, Dispatch and Disconnect, and receives
// outbound frames through Conn.Send.
package coordinator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Seednode/wordswap/session"
	"github.com/Seednode/wordswap/store"
)

type registration struct {
	conn     Conn
	username string
}

type Coordinator struct {
	store  store.Store
	random session.Random
	log    zerolog.Logger
	reg    *registry

	register chan registration
	events   chan Event
	done     chan struct{}
}

func New(st store.Store, random session.Random, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:    st,
		random:   random,
		log:      logger,
		reg:      newRegistry(),
		register: make(chan registration),
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
	}
}

// Run processes events one at a time until ctx is cancelled, then closes
// every registered connection.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			for _, conn := range c.reg.all() {
				conn.Close()
			}
			return

		case r := <-c.register:
			c.reg.add(r.conn, r.username)
			c.log.Debug().Str("conn", r.conn.ID()).Str("username", r.username).Msg("connection registered")

		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// Register announces a new connection. username is the name claimed during
// the handshake, if any.
func (c *Coordinator) Register(ctx context.Context, conn Conn, username string) {
	select {
	case c.register <- registration{conn: conn, username: username}:
	case <-ctx.Done():
	case <-c.done:
	}
}

// Dispatch queues an inbound event.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	case <-c.done:
	}
}

// Disconnect reports that a connection went away. It is queued behind any
// events the connection already dispatched.
func (c *Coordinator) Disconnect(ctx context.Context, id string) {
	c.Dispatch(ctx, Event{ConnID: id, disconnect: true})
}

func (c *Coordinator) handle(ev Event) {
	if ev.disconnect {
		c.disconnect(ev.ConnID)
		return
	}

	conn, ok := c.reg.conn(ev.ConnID)
	if !ok {
		c.log.Debug().Str("conn", ev.ConnID).Str("event", ev.Type).Msg("event from unknown connection")
		return
	}

	var err error
	switch ev.Type {
	case EventJoinRoom:
		err = c.joinRoom(conn, ev)
	case EventSubmitWord:
		err = c.submitWord(ev)
	case EventStartGame:
		err = c.startGame(conn, ev)
	case EventPlayerFinished:
		err = c.recordResult(ev, ev.Success)
	case EventPlayerFailed:
		err = c.recordResult(ev, false)
	case EventLeaveRoom:
		err = c.leaveRoom(conn, ev)
	default:
		c.log.Debug().Str("conn", conn.ID()).Str("event", ev.Type).Msg("ignoring unknown event")
		return
	}

	if err == nil {
		return
	}

	logEvent := c.log.Debug().
		Err(err).
		Str("conn", conn.ID()).
		Str("event", ev.Type).
		Str("room", ev.RoomCode).
		Str("username", ev.Username)

	if !session.Reportable(err) {
		logEvent.Msg("dropping stale event")
		return
	}

	logEvent.Msg("rejected event")
	c.send(conn, errorMessage(err))
}

func (c *Coordinator) lookup(rawCode string) (*session.Session, error) {
	code, err := session.NormalizeRoomCode(rawCode)
	if err != nil {
		return nil, err
	}
	s, ok := c.store.Get(code)
	if !ok {
		return nil, session.ErrRoomNotFound
	}
	return s, nil
}

func (c *Coordinator) joinRoom(conn Conn, ev Event) error {
	code, err := session.NormalizeRoomCode(ev.RoomCode)
	if err != nil {
		return err
	}
	if ev.Username == "" {
		return session.ErrMissingUsername
	}

	s, created := c.store.GetOrCreate(code, ev.Username)
	if created {
		c.log.Info().Str("room", code).Str("username", ev.Username).Msg("room created")
	}

	added, err := s.Join(ev.Username)
	if err != nil {
		if s.Empty() {
			c.store.Delete(code)
		}
		return err
	}

	c.reg.join(code, conn.ID(), ev.Username)

	if added {
		c.log.Info().Str("room", code).Str("username", ev.Username).Int("players", len(s.Players())).Msg("player joined")
	}

	c.broadcast(code, roomDataMessage(s))
	c.broadcast(code, progressMessage(s))

	if !added {
		switch s.Phase() {
		case session.Assigned:
			c.send(conn, allWordsSubmittedMessage(s))
		case session.Playing:
			c.send(conn, startGameMessage(s))
		}
	}
	return nil
}

func (c *Coordinator) submitWord(ev Event) error {
	s, err := c.lookup(ev.RoomCode)
	if err != nil {
		return err
	}

	res, err := s.SubmitWord(ev.Username, ev.Word, c.random)
	if err != nil {
		return err
	}

	c.log.Info().Str("room", s.ID()).Str("username", ev.Username).
		Int("submitted", res.SubmittedCount).Int("total", res.TotalCount).Msg("word submitted")

	c.broadcast(s.ID(), WordSubmittedMessage{
		Type:           TypeWordSubmitted,
		Username:       res.Username,
		SubmittedCount: res.SubmittedCount,
		TotalCount:     res.TotalCount,
	})

	if res.Assigned {
		c.log.Info().Str("room", s.ID()).Msg("all words submitted, assigned circularly")
		c.broadcast(s.ID(), allWordsSubmittedMessage(s))
	}
	return nil
}

func (c *Coordinator) startGame(conn Conn, ev Event) error {
	s, err := c.lookup(ev.RoomCode)
	if err != nil {
		return err
	}

	if c.reg.claimed(conn.ID(), s.ID()) != s.Host() {
		return session.ErrNotHost
	}

	if err := s.StartGame(); err != nil {
		return err
	}

	c.log.Info().Str("room", s.ID()).Msg("game started")
	c.broadcast(s.ID(), startGameMessage(s))
	return nil
}

func (c *Coordinator) recordResult(ev Event, success bool) error {
	s, err := c.lookup(ev.RoomCode)
	if err != nil {
		return err
	}

	if err := s.RecordResult(ev.Username, success); err != nil {
		return err
	}

	c.log.Info().Str("room", s.ID()).Str("username", ev.Username).Bool("success", success).Msg("player finished")
	c.broadcast(s.ID(), progressMessage(s))
	return nil
}

func (c *Coordinator) leaveRoom(conn Conn, ev Event) error {
	s, err := c.lookup(ev.RoomCode)
	if err != nil {
		return err
	}

	if !s.IsMember(ev.Username) {
		return session.ErrNotMember
	}

	// A connection leaving on behalf of another name keeps listening.
	if c.reg.claimed(conn.ID(), s.ID()) == ev.Username {
		c.reg.leave(s.ID(), conn.ID())
	}
	c.removePlayer(s, ev.Username)
	return nil
}

// removePlayer runs leave cleanup for username and reports whether they were
// in the room.
func (c *Coordinator) removePlayer(s *session.Session, username string) bool {
	res := s.Leave(username, c.random)
	if !res.Removed {
		return false
	}

	c.log.Info().Str("room", s.ID()).Str("username", username).Msg("player left")

	if res.Empty {
		c.store.Delete(s.ID())
		c.reg.dropRoom(s.ID())
		c.log.Info().Str("room", s.ID()).Msg("room deleted (empty)")
		return true
	}

	if res.HostChanged {
		c.log.Info().Str("room", s.ID()).Str("host", s.Host()).Msg("host promoted")
	}

	c.broadcast(s.ID(), roomDataMessage(s))
	c.broadcast(s.ID(), progressMessage(s))
	if res.Reassigned {
		c.broadcast(s.ID(), allWordsSubmittedMessage(s))
	}
	return true
}

// disconnect cleans up after a connection that went away without leaving.
// Every username the connection claimed is removed from every room it is
// in, unless another live connection acts as that name in the room.
func (c *Coordinator) disconnect(id string) {
	conn, usernames := c.reg.remove(id)
	if conn == nil {
		return
	}
	conn.Close()

	c.log.Debug().Str("conn", id).Strs("usernames", usernames).Msg("connection closed")

	if len(usernames) == 0 {
		return
	}

	c.store.Each(func(s *session.Session) bool {
		for _, username := range usernames {
			if !s.IsMember(username) || c.reg.claimedElsewhere(s.ID(), username, id) {
				continue
			}
			c.removePlayer(s, username)
		}
		return true
	})
}

func (c *Coordinator) send(conn Conn, msg any) {
	if !conn.Send(msg) {
		c.log.Warn().Str("conn", conn.ID()).Msg("dropping slow connection")
		c.disconnect(conn.ID())
	}
}

func (c *Coordinator) broadcast(room string, msg any) {
	var slow []Conn
	for _, conn := range c.reg.listeners(room) {
		if !conn.Send(msg) {
			slow = append(slow, conn)
		}
	}
	for _, conn := range slow {
		c.log.Warn().Str("conn", conn.ID()).Str("room", room).Msg("dropping slow connection")
		c.disconnect(conn.ID())
	}
}

// Done is closed when Run returns.
func (c *Coordinator) Done() <-chan struct{} { return c.done }
