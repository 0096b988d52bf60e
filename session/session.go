/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package session holds the state of a single game room and the rules that
// mutate it. Nothing in here is safe for concurrent use; callers serialize
// access to a Session.
package session

import (
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	WordLength        = 5
	maxRoomCodeLength = 16
)

// Session is the server-side state of one room.
type Session struct {
	id      string
	host    string
	phase   Phase
	players []string

	words    map[string]string
	assigned map[string]string
	finished []string
	failed   []string

	createdAt  time.Time
	lastActive time.Time
}

// New returns an empty room with creator as host. The creator still has to Join.
func New(id, creator string) *Session {
	now := time.Now()
	return &Session{
		id:         id,
		host:       creator,
		phase:      Forming,
		players:    []string{},
		words:      make(map[string]string),
		assigned:   make(map[string]string),
		finished:   []string{},
		failed:     []string{},
		createdAt:  now,
		lastActive: now,
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) Host() string { return s.host }
func (s *Session) Phase() Phase { return s.phase }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) LastActive() time.Time { return s.lastActive }
func (s *Session) Players() []string { return slices.Clone(s.players) }
func (s *Session) Finished() []string { return slices.Clone(s.finished) }
func (s *Session) Failed() []string { return slices.Clone(s.failed) }
func (s *Session) Words() map[string]string { return maps.Clone(s.words) }

// Assignment returns a copy of the word each player has to guess.
func (s *Session) Assignment() map[string]string { return maps.Clone(s.assigned) }

func (s *Session) IsMember(username string) bool {
	return slices.Contains(s.players, username)
}

func (s *Session) Empty() bool { return len(s.players) == 0 }

// AllSubmitted reports whether every current player has a word on record.
func (s *Session) AllSubmitted() bool {
	if len(s.players) == 0 {
		return false
	}
	for _, p := range s.players {
		if _, ok := s.words[p]; !ok {
			return false
		}
	}
	return true
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// RoomData is the membership view broadcast to a room.
type RoomData struct {
	RoomCode string
	Host     string
	Players  []string
}

// Progress is the finished/failed view broadcast to a room.
type Progress struct {
	Finished []string
	Failed   []string
}

func (s *Session) RoomData() RoomData {
	return RoomData{
		RoomCode: s.id,
		Host:     s.host,
		Players:  s.Players(),
	}
}

func (s *Session) Progress() Progress {
	return Progress{
		Finished: s.Finished(),
		Failed:   s.Failed(),
	}
}

// NormalizeRoomCode uppercases and trims code, and checks it is 1-16
// characters of A-Z or 0-9.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > maxRoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidRoomCode
		}
	}
	return code, nil
}

// NormalizeWord uppercases word and checks it is exactly WordLength letters.
func NormalizeWord(word string) (string, error) {
	word = strings.ToUpper(word)
	if len(word) != WordLength {
		return "", ErrInvalidWord
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'A' || word[i] > 'Z' {
			return "", ErrInvalidWord
		}
	}
	return word, nil
}
