/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store keeps every live room session, keyed by room code.
package store

import (
	"sync"

	"github.com/Seednode/wordswap/session"
)

// Store is the process-wide registry of rooms. Codes passed in are expected
// to be normalized already.
type Store interface {
	// GetOrCreate returns the room for code, creating it with creator as host
	// if it does not exist yet. created reports which happened.
	GetOrCreate(code, creator string) (s *session.Session, created bool)

	// Get returns the room for code. A missing room is not an error.
	Get(code string) (*session.Session, bool)

	// Delete removes the room for code.
	Delete(code string)

	// Each calls fn for every room until fn returns false.
	Each(fn func(*session.Session) bool)

	Len() int
}

// Memory is an in-memory Store. The map is guarded so HTTP handlers can read
// it while the coordinator writes; the sessions themselves are not.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*session.Session
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*session.Session)}
}

func (m *Memory) GetOrCreate(code, creator string) (*session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.rooms[code]; ok {
		return s, false
	}

	s := session.New(code, creator)
	m.rooms[code] = s
	return s, true
}

func (m *Memory) Get(code string) (*session.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.rooms[code]
	return s, ok
}

func (m *Memory) Delete(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, code)
}

// Each iterates over a snapshot of the rooms, so fn may call Delete.
func (m *Memory) Each(fn func(*session.Session) bool) {
	m.mu.RLock()
	rooms := make([]*session.Session, 0, len(m.rooms))
	for _, s := range m.rooms {
		rooms = append(rooms, s)
	}
	m.mu.RUnlock()

	for _, s := range rooms {
		if !fn(s) {
			return
		}
	}
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms)
}

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// NewCode returns a random room code not currently in use in st.
func NewCode(st Store, random session.Random) string {
	for {
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[random.IntN(len(codeAlphabet))]
		}
		code := string(out)

		if _, exists := st.Get(code); !exists {
			return code
		}
	}
}

var _ Store = (*Memory)(nil)
