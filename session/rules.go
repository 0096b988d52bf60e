package session

import "slices"

// Join adds username to the room. Rejoining is a no-op that keeps the
// player's word and result. It reports whether the player is new.
func (s *Session) Join(username string) (bool, error) {
	if username == "" {
		return false, ErrMissingUsername
	}
	if s.IsMember(username) {
		s.touch()
		return false, nil
	}
	if s.phase == Playing {
		return false, ErrGameInProgress
	}

	s.players = append(s.players, username)
	s.touch()

	switch s.phase {
	case Forming:
		if len(s.players) > 1 {
			s.moveTo(Collecting)
		}
	case Assigned:
		clear(s.assigned)
		s.moveTo(Collecting)
	}
	return true, nil
}

// SubmitResult describes the room after a word was recorded.
type SubmitResult struct {
	Username       string
	SubmittedCount int
	TotalCount     int
	// Assigned is set when this submission completed the set of words and
	// the assignment was (re)computed.
	Assigned bool
}

// SubmitWord records username's secret word. Once every player has one, the
// words are handed out with Assign.
func (s *Session) SubmitWord(username, raw string, random Random) (SubmitResult, error) {
	if !s.IsMember(username) {
		return SubmitResult{}, ErrNotMember
	}
	if s.phase == Playing {
		return SubmitResult{}, ErrGameInProgress
	}
	word, err := NormalizeWord(raw)
	if err != nil {
		return SubmitResult{}, err
	}

	s.words[username] = word
	s.touch()

	res := SubmitResult{
		Username:       username,
		SubmittedCount: len(s.words),
		TotalCount:     len(s.players),
	}
	if s.AllSubmitted() {
		s.assigned = Assign(s.players, s.words, random)
		s.moveTo(Assigned)
		res.Assigned = true
	}
	return res, nil
}

// StartGame moves an assigned room into play.
func (s *Session) StartGame() error {
	switch s.phase {
	case Playing:
		return ErrGameInProgress
	case Assigned:
	default:
		return ErrNotReady
	}
	if len(s.words) != len(s.players) {
		return ErrNotReady
	}
	s.moveTo(Playing)
	s.touch()
	return nil
}

// RecordResult stores whether username guessed their word. A later result
// replaces an earlier one.
func (s *Session) RecordResult(username string, success bool) error {
	if !s.IsMember(username) {
		return ErrNotMember
	}
	if s.phase != Playing {
		return ErrNotPlaying
	}

	s.finished = remove(s.finished, username)
	s.failed = remove(s.failed, username)
	if success {
		s.finished = append(s.finished, username)
	} else {
		s.failed = append(s.failed, username)
	}
	s.touch()
	return nil
}

// LeaveResult describes the room after a player left.
type LeaveResult struct {
	Removed     bool
	Empty       bool
	HostChanged bool
	// Reassigned is set when the remaining players all have words and the
	// assignment was recomputed without the departed player.
	Reassigned bool
}

// Leave drops username from every part of the room and promotes the
// earliest remaining player if the host left.
func (s *Session) Leave(username string, random Random) LeaveResult {
	if !s.IsMember(username) {
		return LeaveResult{Empty: s.Empty()}
	}

	s.players = remove(s.players, username)
	delete(s.words, username)
	delete(s.assigned, username)
	s.finished = remove(s.finished, username)
	s.failed = remove(s.failed, username)
	s.touch()

	res := LeaveResult{Removed: true, Empty: s.Empty()}
	if res.Empty {
		return res
	}
	if s.host == username {
		s.host = s.players[0]
		res.HostChanged = true
	}
	if s.phase == Playing {
		return res
	}

	switch {
	case s.AllSubmitted():
		s.assigned = Assign(s.players, s.words, random)
		s.moveTo(Assigned)
		res.Reassigned = true
	case len(s.players) == 1:
		clear(s.assigned)
		s.moveTo(Forming)
	default:
		clear(s.assigned)
		s.moveTo(Collecting)
	}
	return res
}

func remove(list []string, username string) []string {
	return slices.DeleteFunc(list, func(p string) bool { return p == username })
}
