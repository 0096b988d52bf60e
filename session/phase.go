package session

import "fmt"

// Phase is the lifecycle stage of a room.
type Phase int

const (
	// Forming: only the host is present.
	Forming Phase = iota
	// Collecting: several players, words still coming in.
	Collecting
	// Assigned: every player has submitted and the words have been handed out.
	Assigned
	// Playing: the host started the game. Terminal until the room empties.
	Playing
)

func (p Phase) String() string {
	switch p {
	case Forming:
		return "forming"
	case Collecting:
		return "collecting"
	case Assigned:
		return "assigned"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var transitions = map[Phase][]Phase{
	Forming:    {Collecting, Assigned},
	Collecting: {Forming, Assigned},
	Assigned:   {Forming, Collecting, Playing},
	Playing:    {},
}

// CanMoveTo reports whether a room in phase p may move to next.
func (p Phase) CanMoveTo(next Phase) bool {
	if p == next {
		return true
	}
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// moveTo panics on an illegal transition; the rules below only request legal ones.
func (s *Session) moveTo(next Phase) {
	if !s.phase.CanMoveTo(next) {
		panic(fmt.Sprintf("session %s: illegal phase transition %s -> %s", s.id, s.phase, next))
	}
	s.phase = next
}
