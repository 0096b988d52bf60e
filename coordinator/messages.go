package coordinator

import "github.com/Seednode/wordswap/session"

// Inbound event types.
const (
	EventJoinRoom       = "join-room"
	EventSubmitWord     = "submit-word"
	EventStartGame      = "start-game"
	EventPlayerFinished = "player-finished"
	EventPlayerFailed   = "player-failed"
	EventLeaveRoom      = "leave-room"
)

// Outbound message types.
const (
	TypeRoomData          = "room-data"
	TypeGameProgress      = "game-progress"
	TypeWordSubmitted     = "word-submitted"
	TypeAllWordsSubmitted = "all-words-submitted"
	TypeStartGame         = "start-game"
	TypeError             = "error-message"
)

// ClientMessage is a frame sent by a client. Fields not used by Type are ignored.
type ClientMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	Username string `json:"username,omitempty"`
	Word     string `json:"word,omitempty"`
	Success  bool   `json:"success,omitempty"`
}

// Event is a ClientMessage tagged with the connection it arrived on.
type Event struct {
	ClientMessage
	ConnID string

	disconnect bool
}

type RoomDataMessage struct {
	Type     string   `json:"type"`
	RoomCode string   `json:"roomCode"`
	Host     string   `json:"host"`
	Players  []string `json:"players"`
}

type GameProgressMessage struct {
	Type     string   `json:"type"`
	Finished []string `json:"finished"`
	Failed   []string `json:"failed"`
}

type WordSubmittedMessage struct {
	Type           string `json:"type"`
	Username       string `json:"username"`
	SubmittedCount int    `json:"submittedCount"`
	TotalCount     int    `json:"totalCount"`
}

type AllWordsSubmittedMessage struct {
	Type          string            `json:"type"`
	AssignedWords map[string]string `json:"assignedWords"`
}

type StartGameMessage struct {
	Type          string            `json:"type"`
	RoomCode      string            `json:"roomCode"`
	AssignedWords map[string]string `json:"assignedWords"`
}

// ErrorMessage is only ever sent to the connection that caused it.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func roomDataMessage(s *session.Session) RoomDataMessage {
	d := s.RoomData()
	return RoomDataMessage{
		Type:     TypeRoomData,
		RoomCode: d.RoomCode,
		Host:     d.Host,
		Players:  d.Players,
	}
}

func progressMessage(s *session.Session) GameProgressMessage {
	p := s.Progress()
	return GameProgressMessage{
		Type:     TypeGameProgress,
		Finished: p.Finished,
		Failed:   p.Failed,
	}
}

func allWordsSubmittedMessage(s *session.Session) AllWordsSubmittedMessage {
	return AllWordsSubmittedMessage{
		Type:          TypeAllWordsSubmitted,
		AssignedWords: s.Assignment(),
	}
}

func startGameMessage(s *session.Session) StartGameMessage {
	return StartGameMessage{
		Type:          TypeStartGame,
		RoomCode:      s.ID(),
		AssignedWords: s.Assignment(),
	}
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{
		Type:    TypeError,
		Message: err.Error(),
	}
}
