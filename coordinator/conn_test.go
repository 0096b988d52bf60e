package coordinator

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// fakeConn records everything sent to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	msgs   []any
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(msg any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.msgs = append(f.msgs, msg)
	return true
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// take returns the messages received so far and forgets them.
func (f *fakeConn) take() []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.msgs
	f.msgs = nil
	return out
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.msgs)
}

// MockConn is a testify mock for asserting exact Send/Close behaviour.
type MockConn struct {
	mock.Mock
}

func (m *MockConn) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConn) Send(msg any) bool {
	args := m.Called(msg)
	return args.Bool(0)
}

func (m *MockConn) Close() {
	m.Called()
}

func typesOf(msgs []any) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch v := m.(type) {
		case RoomDataMessage:
			out = append(out, v.Type)
		case GameProgressMessage:
			out = append(out, v.Type)
		case WordSubmittedMessage:
			out = append(out, v.Type)
		case AllWordsSubmittedMessage:
			out = append(out, v.Type)
		case StartGameMessage:
			out = append(out, v.Type)
		case ErrorMessage:
			out = append(out, v.Type)
		default:
			out = append(out, "unknown")
		}
	}
	return out
}
