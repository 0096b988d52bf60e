/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import "errors"

// Error categories. Every error returned by this package unwraps to one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrNotFound     = errors.New("not found")
)

// Error carries a message suitable for showing to the player who caused it.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

var (
	ErrInvalidWord     = newError(ErrValidation, "Word must be exactly 5 letters (A-Z).")
	ErrInvalidRoomCode = newError(ErrValidation, "Room code must be 1-16 letters or digits.")
	ErrMissingUsername = newError(ErrValidation, "A username is required.")

	ErrNotReady       = newError(ErrPrecondition, "Not all players have submitted words!")
	ErrNotHost        = newError(ErrPrecondition, "Only the host can start the game.")
	ErrGameInProgress = newError(ErrPrecondition, "The game has already started.")
	ErrNotPlaying     = newError(ErrPrecondition, "The game has not started yet.")

	ErrNotMember    = newError(ErrNotFound, "You are not a member of this room.")
	ErrRoomNotFound = newError(ErrNotFound, "Room not found.")
)

// Reportable reports whether err should be sent back to the connection that
// caused it. Not-found errors are stale events and are dropped.
func Reportable(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrPrecondition)
}
