package game

import "errors"

// Named error kinds surfaced to the offending connection as error events.
// None of them alter session state. Mine hits are not errors; they are a
// legitimate game outcome.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotInGame     = errors.New("not in game")
	ErrGameOver      = errors.New("game over")
	ErrLockedOut     = errors.New("locked out")
	ErrInvalidInput  = errors.New("invalid input")
)

// ErrorKind maps an error to its wire name, or "internal" for anything
// that is not one of the named kinds.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "notFound"
	case errors.Is(err, ErrAlreadyExists):
		return "alreadyExists"
	case errors.Is(err, ErrNotInGame):
		return "notInGame"
	case errors.Is(err, ErrGameOver):
		return "gameOver"
	case errors.Is(err, ErrLockedOut):
		return "lockedOut"
	case errors.Is(err, ErrInvalidInput):
		return "invalidInput"
	default:
		return "internal"
	}
}
