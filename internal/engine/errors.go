package engine

import "errors"

var (
	// ErrIllegalMove is returned by checked intents when the placement rules
	// forbid the target. Legality queries report the same thing as false.
	ErrIllegalMove = errors.New("illegal move")

	// ErrWrongPhase is returned when an intent does not fit the current
	// phase or setup step.
	ErrWrongPhase = errors.New("wrong phase")

	// ErrInsufficientResources is returned when a build cannot be paid for.
	ErrInsufficientResources = errors.New("insufficient resources")

	// ErrNoPiecesLeft is returned when the player has no piece of that kind.
	ErrNoPiecesLeft = errors.New("no pieces left")

	// ErrGameOver is returned for any intent after a winner is declared.
	ErrGameOver = errors.New("game over")
)
