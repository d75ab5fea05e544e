package game

import "errors"

var (
	// ErrIllegalMove is returned when a requested move is not among the legal moves.
	ErrIllegalMove = errors.New("illegal move")

	// ErrBadNotation is returned when a move string cannot be parsed.
	ErrBadNotation = errors.New("bad move notation")
)
