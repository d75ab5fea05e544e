// Package board implements the 8x8 chess board model: squares, pieces and moves.
package board

import "fmt"

// Square is a (row, column) coordinate on the board.
// Row 0 is the 8th rank (Black's back rank), column 0 is the a-file.
type Square struct {
	Row int
	Col int
}

// NoSquare marks the absence of a square (e.g. no en passant target).
var NoSquare = Square{Row: -1, Col: -1}

// NewSquare creates a square from row and column (0-indexed).
func NewSquare(row, col int) Square {
	return Square{Row: row, Col: col}
}

// IsValid returns true if the square lies on the board.
func (sq Square) IsValid() bool {
	return sq.Row >= 0 && sq.Row < 8 && sq.Col >= 0 && sq.Col < 8
}

// File returns the file letter of the square ('a'..'h').
func (sq Square) File() byte {
	return byte('a' + sq.Col)
}

// Rank returns the rank digit of the square ('1'..'8').
func (sq Square) Rank() byte {
	return byte('8' - sq.Row)
}

// Offset returns the square shifted by dr rows and dc columns.
// The result may be off the board; check with IsValid.
func (sq Square) Offset(dr, dc int) Square {
	return Square{Row: sq.Row + dr, Col: sq.Col + dc}
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{sq.File(), sq.Rank()})
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	col := int(s[0]) - 'a'
	row := '8' - int(s[1])
	sq := Square{Row: row, Col: col}
	if !sq.IsValid() {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return sq, nil
}

// mustBeOnBoard panics on coordinates outside the 8x8 grid.
func mustBeOnBoard(sq Square) {
	if !sq.IsValid() {
		panic(fmt.Sprintf("board: square (%d,%d) is off the board", sq.Row, sq.Col))
	}
}
