package board

import "strings"

// Board is the 8x8 grid of piece occupancy, indexed [row][col].
// It has no knowledge of legality; game.State owns and mutates it.
type Board [8][8]Piece

// EmptyBoard returns a board with every square empty.
func EmptyBoard() Board {
	var b Board
	for r := range b {
		for c := range b[r] {
			b[r][c] = NoPiece
		}
	}
	return b
}

// StartingBoard returns the standard initial setup.
func StartingBoard() Board {
	b := EmptyBoard()
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c := 0; c < 8; c++ {
		b[0][c] = NewPiece(back[c], Black)
		b[1][c] = BlackPawn
		b[6][c] = WhitePawn
		b[7][c] = NewPiece(back[c], White)
	}
	return b
}

// PieceAt returns the piece on sq, or NoPiece. Panics if sq is off the board.
func (b *Board) PieceAt(sq Square) Piece {
	mustBeOnBoard(sq)
	return b[sq.Row][sq.Col]
}

// SetPiece writes p to sq. Panics if sq is off the board.
func (b *Board) SetPiece(sq Square, p Piece) {
	mustBeOnBoard(sq)
	b[sq.Row][sq.Col] = p
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.PieceAt(sq) == NoPiece
}

// String returns a visual representation of the board, rank 8 first.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for r := 0; r < 8; r++ {
		sb.WriteByte(byte('8' - r))
		sb.WriteString("  ")
		for c := 0; c < 8; c++ {
			if p := b[r][c]; p == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String())
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
