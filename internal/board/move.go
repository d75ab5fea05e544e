package board

import "strings"

// Move describes one ply. PieceMoved and PieceCaptured are snapshotted from the
// board when the move is constructed; the special-rule flags are set by the
// move generator, which knows the game context.
type Move struct {
	From          Square
	To            Square
	PieceMoved    Piece
	PieceCaptured Piece

	EnPassant bool
	Promotion bool
	Castle    bool

	// PromoteTo is the piece type a promoting pawn becomes. Queen when unset.
	PromoteTo PieceType
}

// NewMove creates a move from two squares, reading the moving and captured
// pieces from b. Panics if either square is off the board.
func NewMove(from, to Square, b *Board) Move {
	return Move{
		From:          from,
		To:            to,
		PieceMoved:    b.PieceAt(from),
		PieceCaptured: b.PieceAt(to),
		PromoteTo:     NoPieceType,
	}
}

// Equal reports whether two moves share start and end squares.
// Flags are ignored: a move built from two clicks matches the generated move.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// ID packs the endpoints into a single integer (from row, from col, to row, to col).
func (m Move) ID() int {
	return m.From.Row*1000 + m.From.Col*100 + m.To.Row*10 + m.To.Col
}

// IsCapture returns true if this move removes an enemy piece.
func (m Move) IsCapture() bool {
	return m.PieceCaptured != NoPiece
}

// PromotionPiece returns the piece a promoting pawn turns into.
func (m Move) PromotionPiece() Piece {
	pt := m.PromoteTo
	if pt == NoPieceType || pt == Pawn || pt == King {
		pt = Queen
	}
	return NewPiece(pt, m.PieceMoved.Color())
}

// Notation returns the long algebraic form, e.g. "e2e4".
func (m Move) Notation() string {
	return m.From.String() + m.To.String()
}

// UCI returns the long algebraic form with a promotion suffix, e.g. "e7e8q".
func (m Move) UCI() string {
	if !m.Promotion {
		return m.Notation()
	}
	return m.Notation() + strings.ToLower(m.PromotionPiece().Type().Letter())
}

// String returns a short display form: "O-O", "exd5", "e4", "Nf3", "Nxf3".
// It carries no disambiguation or check marks; see game.State.SAN for that.
func (m Move) String() string {
	if m.Castle {
		if m.To.Col == 6 {
			return "O-O"
		}
		return "O-O-O"
	}

	end := m.To.String()
	if m.PieceMoved.Type() == Pawn {
		if m.IsCapture() {
			return string(m.From.File()) + "x" + end
		}
		return end
	}

	s := m.PieceMoved.Type().Letter()
	if m.IsCapture() {
		s += "x"
	}
	return s + end
}
