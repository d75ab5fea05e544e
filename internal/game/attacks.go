package game

import "github.com/hailam/chesscore/internal/board"

type direction struct{ dr, dc int }

var (
	rookDirections   = []direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirections = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirections  = append(append([]direction{}, rookDirections...), bishopDirections...)
	knightOffsets    = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets      = queenDirections
)

// SquareAttacked returns true if any piece of color by attacks sq.
// Attacks are geometric: pins on the attacker are not considered.
func (s *State) SquareAttacked(sq board.Square, by board.Color) bool {
	if !sq.IsValid() {
		return false
	}

	// Pawns attack diagonally forward, so look one row "behind" sq from by's side.
	pawn := board.NewPiece(board.Pawn, by)
	for _, dc := range []int{-1, 1} {
		from := sq.Offset(-by.PawnDirection(), dc)
		if from.IsValid() && s.board.PieceAt(from) == pawn {
			return true
		}
	}

	knight := board.NewPiece(board.Knight, by)
	for _, d := range knightOffsets {
		from := sq.Offset(d.dr, d.dc)
		if from.IsValid() && s.board.PieceAt(from) == knight {
			return true
		}
	}

	king := board.NewPiece(board.King, by)
	for _, d := range kingOffsets {
		from := sq.Offset(d.dr, d.dc)
		if from.IsValid() && s.board.PieceAt(from) == king {
			return true
		}
	}

	queen := board.NewPiece(board.Queen, by)
	if s.slidingAttack(sq, rookDirections, board.NewPiece(board.Rook, by), queen) {
		return true
	}
	return s.slidingAttack(sq, bishopDirections, board.NewPiece(board.Bishop, by), queen)
}

// slidingAttack walks each ray from sq and reports whether the first piece met
// is one of the two given sliders.
func (s *State) slidingAttack(sq board.Square, dirs []direction, slider, queen board.Piece) bool {
	for _, d := range dirs {
		for to := sq.Offset(d.dr, d.dc); to.IsValid(); to = to.Offset(d.dr, d.dc) {
			p := s.board.PieceAt(to)
			if p == board.NoPiece {
				continue
			}
			if p == slider || p == queen {
				return true
			}
			break
		}
	}
	return false
}
