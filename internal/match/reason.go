package match

import "github.com/hailam/chesscore/internal/board"

// InvalidMoveReason represents why a move was rejected.
type InvalidMoveReason int

const (
	ReasonUnknown InvalidMoveReason = iota
	ReasonNoPiece
	ReasonNotYourPiece
	ReasonBlockedByOwnPiece
	ReasonWouldLeaveKingInCheck
	ReasonInvalidPieceMovement
)

// String returns a short explanation suitable for a status line.
func (r InvalidMoveReason) String() string {
	switch r {
	case ReasonNoPiece:
		return "no piece on that square"
	case ReasonNotYourPiece:
		return "not your piece"
	case ReasonBlockedByOwnPiece:
		return "square occupied by your own piece"
	case ReasonWouldLeaveKingInCheck:
		return "would leave your king in check"
	case ReasonInvalidPieceMovement:
		return "that piece cannot move there"
	default:
		return "unknown"
	}
}

// invalidMoveReason analyzes why a move from src to dst is not legal.
func (s *Session) invalidMoveReason(src, dst board.Square) InvalidMoveReason {
	piece := s.gs.PieceAt(src)
	if piece == board.NoPiece {
		return ReasonNoPiece
	}
	if piece.Color() != s.gs.SideToMove() {
		return ReasonNotYourPiece
	}

	destPiece := s.gs.PieceAt(dst)
	if destPiece != board.NoPiece && destPiece.Color() == piece.Color() {
		return ReasonBlockedByOwnPiece
	}

	// Generated but filtered out by the legality test.
	for _, m := range s.gs.PseudoLegalMoves() {
		if m.From == src && m.To == dst {
			return ReasonWouldLeaveKingInCheck
		}
	}
	return ReasonInvalidPieceMovement
}
