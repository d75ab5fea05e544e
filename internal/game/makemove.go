package game

import "github.com/hailam/chesscore/internal/board"

// MakeMove applies m without checking legality. Callers pass moves taken from
// ValidMoves (or, inside a search, pseudo-legal moves that are undone again).
func (s *State) MakeMove(m board.Move) {
	us := m.PieceMoved.Color()

	s.undo = append(s.undo, undoInfo{
		castlingRights: s.castlingRights,
		enPassant:      s.enPassant,
		halfMoveClock:  s.halfMoveClock,
		fullMoveNumber: s.fullMoveNumber,
	})

	s.board.SetPiece(m.From, board.NoPiece)
	if m.Promotion {
		s.board.SetPiece(m.To, m.PromotionPiece())
	} else {
		s.board.SetPiece(m.To, m.PieceMoved)
	}

	if m.EnPassant {
		// The captured pawn sits beside the mover, not on the destination.
		s.board.SetPiece(board.NewSquare(m.From.Row, m.To.Col), board.NoPiece)
	}

	if m.PieceMoved.Type() == board.King {
		s.kingSquare[us] = m.To
		if m.Castle {
			s.moveCastleRook(m, false)
		}
	}

	s.updateCastlingRights(m)

	s.enPassant = board.NoSquare
	if m.PieceMoved.Type() == board.Pawn && abs(m.To.Row-m.From.Row) == 2 {
		s.enPassant = board.NewSquare((m.From.Row+m.To.Row)/2, m.From.Col)
	}

	if m.PieceMoved.Type() == board.Pawn || m.IsCapture() {
		s.halfMoveClock = 0
	} else {
		s.halfMoveClock++
	}
	if us == board.Black {
		s.fullMoveNumber++
	}

	s.moveLog = append(s.moveLog, m)
	s.whiteToMove = !s.whiteToMove
}

// UndoMove takes back the last move. It is a no-op on an empty log.
// The checkmate and stalemate flags are left for the next ValidMoves call.
func (s *State) UndoMove() {
	if len(s.moveLog) == 0 {
		return
	}
	last := len(s.moveLog) - 1
	m := s.moveLog[last]
	u := s.undo[last]
	s.moveLog = s.moveLog[:last]
	s.undo = s.undo[:last]

	s.board.SetPiece(m.From, m.PieceMoved)
	if m.EnPassant {
		s.board.SetPiece(m.To, board.NoPiece)
		s.board.SetPiece(board.NewSquare(m.From.Row, m.To.Col), m.PieceCaptured)
	} else {
		s.board.SetPiece(m.To, m.PieceCaptured)
	}

	if m.PieceMoved.Type() == board.King {
		s.kingSquare[m.PieceMoved.Color()] = m.From
		if m.Castle {
			s.moveCastleRook(m, true)
		}
	}

	s.castlingRights = u.castlingRights
	s.enPassant = u.enPassant
	s.halfMoveClock = u.halfMoveClock
	s.fullMoveNumber = u.fullMoveNumber

	s.whiteToMove = !s.whiteToMove
}

// moveCastleRook relocates the rook of a castling move, or puts it back.
func (s *State) moveCastleRook(m board.Move, undo bool) {
	row := m.From.Row
	rookFrom, rookTo := board.NewSquare(row, 7), board.NewSquare(row, 5)
	if m.To.Col == 2 {
		rookFrom, rookTo = board.NewSquare(row, 0), board.NewSquare(row, 3)
	}
	if undo {
		rookFrom, rookTo = rookTo, rookFrom
	}
	s.board.SetPiece(rookTo, s.board.PieceAt(rookFrom))
	s.board.SetPiece(rookFrom, board.NoPiece)
}

// updateCastlingRights drops rights when a king or rook leaves its home square
// or a rook is captured on its home square.
func (s *State) updateCastlingRights(m board.Move) {
	if m.PieceMoved.Type() == board.King {
		c := m.PieceMoved.Color()
		s.castlingRights = s.castlingRights.Without(board.CastleRight(c, true) | board.CastleRight(c, false))
	}
	for _, sq := range [2]board.Square{m.From, m.To} {
		switch sq {
		case board.NewSquare(7, 0):
			s.castlingRights = s.castlingRights.Without(board.WhiteQueenSideCastle)
		case board.NewSquare(7, 7):
			s.castlingRights = s.castlingRights.Without(board.WhiteKingSideCastle)
		case board.NewSquare(0, 0):
			s.castlingRights = s.castlingRights.Without(board.BlackQueenSideCastle)
		case board.NewSquare(0, 7):
			s.castlingRights = s.castlingRights.Without(board.BlackKingSideCastle)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
