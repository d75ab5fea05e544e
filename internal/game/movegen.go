package game

import "github.com/hailam/chesscore/internal/board"

// ValidMoves returns all legal moves for the side to move and updates the
// checkmate and stalemate flags.
//
// Each pseudo-legal move is played, the mover's king is tested for attack,
// and the move is taken back. Only moves that leave the king safe are kept.
func (s *State) ValidMoves() []board.Move {
	legal := s.LegalMoves()

	s.checkMate, s.stalemate = false, false
	if len(legal) == 0 {
		if s.InCheck() {
			s.checkMate = true
		} else {
			s.stalemate = true
		}
	}
	return legal
}

// LegalMoves returns the legal moves for the side to move without touching
// the terminal flags. Searches use it on hypothetical positions.
func (s *State) LegalMoves() []board.Move {
	us := s.SideToMove()
	pseudo := s.PseudoLegalMoves()
	legal := make([]board.Move, 0, len(pseudo))

	for _, m := range pseudo {
		s.MakeMove(m)
		if !s.SquareAttacked(s.kingSquare[us], us.Other()) {
			legal = append(legal, m)
		}
		s.UndoMove()
	}
	return legal
}

// HasLegalMoves returns true if the side to move has at least one legal move.
// Unlike ValidMoves it leaves the terminal flags alone and stops early.
func (s *State) HasLegalMoves() bool {
	us := s.SideToMove()
	for _, m := range s.PseudoLegalMoves() {
		s.MakeMove(m)
		safe := !s.SquareAttacked(s.kingSquare[us], us.Other())
		s.UndoMove()
		if safe {
			return true
		}
	}
	return false
}

// PseudoLegalMoves generates every move that obeys piece geometry for the side
// to move, without checking whether the mover's king is left attacked.
// Castling is the exception: it is only produced when the king's path is safe.
func (s *State) PseudoLegalMoves() []board.Move {
	us := s.SideToMove()
	moves := make([]board.Move, 0, 48)

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.board[r][c]
			if p == board.NoPiece || p.Color() != us {
				continue
			}
			from := board.NewSquare(r, c)
			switch p.Type() {
			case board.Pawn:
				moves = s.pawnMoves(moves, from, us)
			case board.Knight:
				moves = s.stepMoves(moves, from, us, knightOffsets)
			case board.Bishop:
				moves = s.slideMoves(moves, from, us, bishopDirections)
			case board.Rook:
				moves = s.slideMoves(moves, from, us, rookDirections)
			case board.Queen:
				moves = s.slideMoves(moves, from, us, queenDirections)
			case board.King:
				moves = s.stepMoves(moves, from, us, kingOffsets)
				moves = s.castleMoves(moves, from, us)
			}
		}
	}
	return moves
}

// pawnMoves adds pushes, double pushes, captures, en passant and promotions.
func (s *State) pawnMoves(moves []board.Move, from board.Square, us board.Color) []board.Move {
	dir := us.PawnDirection()
	startRow := 6
	if us == board.Black {
		startRow = 1
	}

	one := from.Offset(dir, 0)
	if one.IsValid() && s.board.IsEmpty(one) {
		moves = append(moves, s.pawnMove(from, one))
		two := from.Offset(2*dir, 0)
		if from.Row == startRow && s.board.IsEmpty(two) {
			moves = append(moves, board.NewMove(from, two, &s.board))
		}
	}

	for _, dc := range []int{-1, 1} {
		to := from.Offset(dir, dc)
		if !to.IsValid() {
			continue
		}
		target := s.board.PieceAt(to)
		if target != board.NoPiece && target.Color() != us {
			moves = append(moves, s.pawnMove(from, to))
		} else if to == s.enPassant {
			victim := s.board.PieceAt(board.NewSquare(from.Row, to.Col))
			if victim != board.NewPiece(board.Pawn, us.Other()) {
				continue
			}
			m := board.NewMove(from, to, &s.board)
			m.EnPassant = true
			m.PieceCaptured = victim
			moves = append(moves, m)
		}
	}
	return moves
}

// pawnMove builds a pawn move, flagging promotion on the last rank.
// Promotion always chooses a queen.
func (s *State) pawnMove(from, to board.Square) board.Move {
	m := board.NewMove(from, to, &s.board)
	if to.Row == 0 || to.Row == 7 {
		m.Promotion = true
		m.PromoteTo = board.Queen
	}
	return m
}

// stepMoves adds single-step moves (knight and king).
func (s *State) stepMoves(moves []board.Move, from board.Square, us board.Color, offsets []direction) []board.Move {
	for _, d := range offsets {
		to := from.Offset(d.dr, d.dc)
		if !to.IsValid() {
			continue
		}
		if target := s.board.PieceAt(to); target == board.NoPiece || target.Color() != us {
			moves = append(moves, board.NewMove(from, to, &s.board))
		}
	}
	return moves
}

// slideMoves adds moves along rays, stopping at the first occupied square and
// capturing it if it holds an enemy piece.
func (s *State) slideMoves(moves []board.Move, from board.Square, us board.Color, dirs []direction) []board.Move {
	for _, d := range dirs {
		for to := from.Offset(d.dr, d.dc); to.IsValid(); to = to.Offset(d.dr, d.dc) {
			target := s.board.PieceAt(to)
			if target == board.NoPiece {
				moves = append(moves, board.NewMove(from, to, &s.board))
				continue
			}
			if target.Color() != us {
				moves = append(moves, board.NewMove(from, to, &s.board))
			}
			break
		}
	}
	return moves
}

// castleMoves adds castling moves when the right is held, the squares between
// king and rook are empty, and the king neither starts on, passes through nor
// lands on an attacked square.
func (s *State) castleMoves(moves []board.Move, from board.Square, us board.Color) []board.Move {
	homeRow := 7
	if us == board.Black {
		homeRow = 0
	}
	if from != board.NewSquare(homeRow, 4) {
		return moves
	}
	them := us.Other()
	if s.SquareAttacked(from, them) {
		return moves
	}
	rook := board.NewPiece(board.Rook, us)

	if s.castlingRights.CanCastle(us, true) &&
		s.board[homeRow][7] == rook &&
		s.emptyRow(homeRow, 5, 6) &&
		!s.SquareAttacked(board.NewSquare(homeRow, 5), them) &&
		!s.SquareAttacked(board.NewSquare(homeRow, 6), them) {
		m := board.NewMove(from, board.NewSquare(homeRow, 6), &s.board)
		m.Castle = true
		moves = append(moves, m)
	}

	if s.castlingRights.CanCastle(us, false) &&
		s.board[homeRow][0] == rook &&
		s.emptyRow(homeRow, 1, 3) &&
		!s.SquareAttacked(board.NewSquare(homeRow, 3), them) &&
		!s.SquareAttacked(board.NewSquare(homeRow, 2), them) {
		m := board.NewMove(from, board.NewSquare(homeRow, 2), &s.board)
		m.Castle = true
		moves = append(moves, m)
	}
	return moves
}

// emptyRow reports whether columns fromCol..toCol of row are all empty.
func (s *State) emptyRow(row, fromCol, toCol int) bool {
	for c := fromCol; c <= toCol; c++ {
		if s.board[row][c] != board.NoPiece {
			return false
		}
	}
	return true
}
