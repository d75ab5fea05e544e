// Package game implements the authoritative chess game state: legal move
// generation, move application and rollback, and terminal detection.
package game

import (
	"fmt"

	"github.com/hailam/chesscore/internal/board"
)

// undoInfo stores the state a move overwrites and cannot recompute on undo.
type undoInfo struct {
	castlingRights board.CastlingRights
	enPassant      board.Square
	halfMoveClock  int
	fullMoveNumber int
}

// State is a complete game: board, side to move, special-move eligibility and
// the move log. It is mutated only through MakeMove and UndoMove and must not
// be used by two goroutines at once; use Clone to hand a copy to another one.
type State struct {
	board       board.Board
	whiteToMove bool

	moveLog []board.Move
	undo    []undoInfo

	kingSquare     [2]board.Square
	enPassant      board.Square // square a pawn skipped over on the last ply, or NoSquare
	castlingRights board.CastlingRights
	halfMoveClock  int
	fullMoveNumber int

	checkMate bool
	stalemate bool
}

// New returns the standard starting position.
func New() *State {
	return &State{
		board:          board.StartingBoard(),
		whiteToMove:    true,
		kingSquare:     [2]board.Square{board.NewSquare(7, 4), board.NewSquare(0, 4)},
		enPassant:      board.NoSquare,
		castlingRights: board.AllCastling,
		fullMoveNumber: 1,
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s *State) Clone() *State {
	c := *s
	c.moveLog = append([]board.Move(nil), s.moveLog...)
	c.undo = append([]undoInfo(nil), s.undo...)
	return &c
}

// Board returns a copy of the board for read-only use.
func (s *State) Board() board.Board {
	return s.board
}

// PieceAt returns the piece on sq.
func (s *State) PieceAt(sq board.Square) board.Piece {
	return s.board.PieceAt(sq)
}

// WhiteToMove reports whether White is the side to move.
func (s *State) WhiteToMove() bool {
	return s.whiteToMove
}

// SideToMove returns the color to move.
func (s *State) SideToMove() board.Color {
	if s.whiteToMove {
		return board.White
	}
	return board.Black
}

// MoveLog returns a copy of the moves played so far, oldest first.
func (s *State) MoveLog() []board.Move {
	return append([]board.Move(nil), s.moveLog...)
}

// LastMove returns the most recent move and whether there is one.
func (s *State) LastMove() (board.Move, bool) {
	if len(s.moveLog) == 0 {
		return board.Move{}, false
	}
	return s.moveLog[len(s.moveLog)-1], true
}

// Ply returns the number of moves in the log.
func (s *State) Ply() int {
	return len(s.moveLog)
}

// CheckMate reports the result of the last ValidMoves call: no moves and in check.
func (s *State) CheckMate() bool {
	return s.checkMate
}

// Stalemate reports the result of the last ValidMoves call: no moves, not in check.
func (s *State) Stalemate() bool {
	return s.stalemate
}

// KingSquare returns the cached king location for c.
func (s *State) KingSquare(c board.Color) board.Square {
	return s.kingSquare[c]
}

// EnPassantTarget returns the square a pawn skipped on the previous ply, or NoSquare.
func (s *State) EnPassantTarget() board.Square {
	return s.enPassant
}

// CastlingRights returns the remaining castling rights.
func (s *State) CastlingRights() board.CastlingRights {
	return s.castlingRights
}

// HalfMoveClock returns the number of plies since the last pawn move or capture.
func (s *State) HalfMoveClock() int {
	return s.halfMoveClock
}

// FullMoveNumber returns the move counter, starting at 1 and incremented after Black moves.
func (s *State) FullMoveNumber() int {
	return s.fullMoveNumber
}

// InCheck returns true if the side to move's king is attacked.
func (s *State) InCheck() bool {
	us := s.SideToMove()
	return s.SquareAttacked(s.kingSquare[us], us.Other())
}

// Material returns the material balance in centipawns (positive favors white).
func (s *State) Material() int {
	score := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.board[r][c]
			if p == board.NoPiece {
				continue
			}
			if p.Color() == board.White {
				score += p.Value()
			} else {
				score -= p.Value()
			}
		}
	}
	return score
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (s *State) IsInsufficientMaterial() bool {
	var minors [2]int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.board[r][c]
			switch p.Type() {
			case board.Pawn, board.Rook, board.Queen:
				return false
			case board.Knight, board.Bishop:
				minors[p.Color()]++
			}
		}
	}
	return minors[board.White]+minors[board.Black] <= 1
}

// Validate checks that the position can be played: one king each, no pawns on
// the back ranks, and the side not to move is not in check.
func (s *State) Validate() error {
	var kings [2]int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.board[r][c]
			if p.Type() == board.King {
				kings[p.Color()]++
			}
			if p.Type() == board.Pawn && (r == 0 || r == 7) {
				return fmt.Errorf("pawn on back rank at %s", board.NewSquare(r, c))
			}
		}
	}
	if kings[board.White] != 1 {
		return fmt.Errorf("white must have exactly one king, found %d", kings[board.White])
	}
	if kings[board.Black] != 1 {
		return fmt.Errorf("black must have exactly one king, found %d", kings[board.Black])
	}

	them := s.SideToMove().Other()
	if s.SquareAttacked(s.kingSquare[them], them.Other()) {
		return fmt.Errorf("%s king is in check with %s to move", them, them.Other())
	}
	return nil
}

// String returns a visual representation of the state.
func (s *State) String() string {
	str := s.board.String()
	str += fmt.Sprintf("\nSide to move: %s\n", s.SideToMove())
	str += fmt.Sprintf("Castling: %s\n", s.castlingRights)
	str += fmt.Sprintf("En passant: %s\n", s.enPassant)
	str += fmt.Sprintf("FEN: %s\n", s.ToFEN())
	return str
}

// findKings locates and caches the king positions.
func (s *State) findKings() {
	s.kingSquare = [2]board.Square{board.NoSquare, board.NoSquare}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := s.board[r][c]; p.Type() == board.King {
				s.kingSquare[p.Color()] = board.NewSquare(r, c)
			}
		}
	}
}
