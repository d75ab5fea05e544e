package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/chesscore/internal/board"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a State from a FEN string. The move log of the result is
// empty, so UndoMove cannot go back past the given position.
func ParseFEN(fen string) (*State, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	s := &State{
		board:          board.EmptyBoard(),
		enPassant:      board.NoSquare,
		fullMoveNumber: 1,
	}

	if err := parsePiecePlacement(s, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		s.whiteToMove = true
	case "b":
		s.whiteToMove = false
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	if err := parseCastlingRights(s, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %w", err)
		}
		s.enPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		s.halfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		s.fullMoveNumber = fmn
	}

	if s.enPassant != board.NoSquare && !s.validEnPassant() {
		return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
	}

	s.findKings()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FEN position: %w", err)
	}
	return s, nil
}

// MustParseFEN is like ParseFEN but panics on error. Intended for fixed positions.
func MustParseFEN(fen string) *State {
	s, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return s
}

// validEnPassant reports whether the en passant square could follow a double
// push by the side that just moved: the square and the pawn's origin are
// empty and that pawn stands in front of the square.
func (s *State) validEnPassant() bool {
	ep := s.enPassant
	row, dir := 2, 1
	if !s.whiteToMove {
		row, dir = 5, -1
	}
	if ep.Row != row {
		return false
	}
	mover := board.White
	if s.whiteToMove {
		mover = board.Black
	}
	return s.board.IsEmpty(ep) &&
		s.board.IsEmpty(ep.Offset(-dir, 0)) &&
		s.board.PieceAt(ep.Offset(dir, 0)) == board.NewPiece(board.Pawn, mover)
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(s *State, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	// FEN lists rank 8 first, which is row 0.
	for row, rankStr := range ranks {
		col := 0
		for _, c := range rankStr {
			if col > 7 {
				return fmt.Errorf("too many squares in rank %d", 8-row)
			}
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			piece := board.PieceFromChar(byte(c))
			if piece == board.NoPiece {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			s.board[row][col] = piece
			col++
		}
		if col != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", 8-row, col)
		}
	}
	return nil
}

// parseCastlingRights parses the castling field of a FEN string.
func parseCastlingRights(s *State, castling string) error {
	if castling == "-" {
		return nil
	}
	for _, c := range castling {
		switch c {
		case 'K':
			s.castlingRights |= board.WhiteKingSideCastle
		case 'Q':
			s.castlingRights |= board.WhiteQueenSideCastle
		case 'k':
			s.castlingRights |= board.BlackKingSideCastle
		case 'q':
			s.castlingRights |= board.BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}
	return nil
}

// ToFEN returns the FEN string for the current state.
func (s *State) ToFEN() string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			p := s.board[row][col]
			if p == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	if s.whiteToMove {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(s.castlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(s.enPassant.String())
	sb.WriteString(fmt.Sprintf(" %d %d", s.halfMoveClock, s.fullMoveNumber))
	return sb.String()
}
