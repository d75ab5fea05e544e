package game

import (
	"fmt"
	"strings"

	"github.com/hailam/chesscore/internal/board"
)

// SAN returns the Standard Algebraic Notation of m, which must be legal in s.
// The state is left as it was, terminal flags included.
func (s *State) SAN(m board.Move) string {
	if m.Castle {
		san := "O-O-O"
		if m.To.Col == 6 {
			san = "O-O"
		}
		return san + s.checkSuffix(m)
	}

	var sb strings.Builder
	pt := m.PieceMoved.Type()

	if pt != board.Pawn {
		sb.WriteString(pt.Letter())
		sb.WriteString(s.disambiguation(m))
	}

	if m.IsCapture() {
		if pt == board.Pawn {
			sb.WriteByte(m.From.File())
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if m.Promotion {
		sb.WriteByte('=')
		sb.WriteString(m.PromotionPiece().Type().Letter())
	}

	sb.WriteString(s.checkSuffix(m))
	return sb.String()
}

// checkSuffix plays m and reports "#", "+" or "".
func (s *State) checkSuffix(m board.Move) string {
	s.MakeMove(m)
	defer s.UndoMove()

	if !s.InCheck() {
		return ""
	}
	if s.HasLegalMoves() {
		return "+"
	}
	return "#"
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other pieces of the same type that can reach the same square.
func (s *State) disambiguation(m board.Move) string {
	var candidates []board.Square
	for _, other := range s.LegalMoves() {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if other.PieceMoved == m.PieceMoved {
			candidates = append(candidates, other.From)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.Col == m.From.Col {
			sameFile = true
		}
		if sq.Row == m.From.Row {
			sameRank = true
		}
	}

	switch {
	case !sameFile:
		return string(m.From.File())
	case !sameRank:
		return string(m.From.Rank())
	default:
		return m.From.String()
	}
}

// ParseSAN finds the legal move described by a SAN string such as "Nbd7",
// "exd5", "e8=Q+" or "O-O".
func (s *State) ParseSAN(san string) (board.Move, error) {
	str := strings.TrimSpace(san)
	str = strings.TrimRight(str, "+#!?")
	str = strings.ReplaceAll(str, "0", "O")

	legal := s.LegalMoves()

	if str == "O-O" || str == "O-O-O" {
		col := 6
		if str == "O-O-O" {
			col = 2
		}
		for _, m := range legal {
			if m.Castle && m.To.Col == col {
				return m, nil
			}
		}
		return board.Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, san)
	}

	promo := board.NoPieceType
	if idx := strings.IndexByte(str, '='); idx >= 0 {
		if idx+1 >= len(str) {
			return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, san)
		}
		promo = pieceTypeFromLetter(str[idx+1])
		if promo == board.NoPieceType {
			return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, san)
		}
		str = str[:idx]
	}

	isCapture := strings.Contains(str, "x")
	str = strings.ReplaceAll(str, "x", "")

	pt := board.Pawn
	if len(str) > 0 && str[0] >= 'A' && str[0] <= 'Z' {
		pt = pieceTypeFromLetter(str[0])
		if pt == board.NoPieceType || pt == board.Pawn {
			return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, san)
		}
		str = str[1:]
	}

	if len(str) < 2 {
		return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, san)
	}
	dest, err := board.ParseSquare(str[len(str)-2:])
	if err != nil {
		return board.Move{}, fmt.Errorf("%w: %q: %w", ErrBadNotation, san, err)
	}

	fileHint, rankHint := -1, -1
	for _, c := range str[:len(str)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int('8' - c)
		default:
			return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, san)
		}
	}

	for _, m := range legal {
		if m.To != dest || m.PieceMoved.Type() != pt {
			continue
		}
		if fileHint >= 0 && m.From.Col != fileHint {
			continue
		}
		if rankHint >= 0 && m.From.Row != rankHint {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if promo != board.NoPieceType && (!m.Promotion || m.PromotionPiece().Type() != promo) {
			continue
		}
		return m, nil
	}
	return board.Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, san)
}

// ParseMove finds the legal move given in long algebraic form ("e2e4",
// "e7e8q"). Pawns always promote to a queen, so any other suffix is rejected.
func (s *State) ParseMove(str string) (board.Move, error) {
	if len(str) != 4 && len(str) != 5 {
		return board.Move{}, fmt.Errorf("%w: %q", ErrBadNotation, str)
	}
	from, err := board.ParseSquare(str[0:2])
	if err != nil {
		return board.Move{}, fmt.Errorf("%w: %q: %w", ErrBadNotation, str, err)
	}
	to, err := board.ParseSquare(str[2:4])
	if err != nil {
		return board.Move{}, fmt.Errorf("%w: %q: %w", ErrBadNotation, str, err)
	}

	want := board.Move{From: from, To: to}
	for _, m := range s.LegalMoves() {
		if !m.Equal(want) {
			continue
		}
		if len(str) == 5 && (!m.Promotion || str[4] != 'q') {
			break
		}
		return m, nil
	}
	return board.Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, str)
}

// MovesToSAN converts a sequence of moves, played from s, to SAN.
// s itself is not modified.
func (s *State) MovesToSAN(moves []board.Move) []string {
	result := make([]string, len(moves))
	c := s.Clone()
	for i, m := range moves {
		result[i] = c.SAN(m)
		c.MakeMove(m)
	}
	return result
}

func pieceTypeFromLetter(c byte) board.PieceType {
	switch c {
	case 'N':
		return board.Knight
	case 'B':
		return board.Bishop
	case 'R':
		return board.Rook
	case 'Q':
		return board.Queen
	case 'K':
		return board.King
	case 'P':
		return board.Pawn
	default:
		return board.NoPieceType
	}
}
