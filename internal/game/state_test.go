package game

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func sq(t *testing.T, s string) board.Square {
	t.Helper()
	square, err := board.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return square
}

func play(t *testing.T, s *State, moves ...string) {
	t.Helper()
	for _, str := range moves {
		m, err := s.ParseMove(str)
		if err != nil {
			t.Fatalf("ParseMove(%q) in %s: %v", str, s.ToFEN(), err)
		}
		s.MakeMove(m)
	}
}

func hasMove(moves []board.Move, from, to board.Square) bool {
	want := board.Move{From: from, To: to}
	for _, m := range moves {
		if m.Equal(want) {
			return true
		}
	}
	return false
}

func TestStartingPosition(t *testing.T) {
	s := New()
	if !s.WhiteToMove() {
		t.Error("white moves first")
	}
	if got := len(s.ValidMoves()); got != 20 {
		t.Errorf("starting position has %d moves, want 20", got)
	}
	if s.KingSquare(board.White) != sq(t, "e1") || s.KingSquare(board.Black) != sq(t, "e8") {
		t.Errorf("king squares = %v %v", s.KingSquare(board.White), s.KingSquare(board.Black))
	}
	if s.ToFEN() != StartFEN {
		t.Errorf("ToFEN() = %q, want %q", s.ToFEN(), StartFEN)
	}
}

// TestMakeUndoRoundTrip plays and takes back every legal move of a set of
// positions covering castling, en passant and promotion.
func TestMakeUndoRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"1n5k/P7/8/8/8/8/1p6/K7 w - - 0 1",
		"1n5k/P7/8/8/8/8/1p5K/8 b - - 0 1",
	}

	for _, fen := range fens {
		s, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		beforeFEN := s.ToFEN()
		beforeBoard := s.Board()
		beforeKings := s.kingSquare
		beforeKey := s.Key()

		for _, m := range s.ValidMoves() {
			s.MakeMove(m)
			if s.Ply() != 1 {
				t.Fatalf("%s: ply after MakeMove = %d", m, s.Ply())
			}
			if last, ok := s.LastMove(); !ok || !last.Equal(m) {
				t.Errorf("LastMove() = %s, %v after %s", last.UCI(), ok, m.UCI())
			}
			s.UndoMove()

			if s.ToFEN() != beforeFEN {
				t.Errorf("%s in %s: FEN after undo = %s", m.UCI(), fen, s.ToFEN())
			}
			if s.Board() != beforeBoard {
				t.Errorf("%s in %s: board differs after undo", m.UCI(), fen)
			}
			if s.kingSquare != beforeKings {
				t.Errorf("%s in %s: king cache %v, want %v", m.UCI(), fen, s.kingSquare, beforeKings)
			}
			if s.Key() != beforeKey {
				t.Errorf("%s in %s: key changed after undo", m.UCI(), fen)
			}
			if s.Ply() != 0 {
				t.Errorf("%s in %s: ply after undo = %d", m.UCI(), fen, s.Ply())
			}
		}
	}
}

func TestUndoEmptyLogIsNoOp(t *testing.T) {
	s := New()
	s.UndoMove()
	if s.ToFEN() != StartFEN || s.Ply() != 0 {
		t.Errorf("UndoMove on empty log changed state: %s", s.ToFEN())
	}
	if _, ok := s.LastMove(); ok {
		t.Error("LastMove reported a move on an empty log")
	}
}

func TestEnPassant(t *testing.T) {
	s := New()
	play(t, s, "e2e4", "a7a6", "e4e5", "d7d5")

	if s.EnPassantTarget() != sq(t, "d6") {
		t.Fatalf("en passant target = %s, want d6", s.EnPassantTarget())
	}

	moves := s.ValidMoves()
	var ep board.Move
	for _, m := range moves {
		if m.EnPassant {
			ep = m
		}
	}
	if !ep.EnPassant || ep.From != sq(t, "e5") || ep.To != sq(t, "d6") {
		t.Fatalf("expected exd6 en passant among %v", moves)
	}
	if ep.PieceCaptured != board.BlackPawn {
		t.Errorf("en passant captured piece = %v, want black pawn", ep.PieceCaptured)
	}

	s.MakeMove(ep)
	if got := s.PieceAt(sq(t, "d5")); got != board.NoPiece {
		t.Errorf("captured pawn still on d5: %v", got)
	}
	if got := s.PieceAt(sq(t, "d6")); got != board.WhitePawn {
		t.Errorf("d6 = %v, want white pawn", got)
	}

	s.UndoMove()
	if got := s.PieceAt(sq(t, "d5")); got != board.BlackPawn {
		t.Errorf("undo did not restore d5 pawn: %v", got)
	}
	if got := s.PieceAt(sq(t, "d6")); got != board.NoPiece {
		t.Errorf("undo left a piece on d6: %v", got)
	}
	if s.EnPassantTarget() != sq(t, "d6") {
		t.Errorf("undo did not restore en passant target: %s", s.EnPassantTarget())
	}
}

func TestEnPassantNeedsVictim(t *testing.T) {
	s := MustParseFEN("4k3/8/8/3P4/8/8/8/4K3 w - - 0 1")
	s.enPassant = sq(t, "e6")
	before := s.ToFEN()

	if hasMove(s.ValidMoves(), sq(t, "d5"), sq(t, "e6")) {
		t.Error("en passant capture generated with no pawn on e5")
	}
	if s.ToFEN() != before {
		t.Errorf("ValidMoves changed the position: %s, want %s", s.ToFEN(), before)
	}
}

func TestEnPassantWindowCloses(t *testing.T) {
	s := New()
	play(t, s, "e2e4", "a7a6", "e4e5", "d7d5", "h2h3", "h7h6")

	if s.EnPassantTarget() != board.NoSquare {
		t.Errorf("en passant target = %s, want none", s.EnPassantTarget())
	}
	if hasMove(s.ValidMoves(), sq(t, "e5"), sq(t, "d6")) {
		t.Error("en passant must only be available on the very next move")
	}
}

func TestCastling(t *testing.T) {
	s := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	moves := s.ValidMoves()
	if !hasMove(moves, sq(t, "e1"), sq(t, "g1")) || !hasMove(moves, sq(t, "e1"), sq(t, "c1")) {
		t.Fatalf("expected both castles, got %v", moves)
	}

	play(t, s, "e1g1")
	if s.PieceAt(sq(t, "g1")) != board.WhiteKing || s.PieceAt(sq(t, "f1")) != board.WhiteRook {
		t.Errorf("kingside castle left\n%s", s.Board().String())
	}
	if s.PieceAt(sq(t, "h1")) != board.NoPiece {
		t.Error("rook still on h1 after castling")
	}
	if s.CastlingRights().CanCastle(board.White, true) || s.CastlingRights().CanCastle(board.White, false) {
		t.Errorf("white keeps castling rights after castling: %s", s.CastlingRights())
	}
	if s.KingSquare(board.White) != sq(t, "g1") {
		t.Errorf("king cache = %s, want g1", s.KingSquare(board.White))
	}

	play(t, s, "e8c8")
	if s.PieceAt(sq(t, "c8")) != board.BlackKing || s.PieceAt(sq(t, "d8")) != board.BlackRook {
		t.Errorf("queenside castle left\n%s", s.Board().String())
	}

	s.UndoMove()
	s.UndoMove()
	if s.ToFEN() != "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1" {
		t.Errorf("undo castling gave %s", s.ToFEN())
	}
}

func TestCastlingThroughOrIntoCheck(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		kingSide  bool
		queenSide bool
	}{
		{"path attacked", "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1", false, true},
		{"destination attacked", "r3k1r1/8/8/8/8/8/8/R3K2R w KQq - 0 1", false, true},
		{"in check", "r3k3/8/8/8/4r3/8/8/R3K2R w KQq - 0 1", false, false},
		{"only rook path attacked", "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", true, true},
		{"path blocked", "4k3/8/8/8/8/8/8/RN2K1NR w KQ - 0 1", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := MustParseFEN(tc.fen)
			moves := s.ValidMoves()
			if got := hasMove(moves, sq(t, "e1"), sq(t, "g1")); got != tc.kingSide {
				t.Errorf("O-O available = %v, want %v", got, tc.kingSide)
			}
			if got := hasMove(moves, sq(t, "e1"), sq(t, "c1")); got != tc.queenSide {
				t.Errorf("O-O-O available = %v, want %v", got, tc.queenSide)
			}
		})
	}
}

func TestCastlingRightsLostOnRookCapture(t *testing.T) {
	s := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	play(t, s, "a1a8")
	cr := s.CastlingRights()
	if cr.CanCastle(board.White, false) {
		t.Error("white queenside right survives rook leaving a1")
	}
	if cr.CanCastle(board.Black, false) {
		t.Error("black queenside right survives rook captured on a8")
	}
	if !cr.CanCastle(board.White, true) || !cr.CanCastle(board.Black, true) {
		t.Errorf("kingside rights should remain, got %s", cr)
	}
}

func TestPromotion(t *testing.T) {
	s := MustParseFEN("1n5k/P7/8/8/8/8/8/K7 w - - 0 1")
	moves := s.ValidMoves()

	var push, capture board.Move
	for _, m := range moves {
		switch {
		case m.From == sq(t, "a7") && m.To == sq(t, "a8"):
			push = m
		case m.From == sq(t, "a7") && m.To == sq(t, "b8"):
			capture = m
		}
	}
	if !push.Promotion || !capture.Promotion {
		t.Fatalf("expected promotion moves, got %v", moves)
	}
	if capture.PieceCaptured != board.BlackKnight {
		t.Errorf("capture promotion takes %v, want black knight", capture.PieceCaptured)
	}

	s.MakeMove(capture)
	if got := s.PieceAt(sq(t, "b8")); got != board.WhiteQueen {
		t.Errorf("b8 = %v, want white queen", got)
	}
	s.UndoMove()
	if s.PieceAt(sq(t, "a7")) != board.WhitePawn || s.PieceAt(sq(t, "b8")) != board.BlackKnight {
		t.Errorf("undo promotion left\n%s", s.Board().String())
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// The e2 knight is pinned against the e1 king by the e8 rook.
	s := MustParseFEN("4r2k/8/8/8/8/8/4N3/4K3 w - - 0 1")
	for _, m := range s.ValidMoves() {
		if m.From == sq(t, "e2") {
			t.Errorf("pinned knight move %s generated", m.Notation())
		}
	}
}

func TestMovesNeverLeaveKingAttacked(t *testing.T) {
	s := MustParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	for _, m := range s.ValidMoves() {
		s.MakeMove(m)
		us := m.PieceMoved.Color()
		if s.SquareAttacked(s.KingSquare(us), us.Other()) {
			t.Errorf("%s leaves the king attacked", m.Notation())
		}
		s.UndoMove()
	}
}

func TestClone(t *testing.T) {
	s := New()
	play(t, s, "e2e4")
	c := s.Clone()
	play(t, c, "e7e5")

	if s.Ply() != 1 || c.Ply() != 2 {
		t.Errorf("plies = %d, %d; want 1, 2", s.Ply(), c.Ply())
	}
	if s.PieceAt(sq(t, "e5")) != board.NoPiece {
		t.Error("move on clone leaked into original")
	}
	c.UndoMove()
	c.UndoMove()
	if s.Ply() != 1 {
		t.Error("undo on clone changed original")
	}
}

func TestKeyTransposition(t *testing.T) {
	s := New()
	start := s.Key()
	play(t, s, "g1f3", "g8f6", "f3g1", "f6g8")
	if s.Key() != start {
		t.Error("same position reached by a knight tour hashes differently")
	}
	play(t, s, "e2e4")
	if s.Key() == start {
		t.Error("different positions share a key")
	}
}

func TestClocks(t *testing.T) {
	s := New()
	play(t, s, "g1f3", "g8f6")
	if s.HalfMoveClock() != 2 || s.FullMoveNumber() != 2 {
		t.Errorf("clocks = %d %d, want 2 2", s.HalfMoveClock(), s.FullMoveNumber())
	}
	play(t, s, "e2e4")
	if s.HalfMoveClock() != 0 {
		t.Errorf("pawn move did not reset half-move clock: %d", s.HalfMoveClock())
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/1NB1K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
	}
	for _, tc := range tests {
		if got := MustParseFEN(tc.fen).IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%s) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}
