package match

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

type fakeRecorder struct {
	results []storage.GameResult
}

func (f *fakeRecorder) RecordGame(r storage.GameResult) (string, error) {
	f.results = append(f.results, r)
	return "game-1", nil
}

func sq(t *testing.T, s string) board.Square {
	t.Helper()
	square, err := board.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return square
}

func move(t *testing.T, s *Session, uci ...string) {
	t.Helper()
	for _, u := range uci {
		if _, err := s.TryMove(sq(t, u[:2]), sq(t, u[2:4])); err != nil {
			t.Fatalf("TryMove(%s): %v", u, err)
		}
	}
}

func humans() Config {
	return Config{WhiteHuman: true, BlackHuman: true}
}

func TestTwoClickMove(t *testing.T) {
	s := NewSession(humans())

	if r := s.Click(sq(t, "e2")); r.Action != ClickSelected {
		t.Fatalf("first click = %v, want ClickSelected", r.Action)
	}

	targets := s.Highlights()
	if len(targets) != 2 {
		t.Errorf("Highlights() = %v, want e3 and e4", targets)
	}

	r := s.Click(sq(t, "e4"))
	if r.Action != ClickMoved || r.Move.Notation() != "e2e4" {
		t.Fatalf("second click = %+v, want e2e4 played", r)
	}
	if s.State().WhiteToMove() {
		t.Error("White still to move after e2e4")
	}
	if s.Selected() != board.NoSquare {
		t.Error("selection kept after a move")
	}
	if len(s.ValidMoves()) != 20 {
		t.Errorf("Black has %d valid moves, want 20", len(s.ValidMoves()))
	}
}

func TestClickSameSquareDeselects(t *testing.T) {
	s := NewSession(humans())

	s.Click(sq(t, "g1"))
	if r := s.Click(sq(t, "g1")); r.Action != ClickDeselected {
		t.Errorf("second click on g1 = %v, want ClickDeselected", r.Action)
	}
	if s.Selected() != board.NoSquare || s.Highlights() != nil {
		t.Error("selection not cleared")
	}
}

func TestClickRejectedBecomesFirstClick(t *testing.T) {
	s := NewSession(humans())

	s.Click(sq(t, "e2"))
	r := s.Click(sq(t, "d2"))
	if r.Action != ClickRejected || r.Reason != ReasonBlockedByOwnPiece {
		t.Fatalf("e2 then d2 = %+v, want rejected as blocked", r)
	}
	if s.Selected() != sq(t, "d2") {
		t.Fatalf("Selected() = %s, want d2", s.Selected())
	}

	r = s.Click(sq(t, "d4"))
	if r.Action != ClickMoved || r.Move.Notation() != "d2d4" {
		t.Errorf("d2 then d4 = %+v, want d2d4 played", r)
	}
}

func TestRejectionReasons(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
		want     InvalidMoveReason
	}{
		{"empty square", game.StartFEN, "e4", "e5", ReasonNoPiece},
		{"opponent piece", game.StartFEN, "e7", "e5", ReasonNotYourPiece},
		{"bad geometry", game.StartFEN, "e2", "e5", ReasonInvalidPieceMovement},
		{"pinned bishop", "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1", "e2", "d3", ReasonWouldLeaveKingInCheck},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := humans()
			cfg.Start = game.MustParseFEN(tc.fen)
			s := NewSession(cfg)

			_, err := s.TryMove(sq(t, tc.from), sq(t, tc.to))
			if !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("TryMove err = %v, want ErrIllegalMove", err)
			}
			if got := s.invalidMoveReason(sq(t, tc.from), sq(t, tc.to)); got != tc.want {
				t.Errorf("reason = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	rec := &fakeRecorder{}
	cfg := humans()
	cfg.Recorder = rec
	cfg.Difficulty = engine.Hard
	s := NewSession(cfg)

	move(t, s, "f2f3", "e7e5", "g2g4", "d8h4")

	if !s.GameOver() {
		t.Fatal("game not over after Qh4#")
	}
	if got := s.Status(); got != "Black wins by checkmate" {
		t.Errorf("Status() = %q", got)
	}
	if got := s.MoveLogText(); got != "1. f3 e5 2. g4 Qh4# " {
		t.Errorf("MoveLogText() = %q", got)
	}
	if _, err := s.TryMove(sq(t, "e2"), sq(t, "e4")); !errors.Is(err, ErrGameOver) {
		t.Errorf("TryMove after mate err = %v, want ErrGameOver", err)
	}
	if r := s.Click(sq(t, "e2")); r.Action != ClickIgnored {
		t.Errorf("Click after mate = %v, want ClickIgnored", r.Action)
	}

	if len(rec.results) != 1 {
		t.Fatalf("recorder called %d times, want 1", len(rec.results))
	}
	res := rec.results[0]
	if res.Winner != storage.WinnerBlack || res.Reason != "checkmate" || res.Plies != 4 || res.Difficulty != engine.Hard {
		t.Errorf("recorded %+v", res)
	}
	if s.ResultID() != "game-1" {
		t.Errorf("ResultID() = %q", s.ResultID())
	}

	// Taking back the mate reopens the game; replaying it is not reported twice.
	if !s.Undo() {
		t.Fatal("Undo() = false")
	}
	if s.GameOver() || s.Status() != "Black to move" {
		t.Errorf("after undo: over %v, status %q", s.GameOver(), s.Status())
	}
	move(t, s, "d8h4")
	if !s.GameOver() || len(rec.results) != 1 {
		t.Errorf("after replay: over %v, recorded %d", s.GameOver(), len(rec.results))
	}
}

func TestStalemateAtStart(t *testing.T) {
	rec := &fakeRecorder{}
	cfg := humans()
	cfg.Recorder = rec
	cfg.Start = game.MustParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s := NewSession(cfg)

	if s.Status() != "Stalemate" {
		t.Errorf("Status() = %q, want Stalemate", s.Status())
	}
	if len(rec.results) != 1 || !rec.results[0].Draw() || rec.results[0].Reason != "stalemate" {
		t.Errorf("recorded %+v", rec.results)
	}
}

func TestUndoAndReset(t *testing.T) {
	s := NewSession(humans())

	if s.Undo() {
		t.Error("Undo() on a fresh game returned true")
	}

	move(t, s, "e2e4", "e7e5", "g1f3")
	if got := s.MoveLogText(); got != "1. e4 e5 2. Nf3 " {
		t.Errorf("MoveLogText() = %q", got)
	}

	s.Undo()
	if got := s.MoveLogText(); got != "1. e4 e5 " {
		t.Errorf("MoveLogText() after undo = %q", got)
	}
	if !s.State().WhiteToMove() || len(s.ValidMoves()) != 29 {
		t.Errorf("after undo: white %v, %d moves", s.State().WhiteToMove(), len(s.ValidMoves()))
	}

	s.Click(sq(t, "g1"))
	s.Reset()
	if s.State().Ply() != 0 || s.MoveLogText() != "" || s.Selected() != board.NoSquare {
		t.Error("Reset() left state behind")
	}
	if s.State().ToFEN() != game.StartFEN {
		t.Errorf("FEN after reset = %s", s.State().ToFEN())
	}
}

func TestMoveLogFromBlackToMove(t *testing.T) {
	cfg := humans()
	cfg.Start = game.MustParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	s := NewSession(cfg)

	move(t, s, "e7e5", "g1f3")
	if got := s.MoveLogText(); got != "1... e5 2. Nf3 " {
		t.Errorf("MoveLogText() = %q", got)
	}

	s.Reset()
	if s.State().WhiteToMove() {
		t.Error("Reset() did not return to the configured start")
	}
}

func TestComputerTurn(t *testing.T) {
	s := NewSession(Config{WhiteHuman: true})

	if _, err := s.ComputerMove(context.Background()); !errors.Is(err, ErrNotComputerTurn) {
		t.Errorf("ComputerMove on human turn err = %v", err)
	}

	move(t, s, "e2e4")
	if s.HumanTurn() {
		t.Fatal("HumanTurn() true for the computer seat")
	}
	if _, err := s.TryMove(sq(t, "e7"), sq(t, "e5")); !errors.Is(err, ErrNotHumanTurn) {
		t.Errorf("TryMove on computer turn err = %v", err)
	}
	if r := s.Click(sq(t, "e7")); r.Action != ClickIgnored {
		t.Errorf("Click on computer turn = %v", r.Action)
	}

	legal := s.ValidMoves()
	m, err := s.ComputerMove(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, v := range legal {
		if v.Equal(m) {
			found = true
		}
	}
	if !found {
		t.Errorf("random computer move %s not legal", m.Notation())
	}
	if !s.HumanTurn() || s.State().Ply() != 2 {
		t.Errorf("after computer move: human turn %v, ply %d", s.HumanTurn(), s.State().Ply())
	}
}

func TestComputerFindsMate(t *testing.T) {
	eng, err := engine.New(engine.WithDepth(2), engine.WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	dir := t.TempDir()
	store, err := storage.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := NewSession(Config{
		BlackHuman: true,
		Engine:     eng,
		Difficulty: engine.Easy,
		Recorder:   store,
		Start:      game.MustParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"),
	})

	m, err := s.ComputerMove(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m.Notation() != "a1a8" {
		t.Errorf("computer played %s, want a1a8", m.Notation())
	}
	if s.Status() != "White wins by checkmate" {
		t.Errorf("Status() = %q", s.Status())
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 1 || stats.WhiteWins != 1 || stats.Losses != 1 {
		t.Errorf("stats = %+v", stats)
	}
	saved, err := store.LoadResult(s.ResultID())
	if err != nil {
		t.Fatal(err)
	}
	if saved.Winner != storage.WinnerWhite || saved.Plies != 1 {
		t.Errorf("saved result = %+v", saved)
	}
}

func TestComputerMoveCancelled(t *testing.T) {
	eng, err := engine.New(engine.WithDepth(5))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	s := NewSession(Config{Engine: eng})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ComputerMove(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s.State().Ply() != 0 {
		t.Error("a move was played after cancellation")
	}
}
