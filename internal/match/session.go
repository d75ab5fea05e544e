// Package match drives a game between two seats, each held by a human or the
// computer, independently of how the board is presented.
package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	// ErrIllegalMove is returned when a move is not among the valid moves.
	ErrIllegalMove = errors.New("illegal move")

	// ErrGameOver is returned when a move is requested after checkmate or stalemate.
	ErrGameOver = errors.New("game is over")

	// ErrNotHumanTurn is returned when a human move is requested on the computer's turn.
	ErrNotHumanTurn = errors.New("not a human turn")

	// ErrNotComputerTurn is returned when ComputerMove is called on a human turn.
	ErrNotComputerTurn = errors.New("not the computer's turn")
)

// Recorder receives finished games.
type Recorder interface {
	RecordGame(result storage.GameResult) (string, error)
}

// Config describes the seats and collaborators of a session.
type Config struct {
	WhiteHuman bool
	BlackHuman bool

	// Engine plays the computer seats. When nil the computer plays random moves.
	Engine *engine.Engine
	// Difficulty is recorded with finished games.
	Difficulty engine.Difficulty

	// Recorder, when set, is told about every finished game once.
	Recorder Recorder
	Logger   logr.Logger

	// Start is the initial position. Nil means the standard starting position.
	// Reset returns to a copy of it.
	Start *game.State
}

// ClickAction is what a Click did.
type ClickAction int

const (
	ClickIgnored    ClickAction = iota // game over or computer's turn
	ClickSelected                      // first click recorded
	ClickDeselected                    // same square clicked twice
	ClickMoved                         // second click completed a valid move
	ClickRejected                      // second click did not form a valid move; it is the new first click
)

// ClickResult reports the outcome of a Click.
type ClickResult struct {
	Action ClickAction
	Move   board.Move        // the move played, for ClickMoved
	Reason InvalidMoveReason // why the move was refused, for ClickRejected
}

// Session is one game in progress. It is not safe for concurrent use.
type Session struct {
	cfg   Config
	log   logr.Logger
	start *game.State

	gs       *game.State
	valid    []board.Move
	sanLog   []string
	selected board.Square

	startedAt time.Time
	reported  bool
	resultID  string
}

// NewSession starts a game.
func NewSession(cfg Config) *Session {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	start := cfg.Start
	if start == nil {
		start = game.New()
	}

	s := &Session{
		cfg:   cfg,
		log:   log,
		start: start.Clone(),
	}
	s.Reset()
	return s
}

// Reset returns to the starting position and forgets the selection.
func (s *Session) Reset() {
	s.gs = s.start.Clone()
	s.sanLog = nil
	s.selected = board.NoSquare
	s.startedAt = time.Now()
	s.reported = false
	s.resultID = ""
	s.refresh()
}

// State returns the game state for read-only use.
func (s *Session) State() *game.State {
	return s.gs
}

// ValidMoves returns the legal moves in the current position.
func (s *Session) ValidMoves() []board.Move {
	return append([]board.Move(nil), s.valid...)
}

// HumanTurn reports whether the side to move is played by a human.
func (s *Session) HumanTurn() bool {
	if s.gs.WhiteToMove() {
		return s.cfg.WhiteHuman
	}
	return s.cfg.BlackHuman
}

// GameOver reports whether the side to move is checkmated or stalemated.
func (s *Session) GameOver() bool {
	return s.gs.CheckMate() || s.gs.Stalemate()
}

// Selected returns the pending first click, or NoSquare.
func (s *Session) Selected() board.Square {
	return s.selected
}

// ResultID returns the id the recorder assigned to the finished game, if any.
func (s *Session) ResultID() string {
	return s.resultID
}

// Click handles one square selection of the two-click protocol.
func (s *Session) Click(sq board.Square) ClickResult {
	if s.GameOver() || !s.HumanTurn() || !sq.IsValid() {
		return ClickResult{Action: ClickIgnored}
	}

	if s.selected == sq {
		s.selected = board.NoSquare
		return ClickResult{Action: ClickDeselected}
	}
	if s.selected == board.NoSquare {
		s.selected = sq
		return ClickResult{Action: ClickSelected}
	}

	from := s.selected
	m, err := s.TryMove(from, sq)
	if err != nil {
		s.selected = sq
		return ClickResult{Action: ClickRejected, Reason: s.invalidMoveReason(from, sq)}
	}
	return ClickResult{Action: ClickMoved, Move: m}
}

// Highlights returns the destinations of the valid moves from the selected
// square. It is empty unless a piece of the side to move is selected.
func (s *Session) Highlights() []board.Square {
	if s.selected == board.NoSquare {
		return nil
	}
	p := s.gs.PieceAt(s.selected)
	if p == board.NoPiece || p.Color() != s.gs.SideToMove() {
		return nil
	}

	var targets []board.Square
	for _, m := range s.valid {
		if m.From == s.selected {
			targets = append(targets, m.To)
		}
	}
	return targets
}

// TryMove plays the valid move from one square to another for a human seat.
// The generated move, with its special-rule flags, is the one applied.
func (s *Session) TryMove(from, to board.Square) (board.Move, error) {
	if s.GameOver() {
		return board.Move{}, ErrGameOver
	}
	if !s.HumanTurn() {
		return board.Move{}, ErrNotHumanTurn
	}

	b := s.gs.Board()
	want := board.NewMove(from, to, &b)
	for _, m := range s.valid {
		if m.Equal(want) {
			s.play(m)
			return m, nil
		}
	}
	return board.Move{}, fmt.Errorf("%w: %s (%s)", ErrIllegalMove, want.Notation(), s.invalidMoveReason(from, to))
}

// ComputerMove chooses and plays a move for a computer seat.
//
// If ctx expires before the search completes, the best move found so far is
// played. If ctx is cancelled, nothing is played and the error is returned.
func (s *Session) ComputerMove(ctx context.Context) (board.Move, error) {
	if s.GameOver() {
		return board.Move{}, ErrGameOver
	}
	if s.HumanTurn() {
		return board.Move{}, ErrNotComputerTurn
	}

	var (
		m  board.Move
		ok bool
	)
	if s.cfg.Engine != nil {
		res, err := s.cfg.Engine.Search(ctx, s.gs, s.valid)
		if errors.Is(err, context.Canceled) {
			return board.Move{}, err
		}
		if err != nil {
			s.log.Info("search cut short", "reason", err.Error())
		}
		m, ok = res.Move, res.Found
		if ok {
			s.log.V(1).Info("computer move", "move", m.UCI(), "eval", engine.ScoreToString(res.Score), "nodes", res.Nodes)
		}
	}
	if !ok {
		m, ok = engine.FindRandomMove(s.valid)
	}
	if !ok {
		return board.Move{}, ErrGameOver
	}

	s.play(m)
	return m, nil
}

// Undo takes back the last ply, reopening a finished game.
func (s *Session) Undo() bool {
	if s.gs.Ply() == 0 || len(s.sanLog) == 0 {
		return false
	}
	s.gs.UndoMove()
	s.sanLog = s.sanLog[:len(s.sanLog)-1]
	s.selected = board.NoSquare
	s.refresh()
	return true
}

// Status returns the end-of-game text, or whose turn it is.
func (s *Session) Status() string {
	switch {
	case s.gs.Stalemate():
		return "Stalemate"
	case s.gs.CheckMate() && s.gs.WhiteToMove():
		return "Black wins by checkmate"
	case s.gs.CheckMate():
		return "White wins by checkmate"
	case s.gs.WhiteToMove():
		return "White to move"
	default:
		return "Black to move"
	}
}

// MoveLogText returns the moves in numbered algebraic notation, e.g. "1. e4 e5 2. Nf3 ".
func (s *Session) MoveLogText() string {
	var sb strings.Builder
	num := s.start.FullMoveNumber()
	white := s.start.WhiteToMove()

	for i, san := range s.sanLog {
		switch {
		case white:
			fmt.Fprintf(&sb, "%d. ", num)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", num)
		}
		sb.WriteString(san)
		sb.WriteByte(' ')

		if !white {
			num++
		}
		white = !white
	}
	return sb.String()
}

// play applies a valid move and recomputes the valid moves.
func (s *Session) play(m board.Move) {
	s.sanLog = append(s.sanLog, s.gs.SAN(m))
	s.gs.MakeMove(m)
	s.selected = board.NoSquare
	s.refresh()

	s.log.V(1).Info("move played", "move", m.UCI(), "ply", s.gs.Ply(), "fen", s.gs.ToFEN())
}

// refresh recomputes the valid moves and terminal flags, and reports a
// finished game.
func (s *Session) refresh() {
	s.valid = s.gs.ValidMoves()
	if !s.GameOver() {
		return
	}

	s.log.Info("game over", "status", s.Status(), "plies", s.gs.Ply())
	if s.reported || s.cfg.Recorder == nil {
		return
	}
	s.reported = true

	id, err := s.cfg.Recorder.RecordGame(s.result())
	if err != nil {
		s.log.Error(err, "failed to record game")
		return
	}
	s.resultID = id
}

func (s *Session) result() storage.GameResult {
	r := storage.GameResult{
		Reason:     "stalemate",
		Winner:     storage.WinnerNone,
		Plies:      s.gs.Ply(),
		WhiteHuman: s.cfg.WhiteHuman,
		BlackHuman: s.cfg.BlackHuman,
		Difficulty: s.cfg.Difficulty,
		Duration:   time.Since(s.startedAt),
		FinishedAt: time.Now(),
	}
	if s.gs.CheckMate() {
		r.Reason = "checkmate"
		r.Winner = storage.WinnerWhite
		if s.gs.WhiteToMove() {
			r.Winner = storage.WinnerBlack
		}
	}
	return r
}
