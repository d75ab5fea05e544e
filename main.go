// ChessPlay - a chess game played in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/match"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	whiteFlag      = flag.String("white", "", "who plays White: human or computer")
	blackFlag      = flag.String("black", "", "who plays Black: human or computer")
	difficultyFlag = flag.String("difficulty", "", "computer strength: easy, medium or hard")
	workersFlag    = flag.Int("workers", 0, "search goroutines (0 = one per CPU)")
	fenFlag        = flag.String("fen", "", "start from this FEN instead of the initial position")
	dbFlag         = flag.String("db", "", "database directory (default: platform data directory)")
	verbosity      = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	log := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))

	store, err := openStorage()
	if err != nil {
		log.Error(err, "storage unavailable, results will not be saved")
	} else {
		defer store.Close()
	}

	prefs := loadPreferences(store, log)
	if err := applyFlags(prefs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var start *game.State
	if *fenFlag != "" {
		start, err = game.ParseFEN(*fenFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	opts := []engine.Option{
		engine.WithDifficulty(prefs.Difficulty),
		engine.WithLogger(log.WithName("engine")),
	}
	if prefs.Workers > 0 {
		opts = append(opts, engine.WithWorkers(prefs.Workers))
	}
	eng, err := engine.New(opts...)
	if err != nil {
		stdlog.Fatalf("could not create engine: %v", err)
	}
	defer eng.Close()

	cfg := match.Config{
		WhiteHuman: prefs.WhiteHuman,
		BlackHuman: prefs.BlackHuman,
		Engine:     eng,
		Difficulty: prefs.Difficulty,
		Logger:     log.WithName("match"),
		Start:      start,
	}
	if store != nil {
		cfg.Recorder = store
		welcome(store, prefs, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	play(ctx, match.NewSession(cfg), store)

	if store != nil {
		if err := store.SavePreferences(prefs); err != nil {
			log.Error(err, "failed to save preferences")
		}
	}
}

func openStorage() (*storage.Storage, error) {
	if *dbFlag != "" {
		return storage.Open(*dbFlag)
	}
	return storage.OpenDefault()
}

func loadPreferences(store *storage.Storage, log logr.Logger) *storage.Preferences {
	if store == nil {
		return storage.DefaultPreferences()
	}
	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Error(err, "failed to load preferences")
	}
	return prefs
}

// applyFlags overrides stored preferences with the flags given on the command line.
func applyFlags(prefs *storage.Preferences) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "white":
			prefs.WhiteHuman, err = parseSeat(*whiteFlag)
		case "black":
			prefs.BlackHuman, err = parseSeat(*blackFlag)
		case "difficulty":
			prefs.Difficulty, err = engine.ParseDifficulty(*difficultyFlag)
		case "workers":
			prefs.Workers = *workersFlag
		}
	})
	return err
}

func parseSeat(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "human", "h":
		return true, nil
	case "computer", "c", "engine":
		return false, nil
	}
	return false, fmt.Errorf("unknown player %q (want human or computer)", s)
}

func welcome(store *storage.Storage, prefs *storage.Preferences, log logr.Logger) {
	first, err := store.IsFirstLaunch()
	if err != nil {
		log.Error(err, "failed to read first launch marker")
		return
	}
	if first {
		fmt.Printf("Welcome to ChessPlay, %s!\n", prefs.Username)
		fmt.Println("Enter moves as e2e4 or Nf3, or one square at a time. Type help for commands.")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Error(err, "failed to mark first launch")
		}
		return
	}
	fmt.Printf("Welcome back, %s. Last played %s.\n", prefs.Username, humanize.Time(prefs.LastPlayed))
}

func play(ctx context.Context, s *match.Session, store *storage.Storage) {
	in := bufio.NewScanner(os.Stdin)
	show(s)

	for ctx.Err() == nil {
		if !s.GameOver() && !s.HumanTurn() {
			fmt.Println("Thinking...")
			m, err := s.ComputerMove(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					fmt.Println(err)
				}
				return
			}
			fmt.Printf("Computer plays %s\n", m.Notation())
			show(s)
			continue
		}

		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		if quit := handleInput(s, store, strings.TrimSpace(in.Text())); quit {
			return
		}
	}
}

// handleInput executes one line typed by the user and reports whether to quit.
func handleInput(s *match.Session, store *storage.Storage, line string) bool {
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "q", "exit":
		return true
	case "help", "?":
		fmt.Println("moves: e2e4, Nf3, or a square then another square")
		fmt.Println("commands: undo (z), reset (r), moves, log, fen, stats, quit")
		return false
	case "undo", "z":
		if s.Undo() {
			show(s)
		}
		return false
	case "reset", "r":
		s.Reset()
		show(s)
		return false
	case "moves":
		var list []string
		for _, m := range s.ValidMoves() {
			list = append(list, s.State().SAN(m))
		}
		fmt.Println(strings.Join(list, " "))
		return false
	case "log":
		fmt.Println(s.MoveLogText())
		return false
	case "fen":
		fmt.Println(s.State().ToFEN())
		return false
	case "stats":
		printStats(store)
		return false
	}

	// A lone square is a click when it picks up a piece or completes a
	// selection; otherwise "e4" is read as a pawn move.
	if sq, err := board.ParseSquare(line); err == nil && isClick(s, sq) {
		r := s.Click(sq)
		switch r.Action {
		case match.ClickSelected:
			fmt.Printf("Selected %s: %s\n", sq, squares(s.Highlights()))
		case match.ClickDeselected:
			fmt.Println("Selection cleared")
		case match.ClickRejected:
			fmt.Printf("Illegal move: %s. Selected %s\n", r.Reason, sq)
		case match.ClickMoved:
			show(s)
		case match.ClickIgnored:
			fmt.Println("Not your turn")
		}
		return false
	}

	m, err := s.State().ParseMove(line)
	if err != nil {
		m, err = s.State().ParseSAN(line)
	}
	if err == nil {
		_, err = s.TryMove(m.From, m.To)
	}
	if err != nil {
		fmt.Println(err)
		return false
	}
	show(s)
	return false
}

func isClick(s *match.Session, sq board.Square) bool {
	if s.Selected() != board.NoSquare {
		return true
	}
	p := s.State().PieceAt(sq)
	return p != board.NoPiece && p.Color() == s.State().SideToMove()
}

func show(s *match.Session) {
	fmt.Print(s.State().Board().String())
	if log := s.MoveLogText(); log != "" {
		fmt.Println(log)
	}
	status := s.Status()
	if !s.GameOver() && s.State().InCheck() {
		status += " (check)"
	}
	fmt.Println(status)
}

func squares(list []board.Square) string {
	if len(list) == 0 {
		return "no moves"
	}
	names := make([]string, len(list))
	for i, sq := range list {
		names[i] = sq.String()
	}
	return strings.Join(names, " ")
}

func printStats(store *storage.Storage) {
	if store == nil {
		fmt.Println("No statistics without storage")
		return
	}
	stats, err := store.LoadStats()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Games played: %s (White %d, Black %d, drawn %d)\n",
		humanize.Comma(int64(stats.GamesPlayed)), stats.WhiteWins, stats.BlackWins, stats.Draws)
	fmt.Printf("Against the computer: %d won, %d lost (%.1f%%)\n", stats.Wins, stats.Losses, stats.GetWinRate())
	fmt.Printf("Longest winning streak: %d, current: %d\n", stats.LongestWinStrk, stats.CurrentStreak)
	fmt.Printf("Moves played: %s in %s\n", humanize.Comma(int64(stats.TotalPlies)), stats.TotalPlayTime.Round(time.Second))

	results, err := store.ListResults()
	if err != nil || len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	fmt.Printf("Last game: %s by %s, %s\n", winnerText(last), last.Reason, humanize.Time(last.FinishedAt))
}

func winnerText(r storage.GameResult) string {
	switch r.Winner {
	case storage.WinnerWhite:
		return "White won"
	case storage.WinnerBlack:
		return "Black won"
	}
	return "drawn"
}
