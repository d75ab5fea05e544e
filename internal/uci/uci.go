// Package uci implements the Universal Chess Interface text protocol on top
// of the game state and the search engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	gs     *game.State
	depth  int
	log    logr.Logger

	in  io.Reader
	mu  sync.Mutex // serializes writes to out
	out io.Writer

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a UCI protocol handler reading commands from in and writing
// replies to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer, log logr.Logger) *UCI {
	return &UCI{
		engine: eng,
		gs:     game.New(),
		depth:  eng.Depth(),
		log:    log,
		in:     in,
		out:    out,
	}
}

// Run reads commands until "quit" or end of input. A search still running at
// end of input is allowed to finish.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.printf("%s", u.gs.String())
		case "perft":
			u.handlePerft(args)
		default:
			u.log.V(1).Info("unknown command", "command", cmd)
		}
	}

	u.wait()
	return scanner.Err()
}

func (u *UCI) println(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name ChessCore")
	u.println("id author ChessPlay Team")
	u.println("")
	u.printf("option name Depth type spin default %d min 1 max %d\n", u.depth, engine.MaxPly)
	u.println("option name Clear Hash type button")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.gs = game.New()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i + 1
			break
		}
	}
	setupEnd := min(moveStart, len(args))
	if setupEnd > 0 && args[setupEnd-1] == "moves" {
		setupEnd--
	}

	var gs *game.State
	switch args[0] {
	case "startpos":
		gs = game.New()
	case "fen":
		var err error
		gs, err = game.ParseFEN(strings.Join(args[1:setupEnd], " "))
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
	default:
		return
	}

	for _, moveStr := range args[moveStart:] {
		m, err := gs.ParseMove(moveStr)
		if err != nil {
			u.printf("info string Invalid move: %v\n", err)
			break
		}
		gs.MakeMove(m)
	}
	u.gs = gs
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
}

// parseGoOptions parses "go" command arguments. Unsupported limits are ignored.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		}
	}

	return opts
}

// handleGo starts a search in the background. The best move is printed when
// it completes or is stopped.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	opts := parseGoOptions(args)

	depth := u.depth
	if opts.Depth > 0 {
		depth = opts.Depth
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if opts.MoveTime > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), opts.MoveTime)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	gs := u.gs.Clone()
	moves := gs.ValidMoves()

	go func() {
		defer close(u.searchDone)
		defer cancel()

		res, err := u.engine.SearchDepth(ctx, gs, moves, depth)
		if err != nil {
			u.log.V(1).Info("search stopped early", "reason", err.Error())
		}
		if !res.Found {
			u.println("bestmove 0000")
			return
		}

		u.sendInfo(res)
		u.printf("bestmove %s\n", res.Move.UCI())
	}()
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(res engine.Result) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", res.Depth))

	switch {
	case engine.IsMateScore(res.Score) && res.Score > 0:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.CheckmateScore-res.Score+1)/2))
	case engine.IsMateScore(res.Score):
		parts = append(parts, fmt.Sprintf("score mate %d", -(engine.CheckmateScore+res.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", res.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", res.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", res.Elapsed.Milliseconds()))
	if res.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(res.Nodes)/res.Elapsed.Seconds())))
	}
	parts = append(parts, "pv "+res.Move.UCI())

	u.printf("info %s\n", strings.Join(parts, " "))
	u.printf("info string searched %s nodes in %s\n", humanize.Comma(int64(res.Nodes)), res.Elapsed.Round(time.Millisecond))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wait()
}

func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
		u.cancel = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string

	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}

	switch strings.ToLower(strings.Join(name, " ")) {
	case "depth":
		depth, err := strconv.Atoi(strings.Join(value, " "))
		if err != nil || depth < 1 || depth > engine.MaxPly {
			u.printf("info string Invalid depth: %s\n", strings.Join(value, " "))
			return
		}
		u.depth = depth
	case "clear hash":
		u.handleStop()
		u.engine.Clear()
	}
}

// handlePerft runs a perft test and prints the per-move breakdown.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	divide := u.gs.Divide(depth)
	elapsed := time.Since(start)

	var nodes int64
	for _, m := range u.gs.LegalMoves() {
		n := divide[m.UCI()]
		nodes += n
		u.printf("%s: %d\n", m.UCI(), n)
	}

	u.printf("\nNodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %s\n", humanize.Comma(int64(nps)))
	}
}
