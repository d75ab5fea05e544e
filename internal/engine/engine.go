package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/game"
)

// Result is the outcome of one search.
type Result struct {
	Move    board.Move
	Score   int // from the point of view of the side to move at the root
	Nodes   uint64
	Depth   int
	Found   bool
	Elapsed time.Duration
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultyDepth maps difficulty to search depth.
var DifficultyDepth = map[Difficulty]int{
	Easy:   2,
	Medium: 3,
	Hard:   4,
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

const defaultCacheSize = 1 << 18

// Engine is the configurable computer player. It is safe to call Search from
// several goroutines as long as each passes its own game.State.
type Engine struct {
	depth     int
	workers   int
	cacheSize int64
	log       logr.Logger

	tt *TranspositionTable
}

// Option configures an Engine.
type Option func(*Engine)

// WithDepth sets the search depth in plies. Values below 1 are raised to 1.
func WithDepth(depth int) Option {
	return func(e *Engine) {
		e.depth = max(depth, 1)
	}
}

// WithDifficulty sets the search depth from a difficulty preset.
func WithDifficulty(d Difficulty) Option {
	return func(e *Engine) {
		if depth, ok := DifficultyDepth[d]; ok {
			e.depth = depth
		}
	}
}

// WithWorkers sets the number of goroutines splitting the root moves.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithCacheSize sets the transposition cache capacity in positions.
// Zero disables the cache.
func WithCacheSize(entries int64) Option {
	return func(e *Engine) {
		e.cacheSize = max(entries, 0)
	}
}

// New creates an engine. Without options it searches DefaultDepth plies on
// every CPU with a transposition cache.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		depth:     DefaultDepth,
		workers:   runtime.GOMAXPROCS(0),
		cacheSize: defaultCacheSize,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cacheSize > 0 {
		tt, err := NewTranspositionTable(e.cacheSize)
		if err != nil {
			return nil, err
		}
		e.tt = tt
	}
	return e, nil
}

// Depth returns the configured search depth.
func (e *Engine) Depth() int {
	return e.depth
}

// Workers returns the configured number of search goroutines.
func (e *Engine) Workers() int {
	return e.workers
}

// Search returns the best of moves, which must be the legal moves of gs.
//
// The root moves are ordered and dealt round-robin to the workers, each of
// which searches on its own clone of gs; gs itself is only read. If ctx is
// cancelled the best fully searched move is returned together with ctx.Err(),
// falling back to the first ordered move when none finished.
func (e *Engine) Search(ctx context.Context, gs *game.State, moves []board.Move) (Result, error) {
	return e.SearchDepth(ctx, gs, moves, e.depth)
}

// SearchDepth is Search with a depth other than the configured one.
func (e *Engine) SearchDepth(ctx context.Context, gs *game.State, moves []board.Move, depth int) (Result, error) {
	depth = max(depth, 1)
	start := time.Now()
	res := Result{Depth: depth}
	if len(moves) == 0 {
		return res, nil
	}

	var ttMove board.Move
	hasTTMove := false
	if e.tt != nil {
		if entry, ok := e.tt.Probe(gs.Key()); ok {
			ttMove, hasTTMove = entry.BestMove, entry.HasMove
		}
	}
	ordered := orderMoves(moves, ttMove, hasTTMove)

	n := min(e.workers, len(ordered))
	shares := make([][]rootMove, n)
	for i, m := range ordered {
		shares[i%n] = append(shares[i%n], rootMove{move: m, order: i})
	}

	results := make([]WorkerResult, n)
	var g errgroup.Group
	for i := range shares {
		w := NewWorker(ctx, i, gs.Clone(), e.tt)
		g.Go(func() error {
			results[i] = w.searchRoot(shares[i], depth)
			return ctx.Err()
		})
	}
	// Workers never fail on their own; a non-nil error means ctx ended
	// before every share was searched.
	searchErr := g.Wait()

	var best WorkerResult
	for _, r := range results {
		res.Nodes += r.Nodes
		if !r.Found {
			continue
		}
		if !best.Found || r.Score > best.Score || (r.Score == best.Score && r.order < best.order) {
			best = r
		}
	}

	if best.Found {
		res.Move, res.Score, res.Found = best.Move, best.Score, true
	} else {
		res.Move, res.Found = ordered[0], true
	}
	res.Elapsed = time.Since(start)

	if e.tt != nil && best.Found && searchErr == nil {
		e.tt.Store(gs.Key(), depth, AdjustScoreToTT(res.Score, 0), TTExact, res.Move, true)
	}

	if e.tt != nil && e.log.V(2).Enabled() {
		e.log.V(2).Info("transposition cache", "hitRate", fmt.Sprintf("%.1f%%", e.tt.HitRate()))
	}
	e.log.V(1).Info("search finished",
		"move", res.Move.UCI(),
		"score", res.Score,
		"depth", res.Depth,
		"nodes", res.Nodes,
		"workers", n,
		"elapsed", res.Elapsed)

	if searchErr != nil {
		e.log.Info("search cancelled", "move", res.Move.UCI(), "reason", searchErr.Error())
		return res, searchErr
	}
	return res, nil
}

// Clear empties the transposition cache.
func (e *Engine) Clear() {
	if e.tt != nil {
		e.tt.Clear()
	}
}

// Close releases the transposition cache.
func (e *Engine) Close() {
	if e.tt != nil {
		e.tt.Close()
	}
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > CheckmateScore-MaxPly {
		return fmt.Sprintf("Mate in %d", (CheckmateScore-score+1)/2)
	}
	if score < -CheckmateScore+MaxPly {
		return fmt.Sprintf("Mated in %d", (CheckmateScore+score+1)/2)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
