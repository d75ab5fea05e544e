package engine

import (
	"context"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/game"
)

// Worker searches a share of the root moves on its own copy of the game.
// Workers share only the transposition table.
type Worker struct {
	id int

	// Per-worker position copy
	gs *game.State

	tt  *TranspositionTable // nil disables caching
	ctx context.Context

	nodes uint64
}

// WorkerResult is the best of the root moves a worker searched.
type WorkerResult struct {
	WorkerID int
	Move     board.Move
	Score    int
	Nodes    uint64
	Found    bool

	// order is the move's position in the engine's ordered root list,
	// used to break ties the same way a single worker would.
	order int
}

type rootMove struct {
	move  board.Move
	order int
}

// NewWorker creates a search worker. gs must not be shared with any other goroutine.
func NewWorker(ctx context.Context, id int, gs *game.State, tt *TranspositionTable) *Worker {
	return &Worker{id: id, gs: gs, tt: tt, ctx: ctx}
}

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// searchRoot runs a full-width alpha-beta search below each of the given root
// moves. Cancellation is checked between moves; a move whose subtree was cut
// short is not counted.
func (w *Worker) searchRoot(moves []rootMove, depth int) WorkerResult {
	res := WorkerResult{WorkerID: w.id}
	alpha := -Infinity

	for _, rm := range moves {
		if w.ctx.Err() != nil {
			break
		}
		w.gs.MakeMove(rm.move)
		score := -w.alphaBeta(depth-1, 1, -Infinity, -alpha)
		w.gs.UndoMove()
		if w.ctx.Err() != nil {
			break
		}

		if score > alpha || !res.Found {
			alpha = score
			res.Move = rm.move
			res.Score = score
			res.order = rm.order
			res.Found = true
		}
	}
	res.Nodes = w.Nodes()
	return res
}

// alphaBeta is a fail-soft negamax alpha-beta search returning the value of
// the current position for its side to move.
func (w *Worker) alphaBeta(depth, ply, alpha, beta int) int {
	w.nodes++
	if depth == 0 {
		return leafScore(w.gs, ply)
	}

	key := w.gs.Key()
	origAlpha := alpha

	var ttMove board.Move
	hasTTMove := false
	if w.tt != nil {
		if entry, ok := w.tt.Probe(key); ok {
			// Only entries searched to exactly this depth are trusted, so
			// cached and uncached searches agree.
			if entry.Depth == depth {
				score := AdjustScoreFromTT(entry.Score, ply)
				switch {
				case entry.Flag == TTExact:
					return score
				case entry.Flag == TTLowerBound && score >= beta:
					return score
				case entry.Flag == TTUpperBound && score <= alpha:
					return score
				}
			}
			ttMove, hasTTMove = entry.BestMove, entry.HasMove
		}
	}

	moves := w.gs.LegalMoves()
	if len(moves) == 0 {
		return terminalScore(w.gs, ply)
	}

	best := -Infinity
	var bestMove board.Move
	for i, m := range orderMoves(moves, ttMove, hasTTMove) {
		if i > 0 && w.ctx.Err() != nil {
			return best
		}
		w.gs.MakeMove(m)
		score := -w.alphaBeta(depth-1, ply+1, -beta, -alpha)
		w.gs.UndoMove()

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	if w.tt != nil && w.ctx.Err() == nil {
		flag := TTExact
		switch {
		case best <= origAlpha:
			flag = TTUpperBound
		case best >= beta:
			flag = TTLowerBound
		}
		w.tt.Store(key, depth, AdjustScoreToTT(best, ply), flag, bestMove, true)
	}
	return best
}
