package engine

import (
	"math/rand/v2"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/game"
)

// DefaultDepth is the fixed lookahead, in plies, of the FindBestMove functions.
const DefaultDepth = 2

// FindRandomMove picks a uniformly random move. It returns false for an empty list.
func FindRandomMove(moves []board.Move) (board.Move, bool) {
	if len(moves) == 0 {
		return board.Move{}, false
	}
	return moves[rand.IntN(len(moves))], true
}

// FindRandomMoveWith is FindRandomMove drawing from r, for reproducible games.
func FindRandomMoveWith(r *rand.Rand, moves []board.Move) (board.Move, bool) {
	if len(moves) == 0 {
		return board.Move{}, false
	}
	return moves[r.IntN(len(moves))], true
}

// FindBestMoveMinMax searches DefaultDepth plies with plain minimax.
// moves must be the legal moves of gs. gs is returned to its original state.
// The result is found whenever moves is non-empty; when every move scores the
// same, the first one in moves is returned. Callers wanting a different
// fallback should check for an empty list and use FindRandomMove.
func FindBestMoveMinMax(gs *game.State, moves []board.Move) (board.Move, bool) {
	r := MinMax(gs, moves, DefaultDepth)
	return r.Move, r.Found
}

// FindBestMoveNegaMax is FindBestMoveMinMax expressed as negamax.
func FindBestMoveNegaMax(gs *game.State, moves []board.Move) (board.Move, bool) {
	r := NegaMax(gs, moves, DefaultDepth)
	return r.Move, r.Found
}

// FindBestMoveNegaMaxAlphaBeta is FindBestMoveNegaMax with alpha-beta pruning.
// It returns a move of the same score while visiting fewer nodes.
func FindBestMoveNegaMaxAlphaBeta(gs *game.State, moves []board.Move) (board.Move, bool) {
	r := NegaMaxAlphaBeta(gs, moves, DefaultDepth)
	return r.Move, r.Found
}

// MinMax searches depth plies with White maximizing and Black minimizing.
// The Result score is reported from the side to move's perspective, like the
// other searches, so the three can be compared directly.
func MinMax(gs *game.State, moves []board.Move, depth int) Result {
	res := Result{Depth: depth}
	if len(moves) == 0 || depth < 1 {
		return res
	}

	white := gs.WhiteToMove()
	best := Infinity
	if white {
		best = -Infinity
	}

	for _, m := range moves {
		gs.MakeMove(m)
		score := minMax(gs, depth-1, 1, &res.Nodes)
		gs.UndoMove()

		if (white && score > best) || (!white && score < best) || !res.Found {
			best = score
			res.Move = m
			res.Found = true
		}
	}

	res.Score = best
	if !white {
		res.Score = -best
	}
	return res
}

// minMax returns the White-perspective value of gs searched depth plies deep.
func minMax(gs *game.State, depth, ply int, nodes *uint64) int {
	*nodes++
	if depth == 0 {
		return leafScore(gs, ply) * colorSign(gs.SideToMove())
	}

	moves := gs.LegalMoves()
	white := gs.WhiteToMove()
	if len(moves) == 0 {
		return terminalScore(gs, ply) * colorSign(gs.SideToMove())
	}

	if white {
		best := -Infinity
		for _, m := range moves {
			gs.MakeMove(m)
			best = max(best, minMax(gs, depth-1, ply+1, nodes))
			gs.UndoMove()
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		gs.MakeMove(m)
		best = min(best, minMax(gs, depth-1, ply+1, nodes))
		gs.UndoMove()
	}
	return best
}

// NegaMax searches depth plies, scoring every node for its side to move.
func NegaMax(gs *game.State, moves []board.Move, depth int) Result {
	res := Result{Depth: depth}
	if len(moves) == 0 || depth < 1 {
		return res
	}

	best := -Infinity
	for _, m := range moves {
		gs.MakeMove(m)
		score := -negaMax(gs, depth-1, 1, &res.Nodes)
		gs.UndoMove()

		if score > best || !res.Found {
			best = score
			res.Move = m
			res.Found = true
		}
	}
	res.Score = best
	return res
}

func negaMax(gs *game.State, depth, ply int, nodes *uint64) int {
	*nodes++
	if depth == 0 {
		return leafScore(gs, ply)
	}

	moves := gs.LegalMoves()
	if len(moves) == 0 {
		return terminalScore(gs, ply)
	}

	best := -Infinity
	for _, m := range moves {
		gs.MakeMove(m)
		best = max(best, -negaMax(gs, depth-1, ply+1, nodes))
		gs.UndoMove()
	}
	return best
}

// NegaMaxAlphaBeta is NegaMax with alpha-beta pruning and capture-first
// ordering. The root score equals that of NegaMax at the same depth.
func NegaMaxAlphaBeta(gs *game.State, moves []board.Move, depth int) Result {
	res := Result{Depth: depth}
	if len(moves) == 0 || depth < 1 {
		return res
	}

	ordered := orderMoves(moves, board.Move{}, false)
	alpha := -Infinity
	for _, m := range ordered {
		gs.MakeMove(m)
		score := -negaMaxAlphaBeta(gs, depth-1, 1, -Infinity, -alpha, &res.Nodes)
		gs.UndoMove()

		if score > alpha || !res.Found {
			alpha = score
			res.Move = m
			res.Found = true
		}
	}
	res.Score = alpha
	return res
}

func negaMaxAlphaBeta(gs *game.State, depth, ply, alpha, beta int, nodes *uint64) int {
	*nodes++
	if depth == 0 {
		return leafScore(gs, ply)
	}

	moves := gs.LegalMoves()
	if len(moves) == 0 {
		return terminalScore(gs, ply)
	}

	best := -Infinity
	for _, m := range orderMoves(moves, board.Move{}, false) {
		gs.MakeMove(m)
		score := -negaMaxAlphaBeta(gs, depth-1, ply+1, -beta, -alpha, nodes)
		gs.UndoMove()

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// leafScore scores a depth-zero node for its side to move. A mated or
// stalemated leaf gets the terminal score instead of the static evaluation.
func leafScore(gs *game.State, ply int) int {
	if !gs.HasLegalMoves() {
		return terminalScore(gs, ply)
	}
	return evaluatePosition(gs) * colorSign(gs.SideToMove())
}

// terminalScore scores a node without legal moves for its side to move.
// Mates found closer to the root score higher for the winner.
func terminalScore(gs *game.State, ply int) int {
	if gs.InCheck() {
		return -CheckmateScore + ply
	}
	return StalemateScore
}
