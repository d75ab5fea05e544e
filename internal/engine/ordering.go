package engine

import (
	"slices"

	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
	PromotionScore  = GoodCaptureBase - 1000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// scoreMove returns the ordering score for a single move.
func scoreMove(m board.Move, ttMove board.Move, hasTT bool) int {
	if hasTT && m.Equal(ttMove) {
		return TTMoveScore
	}

	if m.IsCapture() {
		victim, attacker := m.PieceCaptured.Type(), m.PieceMoved.Type()
		if victim >= board.King || attacker > board.King {
			return GoodCaptureBase
		}
		score := GoodCaptureBase + mvvLva[victim][attacker]*1000
		if m.Promotion {
			score += PromotionScore
		}
		return score
	}

	if m.Promotion {
		return PromotionScore
	}
	return 0
}

// orderMoves returns a copy of moves sorted best-first: the cached best move,
// then captures by MVV-LVA, then promotions, then quiet moves in generation
// order.
func orderMoves(moves []board.Move, ttMove board.Move, hasTT bool) []board.Move {
	type scored struct {
		move  board.Move
		score int
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{m, scoreMove(m, ttMove, hasTT)}
	}
	slices.SortStableFunc(list, func(a, b scored) int {
		return b.score - a.score
	})

	ordered := make([]board.Move, len(list))
	for i, s := range list {
		ordered[i] = s.move
	}
	return ordered
}
