// Package engine chooses computer moves: static evaluation, the classic
// minimax family of searches, and a configurable Engine that adds move
// ordering, a transposition cache, a parallel root split and cancellation.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/game"
)

// Score sentinels.
const (
	Infinity       = 30000
	CheckmateScore = 29000
	StalemateScore = 0
	MaxPly         = 64
)

// Bishop pair bonus (having two bishops)
const (
	bishopPairMgBonus = 25
	bishopPairEgBonus = 50
)

// Pawn structure and rook file terms
const (
	doubledPawnMgPenalty = -15
	doubledPawnEgPenalty = -20
	rookOpenFileMg       = 20
	rookOpenFileEg       = 25
	rookSemiOpenFileMg   = 10
	rookSemiOpenFileEg   = 15
)

// Piece-Square Tables, written from White's side with the 8th rank first so
// that a white piece on (row, col) reads index row*8+col. Black mirrors rows.

// Pawn PST - encourages central control and advancement
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

// Bishop PST - encourages central diagonals
var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// Rook PST - encourages 7th rank and central files
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

// Queen PST - slight central preference
var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King PST (middlegame) - stay home behind the pawns
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// King PST (endgame) - king should be active
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}

// phaseWeight is each piece type's contribution to the game phase.
var phaseWeight = [7]int{0, 1, 1, 2, 4, 0, 0}

const maxPhase = 24

// Evaluate returns the static evaluation from White's perspective.
// It honors the terminal flags of the last ValidMoves call: a side that is
// checkmated scores -CheckmateScore for itself, stalemate scores zero.
func Evaluate(gs *game.State) int {
	if gs.CheckMate() {
		if gs.WhiteToMove() {
			return -CheckmateScore
		}
		return CheckmateScore
	}
	if gs.Stalemate() {
		return StalemateScore
	}
	return evaluatePosition(gs)
}

// evaluatePosition scores material and placement from White's perspective
// without looking at the terminal flags. Searches detect mate themselves.
func evaluatePosition(gs *game.State) int {
	b := gs.Board()

	var mgScore, egScore, phase int
	var bishops [2]int
	var pawnsOnFile [2][8]int

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b[r][c]
			if p == board.NoPiece {
				continue
			}
			pt, color := p.Type(), p.Color()

			sign, idx := 1, r*8+c
			if color == board.Black {
				sign, idx = -1, (7-r)*8+c
			}

			mgScore += sign * p.Value()
			egScore += sign * p.Value()

			if pt == board.King {
				mgScore += sign * kingMidgamePST[idx]
				egScore += sign * kingEndgamePST[idx]
			} else {
				mgScore += sign * psts[pt][idx]
				egScore += sign * psts[pt][idx]
			}

			phase += phaseWeight[pt]
			switch pt {
			case board.Bishop:
				bishops[color]++
			case board.Pawn:
				pawnsOnFile[color][c]++
			}
		}
	}

	bpMg, bpEg := evaluateBishopPair(bishops)
	mgScore += bpMg
	egScore += bpEg

	psMg, psEg := evaluateDoubledPawns(pawnsOnFile)
	mgScore += psMg
	egScore += psEg

	rfMg, rfEg := evaluateRooksOnFiles(&b, pawnsOnFile)
	mgScore += rfMg
	egScore += rfEg

	if phase > maxPhase {
		phase = maxPhase
	}
	return (mgScore*phase + egScore*(maxPhase-phase)) / maxPhase
}

// evaluateBishopPair returns bonus for having the bishop pair.
func evaluateBishopPair(bishops [2]int) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		if bishops[color] >= 2 {
			mgBonus += colorSign(color) * bishopPairMgBonus
			egBonus += colorSign(color) * bishopPairEgBonus
		}
	}
	return mgBonus, egBonus
}

// evaluateDoubledPawns penalizes every extra pawn on a file.
func evaluateDoubledPawns(pawnsOnFile [2][8]int) (mgBonus, egBonus int) {
	for color := board.White; color <= board.Black; color++ {
		for _, n := range pawnsOnFile[color] {
			if n > 1 {
				mgBonus += colorSign(color) * (n - 1) * doubledPawnMgPenalty
				egBonus += colorSign(color) * (n - 1) * doubledPawnEgPenalty
			}
		}
	}
	return mgBonus, egBonus
}

// evaluateRooksOnFiles returns bonus for rooks on open/semi-open files.
func evaluateRooksOnFiles(b *board.Board, pawnsOnFile [2][8]int) (mgBonus, egBonus int) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b[r][c]
			if p.Type() != board.Rook {
				continue
			}
			color := p.Color()
			if pawnsOnFile[color][c] > 0 {
				continue
			}
			if pawnsOnFile[color.Other()][c] == 0 {
				mgBonus += colorSign(color) * rookOpenFileMg
				egBonus += colorSign(color) * rookOpenFileEg
			} else {
				mgBonus += colorSign(color) * rookSemiOpenFileMg
				egBonus += colorSign(color) * rookSemiOpenFileEg
			}
		}
	}
	return mgBonus, egBonus
}

func colorSign(c board.Color) int {
	if c == board.Black {
		return -1
	}
	return 1
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > CheckmateScore-MaxPly || score < -CheckmateScore+MaxPly
}
