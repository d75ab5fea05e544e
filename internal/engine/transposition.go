package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/hailam/chesscore/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry is a cached search result for one position.
type TTEntry struct {
	BestMove board.Move
	Score    int
	Depth    int
	Flag     TTFlag
	HasMove  bool
}

// TranspositionTable caches search results keyed by game.State.Key.
// It is safe for concurrent use by the search workers. Admission is
// probabilistic, so a Store may be dropped.
type TranspositionTable struct {
	cache *ristretto.Cache[uint64, TTEntry]

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table holding about maxEntries positions.
func NewTranspositionTable(maxEntries int64) (*TranspositionTable, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("transposition table size must be positive, got %d", maxEntries)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, TTEntry]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create transposition cache: %w", err)
	}
	return &TranspositionTable{cache: cache}, nil
}

// Probe looks up a position in the transposition table.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	tt.probes.Add(1)
	entry, ok := tt.cache.Get(key)
	if ok {
		tt.hits.Add(1)
	}
	return entry, ok
}

// Store saves a search result. A deeper entry for the same key is kept.
func (tt *TranspositionTable) Store(key uint64, depth, score int, flag TTFlag, best board.Move, hasMove bool) {
	if old, ok := tt.cache.Get(key); ok && old.Depth > depth {
		return
	}
	tt.cache.Set(key, TTEntry{
		BestMove: best,
		Score:    score,
		Depth:    depth,
		Flag:     flag,
		HasMove:  hasMove,
	}, 1)
}

// Wait blocks until buffered writes are visible to Probe.
func (tt *TranspositionTable) Wait() {
	tt.cache.Wait()
}

// Clear empties the table and resets statistics.
func (tt *TranspositionTable) Clear() {
	tt.cache.Clear()
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// Close releases the cache's background goroutines.
func (tt *TranspositionTable) Close() {
	tt.cache.Close()
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// AdjustScoreToTT converts a mate score relative to the root into one
// relative to the stored node.
func AdjustScoreToTT(score, ply int) int {
	if score > CheckmateScore-MaxPly {
		return score + ply
	}
	if score < -CheckmateScore+MaxPly {
		return score - ply
	}
	return score
}

// AdjustScoreFromTT is the inverse of AdjustScoreToTT.
func AdjustScoreFromTT(score, ply int) int {
	if score > CheckmateScore-MaxPly {
		return score - ply
	}
	if score < -CheckmateScore+MaxPly {
		return score + ply
	}
	return score
}
