// Package storage persists user preferences and finished-game statistics in
// an embedded BadgerDB database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/chesscore/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	resultPrefix   = "result/"
)

// Winner values of a GameResult.
const (
	WinnerWhite = "white"
	WinnerBlack = "black"
	WinnerNone  = ""
)

// Preferences stores user settings
type Preferences struct {
	Username   string            `json:"username"`
	Difficulty engine.Difficulty `json:"difficulty"`
	WhiteHuman bool              `json:"white_human"`
	BlackHuman bool              `json:"black_human"`
	Workers    int               `json:"workers"` // 0 means one per CPU
	LastPlayed time.Time         `json:"last_played"`
}

// DefaultPreferences returns default user preferences: a human playing
// White against the computer at medium strength.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:   "Player",
		Difficulty: engine.Medium,
		WhiteHuman: true,
		BlackHuman: false,
		LastPlayed: time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	WhiteWins      int            `json:"white_wins"`
	BlackWins      int            `json:"black_wins"`
	Draws          int            `json:"draws"`
	Wins           int            `json:"wins"`   // human wins against the computer
	Losses         int            `json:"losses"` // human losses against the computer
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	TotalPlies     int            `json:"total_plies"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDiff: make(map[string]int),
	}
}

// GameResult is the record of one finished game.
type GameResult struct {
	ID         string            `json:"id"`
	Winner     string            `json:"winner"` // WinnerWhite, WinnerBlack or WinnerNone
	Reason     string            `json:"reason"` // "checkmate" or "stalemate"
	Plies      int               `json:"plies"`
	WhiteHuman bool              `json:"white_human"`
	BlackHuman bool              `json:"black_human"`
	Difficulty engine.Difficulty `json:"difficulty"`
	Duration   time.Duration     `json:"duration"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Draw reports whether the game ended without a winner.
func (r GameResult) Draw() bool {
	return r.Winner == WinnerNone
}

// humanOutcome reports whether a lone human played and, if so, whether they won.
func (r GameResult) humanOutcome() (played, won bool) {
	switch {
	case r.WhiteHuman && !r.BlackHuman:
		return true, r.Winner == WinnerWhite
	case r.BlackHuman && !r.WhiteHuman:
		return true, r.Winner == WinnerBlack
	}
	return false, false
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (creating if needed) a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database in %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenDefault opens the database in the "db" directory under DataDir.
func OpenDefault() (*Storage, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return Open(dbDir)
}

// DataDir returns the per-user application directory, creating it if needed.
// Linux follows $XDG_DATA_HOME (default ~/.local/share); macOS and Windows
// use os.UserConfigDir, which is where application data lives there.
func DataDir() (string, error) {
	var (
		base string
		err  error
	)
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		base, err = os.UserConfigDir()
	} else if base = os.Getenv("XDG_DATA_HOME"); base == "" {
		var home string
		home, err = os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, "chessplay")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, prefs)
	})
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyStats, stats)
	})
	if err != nil {
		return NewGameStats(), fmt.Errorf("load stats: %w", err)
	}
	if stats.WinsByDiff == nil {
		stats.WinsByDiff = make(map[string]int)
	}
	return stats, nil
}

// RecordGame stores a finished game under a fresh id and folds it into the
// statistics, both in one transaction. It returns the id.
func (s *Storage) RecordGame(result GameResult) (string, error) {
	result.ID = uuid.New().String()
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		if stats.WinsByDiff == nil {
			stats.WinsByDiff = make(map[string]int)
		}
		stats.apply(result)

		if err := setJSON(txn, resultPrefix+result.ID, result); err != nil {
			return err
		}
		return setJSON(txn, keyStats, stats)
	})
	if err != nil {
		return "", fmt.Errorf("record game: %w", err)
	}
	return result.ID, nil
}

// LoadResult returns the stored game with the given id.
func (s *Storage) LoadResult(id string) (*GameResult, error) {
	var result GameResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resultPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load result %s: %w", id, err)
	}
	return &result, nil
}

// ListResults returns every stored game, oldest first.
func (s *Storage) ListResults() ([]GameResult, error) {
	var results []GameResult

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resultPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var r GameResult
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return err
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	slices.SortStableFunc(results, func(a, b GameResult) int {
		return a.FinishedAt.Compare(b.FinishedAt)
	})
	return results, nil
}

// apply folds one result into the statistics.
func (st *GameStats) apply(r GameResult) {
	st.GamesPlayed++
	st.TotalPlayTime += r.Duration
	st.TotalPlies += r.Plies

	switch r.Winner {
	case WinnerWhite:
		st.WhiteWins++
	case WinnerBlack:
		st.BlackWins++
	default:
		st.Draws++
	}

	played, won := r.humanOutcome()
	switch {
	case !played:
	case r.Draw():
		st.CurrentStreak = 0
	case won:
		st.Wins++
		st.CurrentStreak++
		if st.CurrentStreak > st.LongestWinStrk {
			st.LongestWinStrk = st.CurrentStreak
		}
		st.WinsByDiff[r.Difficulty.String()]++
	default:
		st.Losses++
		st.CurrentStreak = 0
	}
}

// GetWinRate returns the human win rate against the computer as a percentage (0-100)
func (st *GameStats) GetWinRate() float64 {
	decided := st.Wins + st.Losses
	if decided == 0 {
		return 0
	}
	return float64(st.Wins) / float64(decided) * 100
}

// getJSON decodes the value under key into v. A missing key leaves v untouched.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}
