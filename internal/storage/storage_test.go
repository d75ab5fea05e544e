package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/engine"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestPreferences(t *testing.T) {
	s := openTemp(t)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatal(err)
		}
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != engine.Medium {
			t.Errorf("Expected medium difficulty, got %s", prefs.Difficulty)
		}
		if !prefs.WhiteHuman || prefs.BlackHuman {
			t.Errorf("Expected human White against the computer")
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := &Preferences{
			Username:   "tester",
			Difficulty: engine.Hard,
			WhiteHuman: false,
			BlackHuman: true,
			Workers:    3,
		}
		if err := s.SavePreferences(want); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadPreferences()
		if err != nil {
			t.Fatal(err)
		}
		if got.Username != want.Username || got.Difficulty != want.Difficulty ||
			got.WhiteHuman != want.WhiteHuman || got.BlackHuman != want.BlackHuman ||
			got.Workers != want.Workers {
			t.Errorf("LoadPreferences() = %+v, want %+v", got, want)
		}
		if got.LastPlayed.IsZero() {
			t.Error("LastPlayed not stamped on save")
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTemp(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch() = %v, %v; want true", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	first, err = s.IsFirstLaunch()
	if err != nil || first {
		t.Errorf("IsFirstLaunch() after mark = %v, %v; want false", first, err)
	}
}

func TestRecordGame(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	games := []GameResult{
		{Winner: WinnerWhite, Reason: "checkmate", Plies: 4, WhiteHuman: true, Difficulty: engine.Easy, Duration: time.Minute, FinishedAt: base},
		{Winner: WinnerWhite, Reason: "checkmate", Plies: 30, WhiteHuman: true, Difficulty: engine.Easy, Duration: time.Minute, FinishedAt: base.Add(time.Hour)},
		{Winner: WinnerNone, Reason: "stalemate", Plies: 80, WhiteHuman: true, BlackHuman: true, FinishedAt: base.Add(2 * time.Hour)},
		{Winner: WinnerWhite, Reason: "checkmate", Plies: 41, BlackHuman: true, Difficulty: engine.Hard, FinishedAt: base.Add(3 * time.Hour)},
	}

	ids := make(map[string]bool)
	for _, g := range games {
		id, err := s.RecordGame(g)
		if err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
		if id == "" || ids[id] {
			t.Fatalf("RecordGame returned empty or duplicate id %q", id)
		}
		ids[id] = true

		got, err := s.LoadResult(id)
		if err != nil {
			t.Fatalf("LoadResult(%s): %v", id, err)
		}
		if got.ID != id || got.Plies != g.Plies || got.Winner != g.Winner {
			t.Errorf("LoadResult(%s) = %+v", id, got)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 4 || stats.WhiteWins != 3 || stats.BlackWins != 0 || stats.Draws != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Wins != 2 || stats.Losses != 1 {
		t.Errorf("human record = %d-%d, want 2-1", stats.Wins, stats.Losses)
	}
	if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
		t.Errorf("streaks = longest %d current %d, want 2 0", stats.LongestWinStrk, stats.CurrentStreak)
	}
	if stats.WinsByDiff["easy"] != 2 {
		t.Errorf("easy wins = %d, want 2", stats.WinsByDiff["easy"])
	}
	if stats.TotalPlies != 155 || stats.TotalPlayTime != 2*time.Minute {
		t.Errorf("totals = %d plies, %s", stats.TotalPlies, stats.TotalPlayTime)
	}

	results, err := s.ListResults()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(games) {
		t.Fatalf("ListResults returned %d games, want %d", len(results), len(games))
	}
	for i, r := range results {
		if !r.FinishedAt.Equal(games[i].FinishedAt) {
			t.Errorf("result %d finished at %s, want %s", i, r.FinishedAt, games[i].FinishedAt)
		}
	}
}

func TestLoadResultMissing(t *testing.T) {
	s := openTemp(t)
	if _, err := s.LoadResult("nope"); err == nil {
		t.Error("expected error for a missing result")
	}
}

func TestWinRate(t *testing.T) {
	stats := NewGameStats()
	if stats.GetWinRate() != 0 {
		t.Errorf("Expected 0 win rate")
	}
	stats = &GameStats{GamesPlayed: 12, Wins: 5, Losses: 5, Draws: 2}
	if rate := stats.GetWinRate(); rate != 50 {
		t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if runtime.GOOS == "linux" && filepath.Base(dataDir) != "chessplay" {
		t.Errorf("Unexpected data directory: %s", dataDir)
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
	t.Logf("Data directory: %s", dataDir)

	if runtime.GOOS != "linux" {
		return
	}
	s, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault failed: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(filepath.Join(dataDir, "db")); err != nil {
		t.Errorf("Database directory missing: %v", err)
	}
}
