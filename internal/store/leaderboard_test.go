package store

import (
	"testing"
	"time"

	"github.com/mwilkes/arcadia/internal/database"
	"github.com/mwilkes/arcadia/internal/model"
)

// Fixed reference instant so period windows are reproducible.
var lbNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type lbFixture struct {
	lb    *LeaderboardStore
	alice *model.User
	bob   *model.User
	carol *model.User
	dave  *model.User
	g10   *model.Game
	g50   *model.Game
}

// setupLeaderboardTestDB seeds three players with plays and one without.
//
// alice plays on Mar 14: g50 once, g10 twice (scores 100, 80), total 70.
// bob plays on Mar 15:   g50 (score 500), g10 (score 300), total 60.
// carol plays on Mar 15: g10 once (score 300), total 10.
// dave never plays.
func setupLeaderboardTestDB(t *testing.T) lbFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	gs := NewGameStore(db)

	f := lbFixture{lb: NewLeaderboardStore(db)}

	mustUser := func(name string) *model.User {
		u, err := us.Create(name, "pw-pw-pw", "")
		if err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
		return u
	}
	f.alice = mustUser("alice")
	f.bob = mustUser("bob")
	f.carol = mustUser("carol")
	f.dave = mustUser("dave")

	f.g10, err = gs.Create("gem-drop", "Gem Drop", 10, "easy")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	f.g50, err = gs.Create("void-racer", "Void Racer", 50, "hard")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	mustPlay := func(u *model.User, g *model.Game, score int, at time.Time) {
		if _, err := gs.RecordPlay(u.ID, g.ID, score, at); err != nil {
			t.Fatalf("record play: %v", err)
		}
	}

	mar14 := lbNow.AddDate(0, 0, -1)
	mustPlay(f.alice, f.g50, 900, mar14.Add(-2*time.Hour))
	mustPlay(f.alice, f.g10, 100, mar14.Add(-90*time.Minute))
	mustPlay(f.alice, f.g10, 80, mar14.Add(-time.Hour))

	mustPlay(f.bob, f.g50, 500, lbNow.Add(-2*time.Hour))
	mustPlay(f.bob, f.g10, 300, lbNow.Add(-time.Hour))

	mustPlay(f.carol, f.g10, 300, lbNow.Add(-30*time.Minute))

	return f
}

func TestGlobalByPointsAllTime(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	entries, err := f.lb.GlobalByPoints(10, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []struct {
		username string
		points   int
		played   int
	}{
		{"alice", 70, 3},
		{"bob", 60, 2},
		{"carol", 10, 1},
	}
	for i, w := range want {
		e := entries[i]
		if e.Username != w.username || e.TotalPoints != w.points || e.GamesPlayed != w.played {
			t.Errorf("entry %d = %s/%d/%d, want %s/%d/%d",
				i, e.Username, e.TotalPoints, e.GamesPlayed, w.username, w.points, w.played)
		}
		if e.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, e.Rank, i+1)
		}
	}
}

func TestGlobalByPointsDeterministic(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	first, err := f.lb.GlobalByPoints(10, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.lb.GlobalByPoints(10, PeriodAll, lbNow)
		if err != nil {
			t.Fatalf("global leaderboard: %v", err)
		}
		for j := range first {
			if again[j].UserID != first[j].UserID {
				t.Fatalf("run %d entry %d = user %d, want %d", i, j, again[j].UserID, first[j].UserID)
			}
		}
	}
}

func TestGlobalByPointsTodayWindow(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	entries, err := f.lb.GlobalByPoints(10, PeriodToday, lbNow)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "bob" || entries[1].Username != "carol" {
		t.Errorf("order = [%s, %s], want [bob, carol]", entries[0].Username, entries[1].Username)
	}
}

func TestGlobalByPointsLimit(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	entries, err := f.lb.GlobalByPoints(2, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestByGameHighScoreTieBreak(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	entries, err := f.lb.ByGame(f.g10.ID, 10, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("game leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// bob and carol tie at 300; bob got there first.
	if entries[0].Username != "bob" || entries[0].HighScore != 300 {
		t.Errorf("entry 0 = %s/%d, want bob/300", entries[0].Username, entries[0].HighScore)
	}
	if entries[1].Username != "carol" {
		t.Errorf("entry 1 = %s, want carol", entries[1].Username)
	}
	// alice's best of her two plays, one row only.
	if entries[2].Username != "alice" || entries[2].HighScore != 100 || entries[2].GamesPlayed != 2 {
		t.Errorf("entry 2 = %s/%d/%d, want alice/100/2",
			entries[2].Username, entries[2].HighScore, entries[2].GamesPlayed)
	}
}

func TestUserRank(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	rank, err := f.lb.UserRank(f.alice.ID, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("user rank: %v", err)
	}
	if rank == nil || *rank != 1 {
		t.Errorf("alice rank = %v, want 1", rank)
	}

	rank, err = f.lb.UserRank(f.carol.ID, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("user rank: %v", err)
	}
	if rank == nil || *rank != 3 {
		t.Errorf("carol rank = %v, want 3", rank)
	}

	// No qualifying activity means no rank at all.
	rank, err = f.lb.UserRank(f.dave.ID, PeriodAll, lbNow)
	if err != nil {
		t.Fatalf("user rank: %v", err)
	}
	if rank != nil {
		t.Errorf("dave rank = %d, want nil", *rank)
	}

	// alice has no plays today, so no rank in that window.
	rank, err = f.lb.UserRank(f.alice.ID, PeriodToday, lbNow)
	if err != nil {
		t.Fatalf("user rank: %v", err)
	}
	if rank != nil {
		t.Errorf("alice today rank = %d, want nil", *rank)
	}
}

func TestUserGameRank(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	rank, err := f.lb.UserGameRank(f.alice.ID, f.g10.ID)
	if err != nil {
		t.Fatalf("user game rank: %v", err)
	}
	if rank == nil || *rank != 3 {
		t.Errorf("alice rank = %v, want 3", rank)
	}

	rank, err = f.lb.UserGameRank(f.dave.ID, f.g10.ID)
	if err != nil {
		t.Fatalf("user game rank: %v", err)
	}
	if rank != nil {
		t.Errorf("dave rank = %d, want nil", *rank)
	}
}

func TestPlatformStats(t *testing.T) {
	f := setupLeaderboardTestDB(t)

	stats, err := f.lb.Stats()
	if err != nil {
		t.Fatalf("platform stats: %v", err)
	}
	if stats.TotalPlayers != 3 {
		t.Errorf("total_players = %d, want 3", stats.TotalPlayers)
	}
	if stats.TotalGamesPlayed != 6 {
		t.Errorf("total_games_played = %d, want 6", stats.TotalGamesPlayed)
	}
	if stats.TotalPointsAwarded != 140 {
		t.Errorf("total_points_awarded = %d, want 140", stats.TotalPointsAwarded)
	}
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"today": PeriodToday,
		"week":  PeriodWeek,
		"month": PeriodMonth,
		"all":   PeriodAll,
		"":      PeriodAll,
		"bogus": PeriodAll,
		"TODAY": PeriodAll,
		"all ":  PeriodAll,
	}
	for in, want := range cases {
		if got := ParsePeriod(in); got != want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := PeriodToday.Start(lbNow); !got.Equal(midnight) {
		t.Errorf("today start = %v, want %v", got, midnight)
	}
	if got := PeriodWeek.Start(lbNow); !got.Equal(lbNow.AddDate(0, 0, -7)) {
		t.Errorf("week start = %v", got)
	}
	if !PeriodAll.Start(lbNow).IsZero() {
		t.Error("all-time start should be the zero time")
	}
}
