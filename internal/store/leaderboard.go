package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwilkes/arcadia/internal/model"
)

// Period scopes leaderboard aggregation to a half-open time window ending at
// a caller-supplied "now". Unrecognized values normalize to all-time.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod normalizes a query parameter to a known period.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return Period(s)
	default:
		return PeriodAll
	}
}

// Start returns the inclusive lower bound of the window at the given instant.
// Today starts at local midnight; week and month are rolling windows. The
// zero time means no lower bound.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

type LeaderboardStore struct {
	db *sql.DB
}

func NewLeaderboardStore(db *sql.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

// Plays within the window, aggregated per user. achieved_at is the time the
// user reached their current total; earlier achievement wins ties, then user
// id keeps the order fully deterministic.
const globalTotalsCTE = `
	WITH totals AS (
		SELECT gp.user_id,
		       SUM(gp.points_earned) AS total_points,
		       COUNT(*) AS games_played,
		       MAX(gp.created_at) AS achieved_at
		FROM game_plays gp
		WHERE gp.created_at >= ? AND gp.created_at < ?
		GROUP BY gp.user_id
	)`

// GlobalByPoints returns the global points ranking for the period, truncated
// to limit.
func (s *LeaderboardStore) GlobalByPoints(limit int, period Period, now time.Time) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(globalTotalsCTE+`
		SELECT t.user_id, u.username, u.avatar, t.total_points, t.games_played
		FROM totals t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.total_points DESC, t.achieved_at ASC, t.user_id ASC
		LIMIT ?`,
		period.Start(now), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("global leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Avatar, &e.TotalPoints, &e.GamesPlayed); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ByGame returns the per-user high-score ranking for one game.
func (s *LeaderboardStore) ByGame(gameID int64, limit int, period Period, now time.Time) ([]model.GameLeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT gp.user_id, u.username, u.avatar, MAX(gp.score) AS high_score, COUNT(*) AS games_played
		FROM game_plays gp
		JOIN users u ON u.id = gp.user_id
		WHERE gp.game_id = ? AND gp.created_at >= ? AND gp.created_at < ?
		GROUP BY gp.user_id
		ORDER BY high_score DESC, MAX(gp.created_at) ASC, gp.user_id ASC
		LIMIT ?`,
		gameID, period.Start(now), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("game leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.GameLeaderboardEntry
	for rows.Next() {
		var e model.GameLeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Avatar, &e.HighScore, &e.GamesPlayed); err != nil {
			return nil, fmt.Errorf("scan game entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UserRank returns the user's 1-based position in the global ordering, or
// nil when the user has no qualifying plays in the period.
func (s *LeaderboardStore) UserRank(userID int64, period Period, now time.Time) (*int, error) {
	var rank int
	err := s.db.QueryRow(globalTotalsCTE+`
		SELECT 1 + COUNT(*)
		FROM totals t, totals me
		WHERE me.user_id = ?
		  AND (t.total_points > me.total_points
		       OR (t.total_points = me.total_points AND t.achieved_at < me.achieved_at)
		       OR (t.total_points = me.total_points AND t.achieved_at = me.achieved_at AND t.user_id < me.user_id))`,
		period.Start(now), now, userID,
	).Scan(&rank)
	if err != nil {
		return nil, fmt.Errorf("user rank: %w", err)
	}

	// The count query returns 1 even when the user has no plays; confirm
	// the user actually qualifies.
	var plays int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM game_plays WHERE user_id = ? AND created_at >= ? AND created_at < ?`,
		userID, period.Start(now), now,
	).Scan(&plays)
	if err != nil {
		return nil, fmt.Errorf("user qualifying plays: %w", err)
	}
	if plays == 0 {
		return nil, nil
	}
	return &rank, nil
}

// UserGameRank returns the user's 1-based position in one game's all-time
// high-score ordering, or nil without qualifying plays.
func (s *LeaderboardStore) UserGameRank(userID, gameID int64) (*int, error) {
	var rank int
	err := s.db.QueryRow(`
		WITH scores AS (
			SELECT user_id, MAX(score) AS high_score, MAX(created_at) AS achieved_at
			FROM game_plays WHERE game_id = ?
			GROUP BY user_id
		)
		SELECT 1 + COUNT(*)
		FROM scores t, scores me
		WHERE me.user_id = ?
		  AND (t.high_score > me.high_score
		       OR (t.high_score = me.high_score AND t.achieved_at < me.achieved_at)
		       OR (t.high_score = me.high_score AND t.achieved_at = me.achieved_at AND t.user_id < me.user_id))`,
		gameID, userID,
	).Scan(&rank)
	if err != nil {
		return nil, fmt.Errorf("user game rank: %w", err)
	}

	var plays int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM game_plays WHERE user_id = ? AND game_id = ?`,
		userID, gameID,
	).Scan(&plays)
	if err != nil {
		return nil, fmt.Errorf("user game plays: %w", err)
	}
	if plays == 0 {
		return nil, nil
	}
	return &rank, nil
}

// Stats returns the platform-wide counters shown above the leaderboard.
func (s *LeaderboardStore) Stats() (*model.PlatformStats, error) {
	var stats model.PlatformStats
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT user_id),
		       COUNT(*),
		       COALESCE(SUM(points_earned), 0)
		FROM game_plays`,
	).Scan(&stats.TotalPlayers, &stats.TotalGamesPlayed, &stats.TotalPointsAwarded)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return &stats, nil
}
