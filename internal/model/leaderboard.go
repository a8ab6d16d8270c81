package model

// LeaderboardEntry is one row of the global points ranking.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"total_points"`
	GamesPlayed int    `json:"games_played"`
}

// GameLeaderboardEntry is one row of a single game's high-score ranking.
type GameLeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	HighScore   int    `json:"high_score"`
	GamesPlayed int    `json:"games_played"`
}

// PlatformStats are the site-wide counters shown above the leaderboard.
type PlatformStats struct {
	TotalPlayers       int `json:"total_players"`
	TotalGamesPlayed   int `json:"total_games_played"`
	TotalPointsAwarded int `json:"total_points_awarded"`
}
