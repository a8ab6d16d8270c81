package model

import "time"

type Game struct {
	ID           int64     `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	PointsReward int       `json:"points_reward"`
	Difficulty   string    `json:"difficulty"`
	PlayCount    int       `json:"play_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (g *Game) Active() bool {
	return g.Status == "active"
}

type GamePlay struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	GameID       int64     `json:"game_id"`
	Score        int       `json:"score"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}
