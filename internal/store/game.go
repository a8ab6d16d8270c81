package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwilkes/arcadia/internal/model"
)

type GameStore struct {
	db *sql.DB
}

func NewGameStore(db *sql.DB) *GameStore {
	return &GameStore{db: db}
}

func scanGame(scanner interface{ Scan(...any) error }) (*model.Game, error) {
	var g model.Game
	err := scanner.Scan(&g.ID, &g.Slug, &g.Title, &g.Status, &g.PointsReward, &g.Difficulty, &g.PlayCount, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const gameCols = `id, slug, title, status, points_reward, difficulty, play_count, created_at`

func (s *GameStore) Create(slug, title string, pointsReward int, difficulty string) (*model.Game, error) {
	result, err := s.db.Exec(
		`INSERT INTO games (slug, title, points_reward, difficulty) VALUES (?, ?, ?, ?)`,
		slug, title, pointsReward, difficulty,
	)
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GameStore) GetByID(id int64) (*model.Game, error) {
	row := s.db.QueryRow(`SELECT `+gameCols+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

func (s *GameStore) GetBySlug(slug string) (*model.Game, error) {
	row := s.db.QueryRow(`SELECT `+gameCols+` FROM games WHERE slug = ?`, slug)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game by slug: %w", err)
	}
	return g, nil
}

// ListActive returns active games ordered by title.
func (s *GameStore) ListActive() ([]model.Game, error) {
	rows, err := s.db.Query(`SELECT ` + gameCols + ` FROM games WHERE status = 'active' ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// RecordPlay stores a finished play: the score row, the wallet credit with
// its ledger entry, and the game's play counter, all in one transaction.
func (s *GameStore) RecordPlay(userID, gameID int64, score int, now time.Time) (*model.GamePlay, error) {
	game, err := s.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if game == nil || !game.Active() {
		return nil, ErrNotFound
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin record play: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO game_plays (user_id, game_id, score, points_earned, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, gameID, score, game.PointsReward, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert play: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET wallet_balance = wallet_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		game.PointsReward, userID,
	); err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO wallet_transactions (user_id, delta, reason, category, created_at) VALUES (?, ?, ?, 'gameplay', ?)`,
		userID, game.PointsReward, "Played "+game.Title, now,
	); err != nil {
		return nil, fmt.Errorf("insert ledger row: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE games SET play_count = play_count + 1 WHERE id = ?`, gameID,
	); err != nil {
		return nil, fmt.Errorf("bump play count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record play: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, user_id, game_id, score, points_earned, created_at FROM game_plays WHERE id = ?`, id,
	)
	var p model.GamePlay
	if err := row.Scan(&p.ID, &p.UserID, &p.GameID, &p.Score, &p.PointsEarned, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("get play: %w", err)
	}
	return &p, nil
}
