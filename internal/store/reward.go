package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwilkes/arcadia/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var quantity sql.NullInt64
	var approval int
	var validFrom, validUntil sql.NullTime

	err := scanner.Scan(&r.ID, &r.Name, &r.Description, &r.Image, &r.Category, &r.PointsCost,
		&quantity, &r.Status, &approval, &validFrom, &validUntil, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if quantity.Valid {
		r.Stock = model.LimitedStock(int(quantity.Int64))
	} else {
		r.Stock = model.UnlimitedStock()
	}
	r.RequiresApproval = approval != 0
	if validFrom.Valid {
		t := validFrom.Time
		r.ValidFrom = &t
	}
	if validUntil.Valid {
		t := validUntil.Time
		r.ValidUntil = &t
	}
	return &r, nil
}

const rewardCols = `id, name, description, image, category, points_cost, quantity, status, requires_approval, valid_from, valid_until, created_at`

// CreateParams carries the optional fields of a new reward. Quantity nil
// means unlimited stock.
type CreateParams struct {
	Name             string
	Description      string
	Image            string
	Category         string
	PointsCost       int
	Quantity         *int
	RequiresApproval bool
	ValidFrom        *time.Time
	ValidUntil       *time.Time
}

func (s *RewardStore) Create(p CreateParams) (*model.Reward, error) {
	var quantity sql.NullInt64
	if p.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*p.Quantity), Valid: true}
	}
	var approval int
	if p.RequiresApproval {
		approval = 1
	}
	if p.Category == "" {
		p.Category = "general"
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (name, description, image, category, points_cost, quantity, requires_approval, valid_from, valid_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Image, p.Category, p.PointsCost, quantity, approval, p.ValidFrom, p.ValidUntil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

func (s *RewardStore) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE rewards SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set reward status: %w", err)
	}
	return nil
}

// Rewards that are active and inside their optional validity window at now.
const availableWhere = `status = 'active'
	AND (valid_from IS NULL OR valid_from <= ?)
	AND (valid_until IS NULL OR valid_until > ?)`

// List returns redeemable rewards ordered by ascending cost, optionally
// filtered by category, paginated with page >= 1.
func (s *RewardStore) List(category string, page, pageSize int, now time.Time) ([]model.Reward, int, error) {
	if page < 1 {
		page = 1
	}

	where := availableWhere
	args := []any{now, now}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM rewards WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rewards: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE `+where+`
		 ORDER BY points_cost ASC, id ASC LIMIT ? OFFSET ?`, args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, total, rows.Err()
}

// Categories returns category counts over active rewards, most stocked first.
func (s *RewardStore) Categories() ([]model.CategoryCount, error) {
	rows, err := s.db.Query(
		`SELECT category, COUNT(*) AS n FROM rewards WHERE status = 'active'
		 GROUP BY category ORDER BY n DESC, category ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []model.CategoryCount
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Redeem exchanges points for a reward as one atomic unit: the conditional
// balance deduction, the redemption row, the guarded stock decrement, the
// ledger entry and the activity event all commit together or not at all.
// Funds and stock are re-checked inside the transaction; pre-flight checks in
// handlers are advisory only.
func (s *RewardStore) Redeem(userID, rewardID int64, userNotes string, now time.Time) (*model.Redemption, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin redeem: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, rewardID)
	reward, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}

	if !reward.Redeemable(now) {
		return nil, ErrRewardUnavailable
	}
	if !reward.Stock.Available() {
		return nil, ErrOutOfStock
	}

	result, err := tx.Exec(
		`UPDATE users SET wallet_balance = wallet_balance - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND wallet_balance >= ?`,
		reward.PointsCost, userID, reward.PointsCost,
	)
	if err != nil {
		return nil, fmt.Errorf("deduct balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deduct rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrInsufficientFunds
	}

	if reward.Stock.Limited {
		result, err := tx.Exec(
			`UPDATE rewards SET quantity = quantity - 1 WHERE id = ? AND quantity > 0`,
			rewardID,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("stock rows affected: %w", err)
		}
		if affected == 0 {
			return nil, ErrOutOfStock
		}
	}

	status := model.RedemptionApproved
	if reward.RequiresApproval {
		status = model.RedemptionPending
	}

	result, err = tx.Exec(
		`INSERT INTO redemptions (user_id, reward_id, points_spent, status, user_notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, rewardID, reward.PointsCost, status, userNotes, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO wallet_transactions (user_id, delta, reason, category, created_at)
		 VALUES (?, ?, ?, 'redemption', ?)`,
		userID, -reward.PointsCost, "Redeemed "+reward.Name, now,
	); err != nil {
		return nil, fmt.Errorf("insert ledger row: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO activity_log (user_id, event_type, message, created_at)
		 VALUES (?, 'reward_redeemed', ?, ?)`,
		userID, fmt.Sprintf("Redeemed %s for %d points", reward.Name, reward.PointsCost), now,
	); err != nil {
		return nil, fmt.Errorf("insert activity event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem: %w", err)
	}

	return s.GetRedemption(id)
}

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.Redemption, error) {
	var r model.Redemption
	err := scanner.Scan(&r.ID, &r.UserID, &r.RewardID, &r.PointsSpent, &r.Status, &r.UserNotes, &r.AdminNotes, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const redemptionCols = `id, user_id, reward_id, points_spent, status, user_notes, admin_notes, created_at`

func (s *RewardStore) GetRedemption(id int64) (*model.Redemption, error) {
	row := s.db.QueryRow(`SELECT `+redemptionCols+` FROM redemptions WHERE id = ?`, id)
	r, err := scanRedemption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return r, nil
}

// ListRedemptions returns the user's history joined with reward name and
// image, newest first.
func (s *RewardStore) ListRedemptions(userID int64, page, pageSize int) ([]model.RedemptionItem, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM redemptions WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count redemptions: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.user_id, r.reward_id, r.points_spent, r.status, r.user_notes, r.admin_notes, r.created_at,
		        w.name, w.image
		 FROM redemptions r
		 JOIN rewards w ON w.id = r.reward_id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var items []model.RedemptionItem
	for rows.Next() {
		var it model.RedemptionItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.RewardID, &it.PointsSpent, &it.Status,
			&it.UserNotes, &it.AdminNotes, &it.CreatedAt, &it.RewardName, &it.RewardImage); err != nil {
			return nil, 0, fmt.Errorf("scan redemption: %w", err)
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
