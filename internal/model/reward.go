package model

import "time"

// Stock is the availability of a reward. Quantity is stored as a nullable
// column: NULL means unlimited, otherwise a non-negative remaining count.
type Stock struct {
	Limited   bool `json:"limited"`
	Remaining int  `json:"remaining"`
}

func UnlimitedStock() Stock {
	return Stock{}
}

func LimitedStock(n int) Stock {
	return Stock{Limited: true, Remaining: n}
}

// Available reports whether at least one unit can still be redeemed.
func (s Stock) Available() bool {
	return !s.Limited || s.Remaining > 0
}

type Reward struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Image            string     `json:"image"`
	Category         string     `json:"category"`
	PointsCost       int        `json:"points_cost"`
	Stock            Stock      `json:"stock"`
	Status           string     `json:"status"`
	RequiresApproval bool       `json:"requires_approval"`
	ValidFrom        *time.Time `json:"valid_from"`
	ValidUntil       *time.Time `json:"valid_until"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (r *Reward) Active() bool {
	return r.Status == "active"
}

// Redeemable reports whether the reward is active and inside its optional
// validity window at the given instant. Stock and funds are checked
// separately so callers can report the precise failure.
func (r *Reward) Redeemable(now time.Time) bool {
	if !r.Active() {
		return false
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && !now.Before(*r.ValidUntil) {
		return false
	}
	return true
}

// Redemption statuses. Transitions past approved/pending are owned by an
// external moderation process.
const (
	RedemptionPending   = "pending"
	RedemptionApproved  = "approved"
	RedemptionFulfilled = "fulfilled"
	RedemptionRejected  = "rejected"
	RedemptionCancelled = "cancelled"
)

type Redemption struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RewardID    int64     `json:"reward_id"`
	PointsSpent int       `json:"points_spent"`
	Status      string    `json:"status"`
	UserNotes   string    `json:"user_notes"`
	AdminNotes  string    `json:"admin_notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedemptionItem is a redemption joined with its reward for history views.
type RedemptionItem struct {
	Redemption
	RewardName  string `json:"reward_name"`
	RewardImage string `json:"reward_image"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
