package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mwilkes/arcadia/internal/auth"
	"github.com/mwilkes/arcadia/internal/middleware"
	"github.com/mwilkes/arcadia/internal/model"
	"github.com/mwilkes/arcadia/internal/store"
	"github.com/mwilkes/arcadia/internal/view"
	ws "github.com/mwilkes/arcadia/internal/websocket"
)

const (
	catalogPageSize = 15
	historyPageSize = 10
)

type RewardHandler struct {
	rewardStore *store.RewardStore
	walletStore *store.WalletStore
	hub         *ws.Hub
	renderer    *view.Renderer
	logger      *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, wallet *store.WalletStore, hub *ws.Hub, r *view.Renderer, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{
		rewardStore: rs,
		walletStore: wallet,
		hub:         hub,
		renderer:    r,
		logger:      logger,
	}
}

// parsePage normalizes a ?page= value; anything malformed means page 1.
func parsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Catalog renders the paginated reward grid with the caller's balance.
func (h *RewardHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	page := parsePage(r.URL.Query().Get("page"))

	rewards, total, err := h.rewardStore.List(category, page, catalogPageSize, time.Now())
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	categories, err := h.rewardStore.Categories()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	balance, err := h.walletStore.Balance(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get balance", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	cards := make([]view.RewardCard, 0, len(rewards))
	for _, rw := range rewards {
		cards = append(cards, view.NewRewardCard(rw, balance))
	}

	base := "/rewards?"
	if category != "" {
		base += "category=" + category + "&"
	}

	h.renderer.Render(w, "rewards.html", map[string]any{
		"Rewards":    cards,
		"Categories": categories,
		"Balance":    balance,
		"Pagination": view.NewPagination(page, catalogPageSize, total),
		"Base":       base,
		"CSRFToken":  middleware.TokenFromContext(r.Context()),
	})
}

// RedeemForm renders the confirmation view with computed eligibility. The
// verdict here is advisory; the commit re-checks everything.
func (h *RewardHandler) RedeemForm(w http.ResponseWriter, r *http.Request) {
	reward, balance, ok := h.loadRedeemContext(w, r)
	if !ok {
		return
	}

	data := h.redeemData(r, reward, balance)
	switch {
	case !reward.Redeemable(time.Now()):
		data["Error"] = "This reward is not currently available."
	case !reward.Stock.Available():
		data["Error"] = "This reward is out of stock."
	case balance < reward.PointsCost:
		data["Error"] = "You don't have enough points for this reward."
	default:
		data["Eligible"] = true
	}

	h.renderer.Render(w, "reward_redeem.html", data)
}

// Redeem commits the redemption. All effects are applied in one storage
// transaction; any domain failure re-renders the confirmation view inline
// with no partial state.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	reward, balance, ok := h.loadRedeemContext(w, r)
	if !ok {
		return
	}

	userID := auth.UserID(r.Context())
	userNotes := strings.TrimSpace(r.PostFormValue("user_notes"))

	redemption, err := h.rewardStore.Redeem(userID, reward.ID, userNotes, time.Now())
	if err != nil {
		msg := ""
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrRewardUnavailable):
			msg = "This reward is not currently available."
		case errors.Is(err, store.ErrInsufficientFunds):
			msg = "You don't have enough points for this reward."
		case errors.Is(err, store.ErrOutOfStock):
			msg = "This reward is out of stock."
		default:
			h.logger.Error("redeem", "reward", reward.ID, "error", err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		data := h.redeemData(r, reward, balance)
		data["Error"] = msg
		h.renderer.Render(w, "reward_redeem.html", data)
		return
	}

	h.hub.Broadcast(ws.Event{
		Type:   ws.EventRedemptionCreated,
		UserID: userID,
		Payload: map[string]any{
			"reward_id":    reward.ID,
			"points_spent": redemption.PointsSpent,
			"status":       redemption.Status,
		},
	})

	http.Redirect(w, r, "/rewards/history", http.StatusSeeOther)
}

// History renders the caller's paginated redemption history.
func (h *RewardHandler) History(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query().Get("page"))

	items, total, err := h.rewardStore.ListRedemptions(auth.UserID(r.Context()), page, historyPageSize)
	if err != nil {
		h.logger.Error("list redemptions", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "rewards_history.html", map[string]any{
		"Items":      items,
		"Pagination": view.NewPagination(page, historyPageSize, total),
		"Base":       "/rewards/history?",
		"CSRFToken":  middleware.TokenFromContext(r.Context()),
	})
}

// loadRedeemContext resolves the ?id= reward and the caller's balance,
// writing the error response itself when either fails.
func (h *RewardHandler) loadRedeemContext(w http.ResponseWriter, r *http.Request) (*model.Reward, int, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid reward id", http.StatusBadRequest)
		return nil, 0, false
	}

	reward, err := h.rewardStore.GetByID(id)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, 0, false
	}
	if reward == nil {
		http.NotFound(w, r)
		return nil, 0, false
	}

	balance, err := h.walletStore.Balance(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get balance", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, 0, false
	}

	return reward, balance, true
}

func (h *RewardHandler) redeemData(r *http.Request, reward *model.Reward, balance int) map[string]any {
	return map[string]any{
		"Reward":    reward,
		"Card":      view.NewRewardCard(*reward, balance),
		"Balance":   balance,
		"CSRFToken": middleware.TokenFromContext(r.Context()),
	}
}
