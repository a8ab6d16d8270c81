package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mwilkes/arcadia/internal/auth"
	"github.com/mwilkes/arcadia/internal/middleware"
	"github.com/mwilkes/arcadia/internal/store"
	"github.com/mwilkes/arcadia/internal/view"
)

const leaderboardLimit = 25

type LeaderboardHandler struct {
	leaderboardStore *store.LeaderboardStore
	gameStore        *store.GameStore
	renderer         *view.Renderer
	logger           *slog.Logger
}

func NewLeaderboardHandler(ls *store.LeaderboardStore, gs *store.GameStore, r *view.Renderer, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardStore: ls,
		gameStore:        gs,
		renderer:         r,
		logger:           logger,
	}
}

// Leaderboard renders the global points ranking, or one game's high-score
// ranking when ?game= names a game slug. Unknown periods fall back to
// all-time; an unknown game slug falls back to the global board.
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	period := store.ParsePeriod(r.URL.Query().Get("period"))
	userID := auth.UserID(r.Context())

	stats, err := h.leaderboardStore.Stats()
	if err != nil {
		h.logger.Error("platform stats", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Period":    string(period),
		"Stats":     stats,
		"CSRFToken": middleware.TokenFromContext(r.Context()),
	}

	if slug := r.URL.Query().Get("game"); slug != "" {
		game, err := h.gameStore.GetBySlug(slug)
		if err != nil {
			h.logger.Error("get game", "error", err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if game != nil {
			entries, err := h.leaderboardStore.ByGame(game.ID, leaderboardLimit, period, now)
			if err != nil {
				h.logger.Error("game leaderboard", "game", slug, "error", err)
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}

			data["Game"] = game
			data["GameEntries"] = entries
			if rank, err := h.leaderboardStore.UserGameRank(userID, game.ID); err == nil && rank != nil {
				data["UserRank"] = *rank
			}
			h.renderer.Render(w, "leaderboard.html", data)
			return
		}
	}

	entries, err := h.leaderboardStore.GlobalByPoints(leaderboardLimit, period, now)
	if err != nil {
		h.logger.Error("global leaderboard", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	data["Entries"] = entries
	if rank, err := h.leaderboardStore.UserRank(userID, period, now); err == nil && rank != nil {
		data["UserRank"] = *rank
	}
	h.renderer.Render(w, "leaderboard.html", data)
}
