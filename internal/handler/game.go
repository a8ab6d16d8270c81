package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mwilkes/arcadia/internal/auth"
	"github.com/mwilkes/arcadia/internal/middleware"
	"github.com/mwilkes/arcadia/internal/store"
	"github.com/mwilkes/arcadia/internal/view"
	ws "github.com/mwilkes/arcadia/internal/websocket"
)

const activityFeedSize = 10

type GameHandler struct {
	gameStore     *store.GameStore
	userStore     *store.UserStore
	activityStore *store.ActivityStore
	hub           *ws.Hub
	renderer      *view.Renderer
	logger        *slog.Logger
}

func NewGameHandler(gs *store.GameStore, us *store.UserStore, as *store.ActivityStore, hub *ws.Hub, r *view.Renderer, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameStore:     gs,
		userStore:     us,
		activityStore: as,
		hub:           hub,
		renderer:      r,
		logger:        logger,
	}
}

// Dashboard renders the game list with the caller's user card.
func (h *GameHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	games, err := h.gameStore.ListActive()
	if err != nil {
		h.logger.Error("list games", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	events, err := h.activityStore.ListRecent(activityFeedSize)
	if err != nil {
		h.logger.Error("list activity", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	token := middleware.TokenFromContext(r.Context())
	cards := make([]view.GameCard, 0, len(games))
	for _, g := range games {
		cards = append(cards, view.GameCard{Game: g, CSRFToken: token})
	}

	h.renderer.Render(w, "dashboard.html", map[string]any{
		"User":      user,
		"Games":     cards,
		"Activity":  events,
		"CSRFToken": token,
	})
}

// Play records a finished play for the authenticated user and credits the
// game's point reward.
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameStore.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("get game", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if game == nil {
		http.NotFound(w, r)
		return
	}

	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil || score < 0 {
		score = 0
	}

	userID := auth.UserID(r.Context())
	play, err := h.gameStore.RecordPlay(userID, game.ID, score, time.Now())
	if err != nil {
		h.logger.Error("record play", "game", game.Slug, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(ws.Event{
		Type:   ws.EventPlayRecorded,
		UserID: userID,
		Payload: map[string]any{
			"game_id": game.ID,
			"score":   play.Score,
			"points":  play.PointsEarned,
		},
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
